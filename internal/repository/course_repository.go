package repository

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/stemsi/course-catalog/internal/events"
	"github.com/stemsi/course-catalog/internal/model"
)

const catalogFilePerm = 0o644

// CourseRepository is the catalog store: the single owner of the JSON file
// holding every course record.
//
// Append holds the write lock across load, duplicate check and rewrite, so
// concurrent submissions of the same code cannot both succeed. Readers take
// the read lock; the file is only ever replaced by rename, so they never
// observe a half-written collection. The lock is per process: run one
// repository per file.
type CourseRepository struct {
	path                string
	caseSensitiveLookup bool
	sink                events.Sink
	now                 func() time.Time

	mu sync.RWMutex
}

// Option configures a CourseRepository.
type Option func(*CourseRepository)

// WithSink sets the sink receiving one event per public operation.
func WithSink(s events.Sink) Option {
	return func(r *CourseRepository) { r.sink = s }
}

// WithCaseSensitiveLookup makes FindByCode require an exact match.
// Duplicate detection in Append is always case-insensitive.
func WithCaseSensitiveLookup(enabled bool) Option {
	return func(r *CourseRepository) { r.caseSensitiveLookup = enabled }
}

// NewCourseRepository creates a store backed by the file at path. The file
// does not need to exist yet.
func NewCourseRepository(path string, opts ...Option) (*CourseRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("catalog file path is required")
	}
	r := &CourseRepository{path: path, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Path returns the backing file location.
func (r *CourseRepository) Path() string {
	return r.path
}

// ListAll returns every course in insertion order. A missing file is an
// empty catalog, not an error.
func (r *CourseRepository) ListAll(ctx context.Context) (courses []model.Course, err error) {
	start := r.now()
	defer func() { r.emit(events.OpListAll, "", outcomeOf(err), start) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.load()
}

// FindByCode returns the course with the given code. The boolean is false
// when no course matches; that is a normal result, not an error.
func (r *CourseRepository) FindByCode(ctx context.Context, code string) (course model.Course, found bool, err error) {
	start := r.now()
	defer func() {
		outcome := outcomeOf(err)
		if err == nil && !found {
			outcome = events.OutcomeNotFound
		}
		r.emit(events.OpFindByCode, code, outcome, start)
	}()

	if err := ctx.Err(); err != nil {
		return model.Course{}, false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	courses, err := r.load()
	if err != nil {
		return model.Course{}, false, err
	}

	for _, c := range courses {
		if r.lookupMatch(c.Code, code) {
			return c, true, nil
		}
	}
	return model.Course{}, false, nil
}

// Append adds course to the end of the catalog and rewrites the file.
// It fails with a *DuplicateCodeError when a course with the same code,
// compared case-insensitively, already exists, and with an
// *InvalidRecordError for a blank code or a value that is not valid UTF-8.
// The file is untouched in both cases.
func (r *CourseRepository) Append(ctx context.Context, course model.Course) (err error) {
	start := r.now()
	defer func() { r.emit(events.OpAppend, course.Code, outcomeOf(err), start) }()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkRecord(course); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	courses, err := r.load()
	if err != nil {
		return err
	}

	index := indexByCode(courses)
	if existing, ok := index[foldCode(course.Code)]; ok {
		return &DuplicateCodeError{Code: course.Code, Existing: courses[existing].Code}
	}

	data, err := encodeCourses(append(courses, course))
	if err != nil {
		return &StorageIOError{Op: "encode", Path: r.path, Err: err}
	}
	if err := writeFileAtomic(r.path, data, catalogFilePerm); err != nil {
		return &StorageIOError{Op: "write", Path: r.path, Err: err}
	}
	return nil
}

// Count returns the number of stored courses.
func (r *CourseRepository) Count(ctx context.Context) (int, error) {
	courses, err := r.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(courses), nil
}

// load reads and decodes the backing file. Callers hold r.mu.
func (r *CourseRepository) load() ([]model.Course, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []model.Course{}, nil
		}
		return nil, &StorageIOError{Op: "read", Path: r.path, Err: err}
	}

	courses, err := decodeCourses(data)
	if err != nil {
		return nil, &StorageCorruptError{Path: r.path, Err: err}
	}
	return courses, nil
}

func (r *CourseRepository) lookupMatch(stored, wanted string) bool {
	if r.caseSensitiveLookup {
		return stored == wanted
	}
	return foldCode(stored) == foldCode(wanted)
}

func (r *CourseRepository) emit(op events.Operation, code string, outcome events.Outcome, start time.Time) {
	if r.sink == nil {
		return
	}
	events.SafeEmit(r.sink, events.Event{
		Operation: op,
		Code:      code,
		Outcome:   outcome,
		Duration:  r.now().Sub(start),
		At:        start,
	})
}

// checkRecord rejects records that would not survive a write/read round
// trip: the decoder refuses blank codes, and the encoder rewrites invalid
// UTF-8 to U+FFFD, which would also defeat the duplicate check.
func checkRecord(c model.Course) error {
	if strings.TrimSpace(c.Code) == "" {
		return &InvalidRecordError{Code: c.Code, Reason: "code is blank"}
	}
	fields := []struct{ name, value string }{
		{"code", c.Code},
		{"name", c.Name},
		{"instructor", c.Instructor},
		{"semester", c.Semester},
		{"schedule", c.Schedule},
		{"classroom", c.Classroom},
		{"prerequisites", c.Prerequisites},
		{"grading", c.Grading},
		{"description", c.Description},
	}
	for _, f := range fields {
		if !utf8.ValidString(f.value) {
			return &InvalidRecordError{Code: c.Code, Reason: f.name + " is not valid UTF-8"}
		}
	}
	return nil
}

// indexByCode maps folded codes to their position in courses.
func indexByCode(courses []model.Course) map[string]int {
	index := make(map[string]int, len(courses))
	for i, c := range courses {
		index[foldCode(c.Code)] = i
	}
	return index
}

// foldCode is the comparison key for case-insensitive code matching.
// A Caser is stateful, so each call builds its own.
func foldCode(code string) string {
	return cases.Fold().String(code)
}

func outcomeOf(err error) events.Outcome {
	switch {
	case err == nil:
		return events.OutcomeSuccess
	case errors.Is(err, ErrDuplicateCode):
		return events.OutcomeDuplicate
	case errors.Is(err, ErrInvalidRecord):
		return events.OutcomeInvalid
	case errors.Is(err, ErrStorageCorrupt):
		return events.OutcomeCorrupt
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return events.OutcomeCanceled
	default:
		return events.OutcomeIOError
	}
}
