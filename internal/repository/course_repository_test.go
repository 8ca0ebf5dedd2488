package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/course-catalog/internal/events"
	"github.com/stemsi/course-catalog/internal/model"
)

func newTestRepo(t *testing.T, opts ...Option) (*CourseRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "course_catalog.json")
	repo, err := NewCourseRepository(path, opts...)
	require.NoError(t, err)
	return repo, path
}

func course(code string) model.Course {
	return model.Course{
		Code:       code,
		Name:       "Intro",
		Instructor: "Dr. A",
		Semester:   "Fall",
		Schedule:   "MWF 9am",
	}
}

func TestNewCourseRepository_RequiresPath(t *testing.T) {
	_, err := NewCourseRepository("  ")
	assert.Error(t, err)
}

func TestListAll_MissingFileIsEmpty(t *testing.T) {
	repo, _ := newTestRepo(t)

	courses, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, courses)
	assert.Empty(t, courses)
}

func TestAppend_PreservesInsertionOrder(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, course("CS101")))
	require.NoError(t, repo.Append(ctx, course("MATH200")))
	require.NoError(t, repo.Append(ctx, course("BIO150")))

	courses, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 3)
	assert.Equal(t, "CS101", courses[0].Code)
	assert.Equal(t, "MATH200", courses[1].Code)
	assert.Equal(t, "BIO150", courses[2].Code)
}

func TestAppend_DuplicateCodeCaseInsensitive(t *testing.T) {
	repo, path := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, course("CS101")))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	dup := course("cs101")
	dup.Name = "Another intro"
	err = repo.Append(ctx, dup)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateCode))
	var de *DuplicateCodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "cs101", de.Code)
	assert.Equal(t, "CS101", de.Existing)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "file must be unchanged after a rejected append")

	courses, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "CS101", courses[0].Code)
	assert.Equal(t, "Intro", courses[0].Name)
}

func TestFindByCode(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		repo, _ := newTestRepo(t)
		_, found, err := repo.FindByCode(ctx, "CS101")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("absent code", func(t *testing.T) {
		repo, _ := newTestRepo(t)
		require.NoError(t, repo.Append(ctx, course("CS101")))

		_, found, err := repo.FindByCode(ctx, "CS999")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("case-insensitive by default", func(t *testing.T) {
		repo, _ := newTestRepo(t)
		require.NoError(t, repo.Append(ctx, course("CS101")))

		got, found, err := repo.FindByCode(ctx, "cs101")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "CS101", got.Code)
	})

	t.Run("case-sensitive when configured", func(t *testing.T) {
		repo, _ := newTestRepo(t, WithCaseSensitiveLookup(true))
		require.NoError(t, repo.Append(ctx, course("CS101")))

		_, found, err := repo.FindByCode(ctx, "cs101")
		require.NoError(t, err)
		assert.False(t, found)

		_, found, err = repo.FindByCode(ctx, "CS101")
		require.NoError(t, err)
		assert.True(t, found)
	})
}

func TestAppend_PersistsUniformSchema(t *testing.T) {
	repo, path := newTestRepo(t)
	require.NoError(t, repo.Append(context.Background(), course("CS101")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	for _, key := range []string{
		"code", "name", "instructor", "semester", "schedule",
		"classroom", "prerequisites", "grading", "description",
	} {
		assert.Contains(t, string(data), fmt.Sprintf("%q:", key))
	}
	assert.Contains(t, string(data), `"classroom": ""`)
	assert.Contains(t, string(data), "\n    {\n")
}

func TestAppend_NewRepositorySeesPersistedData(t *testing.T) {
	repo, path := newTestRepo(t)
	require.NoError(t, repo.Append(context.Background(), course("CS101")))

	reopened, err := NewCourseRepository(path)
	require.NoError(t, err)
	courses, err := reopened.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, course("CS101"), courses[0])
}

func TestListAll_CorruptFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", `[{"code": "CS101",`},
		{"object instead of array", `{"code": "CS101"}`},
		{"empty file", ``},
		{"unknown field", `[{"code": "CS101", "credits": "3"}]`},
		{"non-string value", `[{"code": 101}]`},
		{"null record", `[null]`},
		{"trailing content", `[] []`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, path := newTestRepo(t)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := repo.ListAll(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrStorageCorrupt))
			assert.True(t, IsStorageError(err))

			_, _, err = repo.FindByCode(context.Background(), "CS101")
			assert.True(t, errors.Is(err, ErrStorageCorrupt))

			err = repo.Append(context.Background(), course("NEW1"))
			assert.True(t, errors.Is(err, ErrStorageCorrupt))
		})
	}
}

func TestListAll_IOError(t *testing.T) {
	dir := t.TempDir()
	// A directory where the file should be makes every read fail.
	repo, err := NewCourseRepository(dir)
	require.NoError(t, err)

	_, err = repo.ListAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStorageIO))

	var ioErr *StorageIOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "read", ioErr.Op)
}

func TestAppend_LeavesNoTempFiles(t *testing.T) {
	repo, path := newTestRepo(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(ctx, course(fmt.Sprintf("C%d", i))))
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(path), entries[0].Name())
}

func TestOperations_RespectCanceledContext(t *testing.T) {
	repo, path := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Append(ctx, course("CS101"))
	assert.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	_, err = repo.ListAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAppend_ConcurrentSameCodeExactlyOneWins(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	var ok, dup atomic.Int64
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			code := "CS101"
			if i%2 == 1 {
				code = "cs101"
			}
			err := repo.Append(ctx, course(code))
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, ErrDuplicateCode):
				dup.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int64(1), ok.Load())
	assert.Equal(t, int64(workers-1), dup.Load())

	courses, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, 1)
}

func TestAppend_ConcurrentDistinctCodesNoLostUpdates(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.Append(ctx, course(fmt.Sprintf("C%03d", i))))
		}(i)
	}

	// Readers running alongside writers must never see a corrupt file.
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.ListAll(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, workers, n)
}

type recordingSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (s *recordingSink) Emit(e events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) outcomes() []events.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]events.Outcome, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Outcome)
	}
	return out
}

func TestOperations_EmitEvents(t *testing.T) {
	sink := &recordingSink{}
	repo, _ := newTestRepo(t, WithSink(sink))
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, course("CS101")))
	require.Error(t, repo.Append(ctx, course("cs101")))
	_, _, _ = repo.FindByCode(ctx, "CS101")
	_, _, _ = repo.FindByCode(ctx, "NOPE")
	_, _ = repo.ListAll(ctx)

	assert.Equal(t, []events.Outcome{
		events.OutcomeSuccess,
		events.OutcomeDuplicate,
		events.OutcomeSuccess,
		events.OutcomeNotFound,
		events.OutcomeSuccess,
	}, sink.outcomes())

	first := sink.events[0]
	assert.Equal(t, events.OpAppend, first.Operation)
	assert.Equal(t, "CS101", first.Code)
	assert.Equal(t, "course.append", first.Name())
	assert.False(t, first.At.IsZero())
	assert.GreaterOrEqual(t, int64(first.Duration), int64(0))
}

func TestOperations_CorruptOutcomeEmitted(t *testing.T) {
	sink := &recordingSink{}
	repo, path := newTestRepo(t, WithSink(sink))
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, _ = repo.ListAll(context.Background())
	assert.Equal(t, []events.Outcome{events.OutcomeCorrupt}, sink.outcomes())
}

func TestOperations_PanickingSinkDoesNotFailStore(t *testing.T) {
	sink := events.SinkFunc(func(events.Event) { panic("sink down") })
	repo, _ := newTestRepo(t, WithSink(sink))
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, course("CS101")))
	courses, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, 1)
}

func TestAppend_RejectsBlankCode(t *testing.T) {
	sink := &recordingSink{}
	repo, path := newTestRepo(t, WithSink(sink))
	ctx := context.Background()

	for _, code := range []string{"", "   ", "\t\n"} {
		err := repo.Append(ctx, course(code))
		require.ErrorIs(t, err, ErrInvalidRecord, "code %q", code)
		var ire *InvalidRecordError
		require.True(t, errors.As(err, &ire))
		assert.Equal(t, "code is blank", ire.Reason)
	}

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "rejected records must not create the file")

	require.NoError(t, repo.Append(ctx, course("CS102")))
	courses, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "CS102", courses[0].Code)

	assert.Equal(t, events.OutcomeInvalid, sink.outcomes()[0])
}

func TestAppend_RejectsInvalidUTF8(t *testing.T) {
	repo, path := newTestRepo(t)
	ctx := context.Background()

	assert.ErrorIs(t, repo.Append(ctx, course("A\xff")), ErrInvalidRecord)
	assert.ErrorIs(t, repo.Append(ctx, course("A\xfe")), ErrInvalidRecord)

	bad := course("CS101")
	bad.Description = "caf\xe9"
	assert.ErrorIs(t, repo.Append(ctx, bad), ErrInvalidRecord)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Valid multi-byte codes still work and round-trip unchanged.
	require.NoError(t, repo.Append(ctx, course("CAFÉ1")))
	got, found, err := repo.FindByCode(ctx, "CAFÉ1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "CAFÉ1", got.Code)

	courses, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, 1)
}
