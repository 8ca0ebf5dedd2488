package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/stemsi/course-catalog/internal/model"
)

// encodeCourses renders the full collection the way the file is stored:
// a JSON array indented by four spaces with a trailing newline.
func encodeCourses(courses []model.Course) ([]byte, error) {
	if courses == nil {
		courses = []model.Course{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(courses); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeCourses parses the stored collection. The top-level value must be
// an array of objects with string values; unknown keys and trailing
// content are rejected.
func decodeCourses(data []byte) ([]model.Course, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty file")
	}
	if trimmed[0] != '[' {
		return nil, errors.New("top-level value is not an array")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()

	var courses []model.Course
	if err := dec.Decode(&courses); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing content after array")
	}
	for i, c := range courses {
		if strings.TrimSpace(c.Code) == "" {
			return nil, fmt.Errorf("record %d has no code", i)
		}
	}
	if courses == nil {
		courses = []model.Course{}
	}
	return courses, nil
}

// writeFileAtomic replaces path with data without ever exposing a partial
// file: the bytes go to a temp file in the same directory, which is synced
// and renamed over the target, then the directory itself is synced.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	committed = true
	return syncDir(dir)
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	// Some filesystems refuse fsync on directories; the rename already happened.
	if err := f.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return fmt.Errorf("sync dir: %w", err)
	}
	return nil
}
