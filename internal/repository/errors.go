package repository

import (
	"errors"
	"fmt"
)

// Sentinel errors for the catalog store. Typed errors below match them
// through errors.Is.
var (
	ErrDuplicateCode  = errors.New("duplicate course code")
	ErrStorageCorrupt = errors.New("catalog storage corrupt")
	ErrStorageIO      = errors.New("catalog storage I/O failure")
	ErrInvalidRecord  = errors.New("invalid course record")
)

// DuplicateCodeError is returned by Append when the code is already taken.
type DuplicateCodeError struct {
	Code     string // code that was submitted
	Existing string // code as stored, which may differ in case
}

func (e *DuplicateCodeError) Error() string {
	if e.Existing != "" && e.Existing != e.Code {
		return fmt.Sprintf("course code %q already exists as %q", e.Code, e.Existing)
	}
	return fmt.Sprintf("course code %q already exists", e.Code)
}

// Is implements errors.Is support.
func (e *DuplicateCodeError) Is(target error) bool {
	return target == ErrDuplicateCode
}

// InvalidRecordError is returned by Append, before any I/O, for a record
// the store could not write and read back unchanged.
type InvalidRecordError struct {
	Code   string
	Reason string
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid course record %q: %s", e.Code, e.Reason)
}

// Is implements errors.Is support.
func (e *InvalidRecordError) Is(target error) bool {
	return target == ErrInvalidRecord
}

// StorageCorruptError means the backing file exists but does not decode
// into a list of course records.
type StorageCorruptError struct {
	Path string
	Err  error
}

func (e *StorageCorruptError) Error() string {
	return fmt.Sprintf("catalog file %s is corrupt: %v", e.Path, e.Err)
}

func (e *StorageCorruptError) Unwrap() error { return e.Err }

// Is implements errors.Is support.
func (e *StorageCorruptError) Is(target error) bool {
	return target == ErrStorageCorrupt
}

// StorageIOError wraps an operating-system failure while reading or
// writing the backing file (permission denied, disk full, ...).
type StorageIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageIOError) Error() string {
	return fmt.Sprintf("catalog %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageIOError) Unwrap() error { return e.Err }

// Is implements errors.Is support.
func (e *StorageIOError) Is(target error) bool {
	return target == ErrStorageIO
}

// IsStorageError reports whether err is a corrupt-file or I/O failure.
func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorageCorrupt) || errors.Is(err, ErrStorageIO)
}
