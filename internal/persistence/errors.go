package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord is returned when a stored page cannot be decoded.
	ErrMalformedRecord = errors.New("persistence: malformed record")
	// ErrStorageUnavailable is returned when the storage location exists but
	// cannot be read or written.
	ErrStorageUnavailable = errors.New("persistence: storage unavailable")
)

// MalformedRecordError describes a decode failure on a specific resource and line.
type MalformedRecordError struct {
	Resource string // File, folder entry or table the record came from
	Line     int    // 1-based line number; 0 when not applicable
	Reason   string
	Err      error // Underlying parse error, if any
}

// Error implements the error interface.
func (e *MalformedRecordError) Error() string {
	where := e.Resource
	if where == "" {
		where = "record"
	}
	if e.Line > 0 {
		where = fmt.Sprintf("%s:%d", where, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", ErrMalformedRecord, where, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", ErrMalformedRecord, where, e.Reason)
}

// Unwrap returns the underlying error.
func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrMalformedRecord.
func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// AtLocation annotates a decode error with the resource and line it came
// from. Errors of other types are returned unchanged.
func AtLocation(err error, resource string, line int) error {
	var mErr *MalformedRecordError
	if !errors.As(err, &mErr) {
		return err
	}
	located := *mErr
	located.Resource = resource
	located.Line = line
	return &located
}

// StorageError wraps file system and database failures during load or save.
type StorageError struct {
	Location  string // File, folder or DSN
	Operation string // read, write, replace, ...
	Err       error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrStorageUnavailable, e.Operation, e.Location, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrStorageUnavailable.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

// NewStorageError creates a new StorageError.
func NewStorageError(location, operation string, err error) *StorageError {
	return &StorageError{
		Location:  location,
		Operation: operation,
		Err:       err,
	}
}
