package calendar

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrDuplicateDate is returned when a page for the date already exists.
	ErrDuplicateDate = errors.New("calendar: duplicate date")
	// ErrIndexOutOfRange is returned when a page or activity index does not exist.
	ErrIndexOutOfRange = errors.New("calendar: index out of range")
	// ErrNoPages is returned by cursor operations on a calendar without pages.
	ErrNoPages = errors.New("calendar: no pages")
	// ErrInvalidDate is returned when a date cannot be parsed or does not exist.
	ErrInvalidDate = errors.New("calendar: invalid date")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field+": "+v.FieldErrors[field])
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, "; ")
}

// Unwrap exposes the underlying cause.
func (v *ValidationError) Unwrap() error {
	if v == nil {
		return nil
	}
	return v.Err
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

func newValidationError(field string, cause error) *ValidationError {
	vErr := &ValidationError{Err: cause}
	vErr.add(field, cause.Error())
	return vErr
}
