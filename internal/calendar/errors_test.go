package calendar

import (
	"errors"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	empty := &ValidationError{}
	if got := empty.Error(); got != "validation failed" {
		t.Fatalf("expected generic message for empty error, got %q", got)
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"start": "invalid", "end": "missing"}}
	if got := withFields.Error(); got != "validation failed: end: missing; start: invalid" {
		t.Fatalf("expected sorted field messages, got %q", got)
	}
}

func TestValidationError_HasErrorsAndUnwrap(t *testing.T) {
	t.Parallel()

	if (&ValidationError{}).HasErrors() {
		t.Fatalf("expected HasErrors to report false for empty error")
	}

	cause := errors.New("boom")
	vErr := newValidationError("interval", cause)
	if !vErr.HasErrors() {
		t.Fatalf("expected HasErrors to report true when fields are present")
	}
	if !errors.Is(vErr, cause) {
		t.Fatalf("expected ValidationError to unwrap to its cause")
	}
	if got := vErr.FieldErrors["interval"]; got != "boom" {
		t.Fatalf("expected field message to carry the cause, got %q", got)
	}

	var nilErr *ValidationError
	if nilErr.Unwrap() != nil {
		t.Fatalf("expected nil unwrap for nil error")
	}
}
