package application

import "errors"

var (
	// ErrStoreNotConfigured is returned when the service has no page store.
	ErrStoreNotConfigured = errors.New("application: store not configured")
	// ErrNilCalendar is returned when an operation receives no calendar or page.
	ErrNilCalendar = errors.New("application: nil calendar")
)
