package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/kalender/internal/calendar"
	"github.com/example/kalender/internal/logging"
	"github.com/example/kalender/internal/persistence"
	"github.com/example/kalender/internal/scheduler"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, persistence.ErrMalformedRecord):
		return "malformed_record"
	case errors.Is(err, persistence.ErrStorageUnavailable):
		return "storage_unavailable"
	case errors.Is(err, calendar.ErrDuplicateDate):
		return "duplicate_date"
	case errors.Is(err, calendar.ErrIndexOutOfRange):
		return "index_out_of_range"
	case errors.Is(err, calendar.ErrNoPages):
		return "no_pages"
	case errors.Is(err, scheduler.ErrInvalidInterval):
		return "invalid_interval"
	case errors.Is(err, scheduler.ErrInvalidClock):
		return "invalid_clock"
	case errors.Is(err, calendar.ErrInvalidDate):
		return "invalid_date"
	case errors.Is(err, ErrStoreNotConfigured):
		return "store_not_configured"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}

	var vErr *calendar.ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
