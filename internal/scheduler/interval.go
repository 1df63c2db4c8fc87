package scheduler

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInterval is returned when an interval's end does not fall after its start.
var ErrInvalidInterval = errors.New("scheduler: invalid interval")

// Interval is a half-open time range [start, end) within a single day.
type Interval struct {
	start Clock
	end   Clock
}

// NewInterval validates and builds an interval. Zero-length and inverted
// ranges are rejected.
func NewInterval(start, end Clock) (Interval, error) {
	iv := Interval{start: start, end: end}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

// Validate reports whether the interval satisfies start < end within one day.
// The zero Interval is invalid.
func (iv Interval) Validate() error {
	if !iv.start.Valid() || !iv.end.Valid() {
		return fmt.Errorf("%w: bounds %d..%d outside the day", ErrInvalidInterval, int(iv.start), int(iv.end))
	}
	if iv.end <= iv.start {
		return fmt.Errorf("%w: end %s is not after start %s", ErrInvalidInterval, iv.end, iv.start)
	}
	return nil
}

// Start returns the inclusive lower bound.
func (iv Interval) Start() Clock { return iv.start }

// End returns the exclusive upper bound.
func (iv Interval) End() Clock { return iv.end }

// Duration returns the length of the interval.
func (iv Interval) Duration() time.Duration {
	return time.Duration(iv.end-iv.start) * time.Minute
}

// Overlaps reports whether the two half-open ranges intersect. Touching
// endpoints do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.start < other.end && other.start < iv.end
}

// WithStart returns a copy with a new start, re-validated against the current end.
func (iv Interval) WithStart(start Clock) (Interval, error) {
	return NewInterval(start, iv.end)
}

// WithEnd returns a copy with a new end, re-validated against the current start.
func (iv Interval) WithEnd(end Clock) (Interval, error) {
	return NewInterval(iv.start, end)
}

// String renders the interval as HH:MM-HH:MM.
func (iv Interval) String() string {
	return iv.start.String() + "-" + iv.end.String()
}
