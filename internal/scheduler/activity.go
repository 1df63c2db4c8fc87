package scheduler

import (
	"cmp"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Activity is a labeled interval within a single day.
type Activity struct {
	interval Interval
	label    string
}

// NewActivity builds an activity after validating its interval. A valid UTF-8
// label is stored in Unicode NFC form; any other label is kept byte for byte.
func NewActivity(interval Interval, label string) (Activity, error) {
	if err := interval.Validate(); err != nil {
		return Activity{}, err
	}
	return Activity{interval: interval, label: normalizeLabel(label)}, nil
}

// Interval returns the activity's time range.
func (a Activity) Interval() Interval { return a.interval }

// Start returns the start of the activity.
func (a Activity) Start() Clock { return a.interval.start }

// End returns the end of the activity.
func (a Activity) End() Clock { return a.interval.end }

// Label returns the free-text description.
func (a Activity) Label() string { return a.label }

// WithStart returns a copy starting at start. It fails with ErrInvalidInterval
// if start is not before the current end.
func (a Activity) WithStart(start Clock) (Activity, error) {
	iv, err := a.interval.WithStart(start)
	if err != nil {
		return Activity{}, err
	}
	a.interval = iv
	return a, nil
}

// WithEnd returns a copy ending at end. It fails with ErrInvalidInterval if
// end is not after the current start.
func (a Activity) WithEnd(end Clock) (Activity, error) {
	iv, err := a.interval.WithEnd(end)
	if err != nil {
		return Activity{}, err
	}
	a.interval = iv
	return a, nil
}

// Relabel returns a copy carrying the new label.
func (a Activity) Relabel(label string) Activity {
	a.label = normalizeLabel(label)
	return a
}

// String renders the activity the way calendar pages display it, e.g.
// "10:00-11:30: Book club".
func (a Activity) String() string {
	return a.interval.String() + ": " + a.label
}

// CompareByStart orders activities by start time only, so a stable sort keeps
// insertion order among equal starts.
func CompareByStart(a, b Activity) int {
	return cmp.Compare(a.interval.start, b.interval.start)
}

func normalizeLabel(label string) string {
	if !utf8.ValidString(label) {
		return label
	}
	return norm.NFC.String(label)
}
