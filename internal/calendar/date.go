package calendar

import (
	"cmp"
	"fmt"
	"time"
)

// Date is a calendar date without time of day or zone. Dates are comparable
// with ==.
type Date struct {
	year  int
	month time.Month
	day   int
}

// NewDate validates and builds a date. Impossible dates such as April 31 are
// rejected rather than normalised.
func NewDate(year int, month time.Month, day int) (Date, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Date{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, int(month), day)
	}
	return Date{year: year, month: month, day: day}, nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// ParseDate parses user input in the compact YYYYMMDD form.
func ParseDate(s string) (Date, error) {
	return parseLayout("20060102", s)
}

// ParseISODate parses the YYYY-MM-DD form used by the page encoders.
func ParseISODate(s string) (Date, error) {
	return parseLayout(time.DateOnly, s)
}

func parseLayout(layout, s string) (Date, error) {
	// time.Parse accepts unpadded fields in some layouts; the length check
	// keeps the grammar fixed-width.
	if len(s) != len(layout) {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// Year returns the year.
func (d Date) Year() int { return d.year }

// Month returns the month.
func (d Date) Month() time.Month { return d.month }

// Day returns the day of the month.
func (d Date) Day() int { return d.day }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// Compare returns -1, 0 or +1 ordering d relative to other.
func (d Date) Compare(other Date) int {
	if c := cmp.Compare(d.year, other.year); c != 0 {
		return c
	}
	if c := cmp.Compare(d.month, other.month); c != 0 {
		return c
	}
	return cmp.Compare(d.day, other.day)
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }

// String renders the date in ISO form, YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}
