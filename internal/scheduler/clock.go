package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the number of distinct minute-resolution clock values.
const MinutesPerDay = 24 * 60

// ErrInvalidClock is returned when a time of day cannot be parsed or is out of range.
var ErrInvalidClock = errors.New("scheduler: invalid time of day")

// Clock is a time of day expressed as minutes since midnight (0..1439).
type Clock int

// NewClock builds a Clock from an hour (0..23) and minute (0..59).
func NewClock(hour, minute int) (Clock, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %02d:%02d", ErrInvalidClock, hour, minute)
	}
	return Clock(hour*60 + minute), nil
}

// ParseClock accepts user input in the forms HHMM, HMM, HH:MM, HH.MM and HH MM.
// With a separator the hour and minute components may be one or two digits.
func ParseClock(input string) (Clock, error) {
	s := strings.TrimSpace(input)

	var hourPart, minutePart string
	if i := strings.IndexAny(s, ":. "); i >= 0 {
		hourPart, minutePart = s[:i], s[i+1:]
		if len(hourPart) == 0 || len(hourPart) > 2 || len(minutePart) == 0 || len(minutePart) > 2 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, input)
		}
	} else {
		if len(s) != 3 && len(s) != 4 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, input)
		}
		hourPart, minutePart = s[:len(s)-2], s[len(s)-2:]
	}

	hour, ok := atoiDigits(hourPart)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, input)
	}
	minute, ok := atoiDigits(minutePart)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, input)
	}
	return NewClock(hour, minute)
}

// ParseStoredClock parses the zero-padded HH:MM form written by the page encoders.
func ParseStoredClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	hour, ok := atoiDigits(s[:2])
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	minute, ok := atoiDigits(s[3:])
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return NewClock(hour, minute)
}

// Valid reports whether c lies within a single day.
func (c Clock) Valid() bool {
	return c >= 0 && c < MinutesPerDay
}

// Hour returns the hour component.
func (c Clock) Hour() int { return int(c) / 60 }

// Minute returns the minute component.
func (c Clock) Minute() int { return int(c) % 60 }

// String renders the clock as zero-padded HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func atoiDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
