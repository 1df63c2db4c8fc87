package testfixtures

import (
	"testing"
	"time"

	"github.com/example/kalender/internal/calendar"
	"github.com/example/kalender/internal/scheduler"
)

var referenceTime = time.Date(2022, time.April, 10, 12, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// MustDate parses an ISO date or fails the test.
func MustDate(tb testing.TB, iso string) calendar.Date {
	tb.Helper()
	d, err := calendar.ParseISODate(iso)
	if err != nil {
		tb.Fatalf("invalid fixture date %q: %v", iso, err)
	}
	return d
}

// MustClock parses a time of day or fails the test.
func MustClock(tb testing.TB, s string) scheduler.Clock {
	tb.Helper()
	c, err := scheduler.ParseClock(s)
	if err != nil {
		tb.Fatalf("invalid fixture time %q: %v", s, err)
	}
	return c
}

// MustInterval builds an interval or fails the test.
func MustInterval(tb testing.TB, start, end string) scheduler.Interval {
	tb.Helper()
	iv, err := scheduler.NewInterval(MustClock(tb, start), MustClock(tb, end))
	if err != nil {
		tb.Fatalf("invalid fixture interval %s-%s: %v", start, end, err)
	}
	return iv
}

// ActivityFixture describes an activity in string form.
type ActivityFixture struct {
	Start string
	End   string
	Label string
}

// Activity is shorthand for an ActivityFixture literal.
func Activity(start, end, label string) ActivityFixture {
	return ActivityFixture{Start: start, End: end, Label: label}
}

// NewPage builds a page, adding activities in the order given.
func NewPage(tb testing.TB, date string, activities ...ActivityFixture) *calendar.Page {
	tb.Helper()
	page := calendar.NewPage(MustDate(tb, date))
	for _, a := range activities {
		if _, err := page.AddActivity(MustInterval(tb, a.Start, a.End), a.Label); err != nil {
			tb.Fatalf("failed to add fixture activity %+v: %v", a, err)
		}
	}
	return page
}

// SamplePages returns pages with zero, one and several activities, including
// overlapping activities, equal start times and labels that need escaping.
func SamplePages(tb testing.TB) []*calendar.Page {
	tb.Helper()
	return []*calendar.Page{
		NewPage(tb, "2022-04-10"),
		NewPage(tb, "2022-04-11", Activity("10:00", "11:30", "Bokklubb")),
		NewPage(tb, "2022-04-12",
			Activity("13:00", "14:00", "Lunch; sen"),
			Activity("09:00", "10:00", "Möte"),
			Activity("09:00", "09:30", `C:\kalender`),
			Activity("09:15", "12:00", "rad ett\nrad två"),
			Activity("18:00", "19:00", ""),
		),
		NewPage(tb, "2022-05-01", Activity("00:00", "23:59", "Hela dagen")),
	}
}

// SampleCalendar wraps SamplePages in a calendar.
func SampleCalendar(tb testing.TB) *calendar.Calendar {
	tb.Helper()
	cal, err := calendar.New(SamplePages(tb)...)
	if err != nil {
		tb.Fatalf("failed to build sample calendar: %v", err)
	}
	return cal
}

// AssertPagesEqual fails the test unless both page sets hold the same dates
// and the same activities in the same order.
func AssertPagesEqual(tb testing.TB, want, got []*calendar.Page) {
	tb.Helper()
	if len(want) != len(got) {
		tb.Fatalf("expected %d pages, got %d", len(want), len(got))
	}
	for i := range want {
		if want[i].Date() != got[i].Date() {
			tb.Fatalf("page %d: expected date %s, got %s", i, want[i].Date(), got[i].Date())
		}
		wa, ga := want[i].Activities(), got[i].Activities()
		if len(wa) != len(ga) {
			tb.Fatalf("page %s: expected %d activities, got %d", want[i].Date(), len(wa), len(ga))
		}
		for j := range wa {
			if wa[j] != ga[j] {
				tb.Fatalf("page %s activity %d: expected %q, got %q", want[i].Date(), j, wa[j], ga[j])
			}
		}
	}
}
