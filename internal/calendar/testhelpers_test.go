package calendar

import (
	"testing"

	"github.com/example/kalender/internal/scheduler"
)

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseISODate(s)
	if err != nil {
		t.Fatalf("failed to parse date %q: %v", s, err)
	}
	return d
}

func mustInterval(t *testing.T, start, end string) scheduler.Interval {
	t.Helper()
	s, err := scheduler.ParseClock(start)
	if err != nil {
		t.Fatalf("failed to parse clock %q: %v", start, err)
	}
	e, err := scheduler.ParseClock(end)
	if err != nil {
		t.Fatalf("failed to parse clock %q: %v", end, err)
	}
	iv, err := scheduler.NewInterval(s, e)
	if err != nil {
		t.Fatalf("failed to build interval: %v", err)
	}
	return iv
}

func mustClock(t *testing.T, s string) scheduler.Clock {
	t.Helper()
	c, err := scheduler.ParseClock(s)
	if err != nil {
		t.Fatalf("failed to parse clock %q: %v", s, err)
	}
	return c
}

func labels(p *Page) []string {
	out := make([]string, 0, p.Len())
	for _, a := range p.Activities() {
		out = append(out, a.Label())
	}
	return out
}

func dates(c *Calendar) []string {
	out := make([]string, 0, c.Len())
	for _, p := range c.Pages() {
		out = append(out, p.Date().String())
	}
	return out
}

