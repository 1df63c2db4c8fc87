package calendar

import (
	"errors"
	"slices"
	"testing"

	"github.com/example/kalender/internal/scheduler"
)

func TestPage_AddActivity_StableSortByStart(t *testing.T) {
	t.Parallel()

	page := NewPage(mustDate(t, "2022-04-10"))

	if _, err := page.AddActivity(mustInterval(t, "10:00", "11:00"), "late"); err != nil {
		t.Fatalf("AddActivity returned error: %v", err)
	}
	if _, err := page.AddActivity(mustInterval(t, "09:00", "09:30"), "first"); err != nil {
		t.Fatalf("AddActivity returned error: %v", err)
	}
	if _, err := page.AddActivity(mustInterval(t, "09:00", "09:45"), "second"); err != nil {
		t.Fatalf("AddActivity returned error: %v", err)
	}

	want := []string{"first", "second", "late"}
	if got := labels(page); !slices.Equal(got, want) {
		t.Fatalf("expected order %v, got %v", want, got)
	}
}

func TestPage_AddActivity_ReportsOverlap(t *testing.T) {
	t.Parallel()

	page := NewPage(mustDate(t, "2022-04-10"))

	overlap, err := page.AddActivity(mustInterval(t, "09:00", "10:00"), "standup")
	if err != nil || overlap {
		t.Fatalf("expected first activity without overlap, got overlap=%v err=%v", overlap, err)
	}

	overlap, err = page.AddActivity(mustInterval(t, "10:00", "11:00"), "review")
	if err != nil || overlap {
		t.Fatalf("expected touching activity without overlap, got overlap=%v err=%v", overlap, err)
	}

	overlap, err = page.AddActivity(mustInterval(t, "09:30", "10:30"), "clash")
	if err != nil {
		t.Fatalf("AddActivity returned error: %v", err)
	}
	if !overlap {
		t.Fatalf("expected overlap to be reported")
	}
	if page.Len() != 3 {
		t.Fatalf("expected overlapping activity to be kept, got %d activities", page.Len())
	}
}

func TestPage_AddActivity_RejectsInvalidInterval(t *testing.T) {
	t.Parallel()

	page := NewPage(mustDate(t, "2022-04-10"))
	_, err := page.AddActivity(scheduler.Interval{}, "broken")

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["interval"]; !ok {
		t.Fatalf("expected interval field error, got %v", vErr.FieldErrors)
	}
	if !errors.Is(err, scheduler.ErrInvalidInterval) {
		t.Fatalf("expected error to wrap ErrInvalidInterval")
	}
	if page.Len() != 0 {
		t.Fatalf("expected no activity to be added")
	}
}

func TestPage_RemoveActivity(t *testing.T) {
	t.Parallel()

	page := NewPage(mustDate(t, "2022-04-10"))
	page.AddActivity(mustInterval(t, "09:00", "10:00"), "a")
	page.AddActivity(mustInterval(t, "11:00", "12:00"), "b")

	removed, err := page.RemoveActivity(0)
	if err != nil {
		t.Fatalf("RemoveActivity returned error: %v", err)
	}
	if removed.Label() != "a" || page.Len() != 1 {
		t.Fatalf("unexpected removal result %q, len %d", removed.Label(), page.Len())
	}

	for _, index := range []int{-1, 1, 5} {
		if _, err := page.RemoveActivity(index); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("RemoveActivity(%d) expected ErrIndexOutOfRange, got %v", index, err)
		}
	}
}

func TestPage_ChangeActivityStartAndEnd(t *testing.T) {
	t.Parallel()

	page := NewPage(mustDate(t, "2022-04-10"))
	page.AddActivity(mustInterval(t, "09:00", "10:00"), "standup")
	page.AddActivity(mustInterval(t, "11:00", "12:00"), "lunch")

	t.Run("own opposite bound is enforced", func(t *testing.T) {
		if _, err := page.ChangeActivityStart(0, mustClock(t, "10:00")); !errors.Is(err, scheduler.ErrInvalidInterval) {
			t.Fatalf("expected ErrInvalidInterval, got %v", err)
		}
		if _, err := page.ChangeActivityEnd(1, mustClock(t, "11:00")); !errors.Is(err, scheduler.ErrInvalidInterval) {
			t.Fatalf("expected ErrInvalidInterval, got %v", err)
		}
	})

	t.Run("change does not overlap itself", func(t *testing.T) {
		overlap, err := page.ChangeActivityEnd(0, mustClock(t, "10:30"))
		if err != nil {
			t.Fatalf("ChangeActivityEnd returned error: %v", err)
		}
		if overlap {
			t.Fatalf("expected no overlap when only the edited activity covers the range")
		}
	})

	t.Run("sibling overlap is reported and applied", func(t *testing.T) {
		overlap, err := page.ChangeActivityEnd(0, mustClock(t, "11:30"))
		if err != nil {
			t.Fatalf("ChangeActivityEnd returned error: %v", err)
		}
		if !overlap {
			t.Fatalf("expected overlap with lunch")
		}
		a, _ := page.Activity(0)
		if a.End().String() != "11:30" {
			t.Fatalf("expected change to be applied, got %s", a.Interval())
		}
	})

	t.Run("start change re-sorts", func(t *testing.T) {
		if _, err := page.ChangeActivityStart(1, mustClock(t, "08:00")); err != nil {
			t.Fatalf("ChangeActivityStart returned error: %v", err)
		}
		want := []string{"lunch", "standup"}
		if got := labels(page); !slices.Equal(got, want) {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	})

	t.Run("index out of range", func(t *testing.T) {
		if _, err := page.ChangeActivityStart(2, mustClock(t, "08:00")); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
		}
		if err := page.RelabelActivity(-1, "x"); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
		}
	})
}

func TestPage_RelabelActivity(t *testing.T) {
	t.Parallel()

	page := NewPage(mustDate(t, "2022-04-10"))
	page.AddActivity(mustInterval(t, "09:00", "10:00"), "standup")

	if err := page.RelabelActivity(0, "retro"); err != nil {
		t.Fatalf("RelabelActivity returned error: %v", err)
	}
	a, _ := page.Activity(0)
	if a.Label() != "retro" {
		t.Fatalf("expected relabeled activity, got %q", a.Label())
	}
}

func TestPage_OverlapsAndOverlapsExcept(t *testing.T) {
	t.Parallel()

	page := NewPage(mustDate(t, "2022-04-10"))
	page.AddActivity(mustInterval(t, "09:00", "10:00"), "standup")

	if !page.Overlaps(mustClock(t, "09:30"), mustClock(t, "10:30")) {
		t.Fatalf("expected overlap")
	}
	if page.Overlaps(mustClock(t, "10:00"), mustClock(t, "11:00")) {
		t.Fatalf("expected touching range not to overlap")
	}
	if page.Overlaps(mustClock(t, "10:00"), mustClock(t, "09:00")) {
		t.Fatalf("expected invalid range to overlap nothing")
	}
	if page.OverlapsExcept(0, mustClock(t, "09:30"), mustClock(t, "10:30")) {
		t.Fatalf("expected excluded activity to be ignored")
	}
}

func TestNewPage_SortsAndCopies(t *testing.T) {
	t.Parallel()

	late, _ := scheduler.NewActivity(mustInterval(t, "15:00", "16:00"), "late")
	early, _ := scheduler.NewActivity(mustInterval(t, "08:00", "09:00"), "early")
	input := []scheduler.Activity{late, early}

	page := NewPage(mustDate(t, "2022-04-10"), input...)
	if got := labels(page); !slices.Equal(got, []string{"early", "late"}) {
		t.Fatalf("unexpected order %v", got)
	}
	if input[0].Label() != "late" {
		t.Fatalf("expected NewPage not to reorder the caller's slice")
	}

	activities := page.Activities()
	activities[0] = late
	if first, _ := page.Activity(0); first.Label() != "early" {
		t.Fatalf("expected Activities to return a copy")
	}
}
