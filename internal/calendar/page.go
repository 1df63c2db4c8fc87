package calendar

import (
	"fmt"
	"slices"

	"github.com/example/kalender/internal/scheduler"
)

// Page holds the activities planned for one date. Activities are kept
// stable-sorted by start time; overlapping activities are allowed and only
// reported to the caller.
type Page struct {
	date       Date
	activities []scheduler.Activity
}

// NewPage builds a page for date holding activities, sorted by start time
// with ties kept in argument order.
func NewPage(date Date, activities ...scheduler.Activity) *Page {
	p := &Page{date: date, activities: slices.Clone(activities)}
	p.sort()
	return p
}

// Date returns the page date.
func (p *Page) Date() Date { return p.date }

// Len returns the number of activities.
func (p *Page) Len() int { return len(p.activities) }

// Activities returns a copy of the ordered activities.
func (p *Page) Activities() []scheduler.Activity {
	return slices.Clone(p.activities)
}

// Activity returns the activity at index.
func (p *Page) Activity(index int) (scheduler.Activity, error) {
	if err := p.checkIndex(index); err != nil {
		return scheduler.Activity{}, err
	}
	return p.activities[index], nil
}

// AddActivity inserts a new activity and reports whether it overlaps one
// already on the page. The activity is added regardless of overlap.
func (p *Page) AddActivity(interval scheduler.Interval, label string) (bool, error) {
	activity, err := scheduler.NewActivity(interval, label)
	if err != nil {
		return false, newValidationError("interval", err)
	}
	overlap := p.Overlaps(interval.Start(), interval.End())
	p.activities = append(p.activities, activity)
	p.sort()
	return overlap, nil
}

// RemoveActivity deletes and returns the activity at index.
func (p *Page) RemoveActivity(index int) (scheduler.Activity, error) {
	if err := p.checkIndex(index); err != nil {
		return scheduler.Activity{}, err
	}
	removed := p.activities[index]
	p.activities = slices.Delete(p.activities, index, index+1)
	return removed, nil
}

// ChangeActivityStart moves the start of the activity at index. The new start
// is validated against the activity's own end only; overlap with the other
// activities is reported, not rejected.
func (p *Page) ChangeActivityStart(index int, start scheduler.Clock) (bool, error) {
	if err := p.checkIndex(index); err != nil {
		return false, err
	}
	updated, err := p.activities[index].WithStart(start)
	if err != nil {
		return false, err
	}
	return p.replace(index, updated), nil
}

// ChangeActivityEnd moves the end of the activity at index, mirroring
// ChangeActivityStart.
func (p *Page) ChangeActivityEnd(index int, end scheduler.Clock) (bool, error) {
	if err := p.checkIndex(index); err != nil {
		return false, err
	}
	updated, err := p.activities[index].WithEnd(end)
	if err != nil {
		return false, err
	}
	return p.replace(index, updated), nil
}

// RelabelActivity changes the label of the activity at index.
func (p *Page) RelabelActivity(index int, label string) error {
	if err := p.checkIndex(index); err != nil {
		return err
	}
	p.activities[index] = p.activities[index].Relabel(label)
	return nil
}

// Overlaps reports whether any activity on the page overlaps [start, end).
// An invalid range overlaps nothing.
func (p *Page) Overlaps(start, end scheduler.Clock) bool {
	return p.OverlapsExcept(scheduler.NoSkip, start, end)
}

// OverlapsExcept is Overlaps ignoring the activity at index, for previewing
// a change to that activity.
func (p *Page) OverlapsExcept(index int, start, end scheduler.Clock) bool {
	candidate, err := scheduler.NewInterval(start, end)
	if err != nil {
		return false
	}
	return len(scheduler.DetectConflicts(p.activities, candidate, index)) > 0
}

// replace swaps in updated at index, re-sorts and reports sibling overlap.
func (p *Page) replace(index int, updated scheduler.Activity) bool {
	overlap := len(scheduler.DetectConflicts(p.activities, updated.Interval(), index)) > 0
	p.activities[index] = updated
	p.sort()
	return overlap
}

func (p *Page) sort() {
	slices.SortStableFunc(p.activities, scheduler.CompareByStart)
}

func (p *Page) checkIndex(index int) error {
	if index < 0 || index >= len(p.activities) {
		return fmt.Errorf("%w: activity %d of %d", ErrIndexOutOfRange, index, len(p.activities))
	}
	return nil
}
