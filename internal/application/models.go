package application

import (
	"github.com/example/kalender/internal/calendar"
	"github.com/example/kalender/internal/scheduler"
)

// OverlapWarning describes an activity already on a page whose interval
// overlaps a new or changed activity. Overlaps are allowed; callers surface
// them to the user.
type OverlapWarning struct {
	Index    int
	Activity scheduler.Activity
}

// ActivityField names the part of an activity ChangeActivity modifies.
type ActivityField string

const (
	FieldStart ActivityField = "start"
	FieldEnd   ActivityField = "end"
	FieldLabel ActivityField = "label"
)

// AddActivityParams wraps the data required to add an activity to a page.
type AddActivityParams struct {
	Page     *calendar.Page
	Interval scheduler.Interval
	Label    string
}

// ChangeActivityParams wraps the data required to change one field of an
// activity. Clock is used for FieldStart and FieldEnd, Label for FieldLabel.
type ChangeActivityParams struct {
	Page  *calendar.Page
	Index int
	Field ActivityField
	Clock scheduler.Clock
	Label string
}

// LoadResult is the outcome of loading a calendar.
type LoadResult struct {
	Calendar *calendar.Calendar
	// NeedsBootstrap is set when no pages were stored, so the caller must
	// create the first page before the calendar can be browsed.
	NeedsBootstrap bool
}
