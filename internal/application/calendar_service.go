package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/kalender/internal/calendar"
	"github.com/example/kalender/internal/persistence"
	"github.com/example/kalender/internal/scheduler"
)

// CalendarService loads and saves a calendar through a page store and applies
// user edits to it, reporting overlaps as warnings.
type CalendarService struct {
	store  persistence.Store
	now    func() time.Time
	logger *slog.Logger
}

// NewCalendarService constructs a calendar service with the provided dependencies.
func NewCalendarService(store persistence.Store, now func() time.Time) *CalendarService {
	return NewCalendarServiceWithLogger(store, now, nil)
}

// NewCalendarServiceWithLogger constructs a calendar service with a specified logger.
func NewCalendarServiceWithLogger(store persistence.Store, now func() time.Time, logger *slog.Logger) *CalendarService {
	if now == nil {
		now = time.Now
	}
	return &CalendarService{store: store, now: now, logger: defaultLogger(logger)}
}

func (s *CalendarService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CalendarService", operation, attrs...)
}

// Today returns the current date according to the injected clock.
func (s *CalendarService) Today() calendar.Date {
	return calendar.DateOf(s.now())
}

// Load reads every stored page into a new calendar with the cursor on the
// first page. An empty store yields an empty calendar flagged for bootstrap.
func (s *CalendarService) Load(ctx context.Context) (result LoadResult, err error) {
	if s == nil || s.store == nil {
		err = ErrStoreNotConfigured
		return
	}

	logger := s.loggerWith(ctx, "Load", "location", s.store.Location())
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to load calendar", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "calendar loaded", "pages", result.Calendar.Len())
	}()

	pages, err := s.store.Load(ctx)
	if err != nil {
		return
	}

	cal, err := calendar.New(pages...)
	if err != nil {
		err = fmt.Errorf("load %s: %w", s.store.Location(), err)
		return
	}

	result = LoadResult{Calendar: cal, NeedsBootstrap: cal.Len() == 0}
	return
}

// Save writes every page of cal to the store, replacing what was stored.
func (s *CalendarService) Save(ctx context.Context, cal *calendar.Calendar) (err error) {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	if cal == nil {
		return ErrNilCalendar
	}

	logger := s.loggerWith(ctx, "Save", "location", s.store.Location(), "pages", cal.Len())
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to save calendar", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "calendar saved")
	}()

	return s.store.Save(ctx, cal.Pages())
}

// Bootstrap inserts the first page of an empty calendar and points the
// cursor at it. It is a no-op returning the current page when cal already
// has pages.
func (s *CalendarService) Bootstrap(ctx context.Context, cal *calendar.Calendar, date calendar.Date) (*calendar.Page, error) {
	if cal == nil {
		return nil, ErrNilCalendar
	}
	if cal.Len() > 0 {
		return cal.CurrentPage()
	}
	page, err := cal.AddPage(date)
	if err != nil {
		return nil, err
	}
	s.loggerWith(ctx, "Bootstrap", "date", date.String()).DebugContext(ctx, "first page created")
	return page, nil
}

// AddPage inserts an empty page for date. The cursor keeps pointing at the
// page it pointed at before.
func (s *CalendarService) AddPage(ctx context.Context, cal *calendar.Calendar, date calendar.Date) (*calendar.Page, error) {
	if cal == nil {
		return nil, ErrNilCalendar
	}
	page, err := cal.AddPage(date)
	if err != nil {
		s.loggerWith(ctx, "AddPage", "date", date.String()).DebugContext(ctx, "page rejected", "error_kind", ErrorKind(err))
		return nil, err
	}
	s.loggerWith(ctx, "AddPage", "date", date.String()).DebugContext(ctx, "page added")
	return page, nil
}

// DeleteCurrentPage removes the page under the cursor. When the calendar
// becomes empty, NeedsBootstrap is reported true.
func (s *CalendarService) DeleteCurrentPage(ctx context.Context, cal *calendar.Calendar) (needsBootstrap bool, err error) {
	if cal == nil {
		return false, ErrNilCalendar
	}
	page, err := cal.CurrentPage()
	if err != nil {
		return cal.Len() == 0, err
	}
	if err := cal.DeleteCurrentPage(); err != nil {
		return false, err
	}
	s.loggerWith(ctx, "DeleteCurrentPage", "date", page.Date().String()).DebugContext(ctx, "page deleted")
	return cal.Len() == 0, nil
}

// PreviewOverlaps lists the activities on page that [start, end) would
// overlap. skip excludes one activity, scheduler.NoSkip excludes none. An
// invalid range overlaps nothing.
func (s *CalendarService) PreviewOverlaps(page *calendar.Page, skip int, start, end scheduler.Clock) []OverlapWarning {
	if page == nil {
		return nil
	}
	candidate, err := scheduler.NewInterval(start, end)
	if err != nil {
		return nil
	}
	conflicts := scheduler.DetectConflicts(page.Activities(), candidate, skip)
	if len(conflicts) == 0 {
		return nil
	}
	warnings := make([]OverlapWarning, 0, len(conflicts))
	for _, c := range conflicts {
		warnings = append(warnings, OverlapWarning{Index: c.Index, Activity: c.Activity})
	}
	return warnings
}

// AddActivity adds an activity to the page and returns the activities it
// overlaps. The activity is added even when warnings are returned.
func (s *CalendarService) AddActivity(ctx context.Context, params AddActivityParams) (warnings []OverlapWarning, err error) {
	if params.Page == nil {
		return nil, ErrNilCalendar
	}

	logger := s.loggerWith(ctx, "AddActivity",
		"date", params.Page.Date().String(),
		"interval", params.Interval.String(),
	)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "activity rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "activity added", "overlaps", len(warnings))
	}()

	warnings = s.PreviewOverlaps(params.Page, scheduler.NoSkip, params.Interval.Start(), params.Interval.End())
	if _, err = params.Page.AddActivity(params.Interval, params.Label); err != nil {
		return nil, err
	}
	return warnings, nil
}

// RemoveActivity deletes the activity at index from the page.
func (s *CalendarService) RemoveActivity(ctx context.Context, page *calendar.Page, index int) (scheduler.Activity, error) {
	if page == nil {
		return scheduler.Activity{}, ErrNilCalendar
	}
	removed, err := page.RemoveActivity(index)
	logger := s.loggerWith(ctx, "RemoveActivity", "date", page.Date().String(), "index", index)
	if err != nil {
		logger.WarnContext(ctx, "activity not removed", "error", err, "error_kind", ErrorKind(err))
		return scheduler.Activity{}, err
	}
	logger.DebugContext(ctx, "activity removed")
	return removed, nil
}

// ChangeActivity changes the start, end or label of the activity at index.
// Time changes are validated against the activity's own opposite bound and
// return the other activities the changed interval overlaps.
func (s *CalendarService) ChangeActivity(ctx context.Context, params ChangeActivityParams) (warnings []OverlapWarning, err error) {
	if params.Page == nil {
		return nil, ErrNilCalendar
	}

	logger := s.loggerWith(ctx, "ChangeActivity",
		"date", params.Page.Date().String(),
		"index", params.Index,
		"field", string(params.Field),
	)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "activity not changed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "activity changed", "overlaps", len(warnings))
	}()

	current, err := params.Page.Activity(params.Index)
	if err != nil {
		return nil, err
	}

	switch params.Field {
	case FieldStart:
		warnings = s.PreviewOverlaps(params.Page, params.Index, params.Clock, current.End())
		_, err = params.Page.ChangeActivityStart(params.Index, params.Clock)
	case FieldEnd:
		warnings = s.PreviewOverlaps(params.Page, params.Index, current.Start(), params.Clock)
		_, err = params.Page.ChangeActivityEnd(params.Index, params.Clock)
	case FieldLabel:
		err = params.Page.RelabelActivity(params.Index, params.Label)
	default:
		err = &calendar.ValidationError{FieldErrors: map[string]string{"field": fmt.Sprintf("unknown activity field %q", params.Field)}}
	}
	if err != nil {
		return nil, err
	}
	return warnings, nil
}

// ThisMonth returns the pages of cal that fall in the current month.
func (s *CalendarService) ThisMonth(cal *calendar.Calendar) []*calendar.Page {
	if cal == nil {
		return nil
	}
	today := s.Today()
	return cal.PagesInMonth(today.Year(), today.Month())
}
