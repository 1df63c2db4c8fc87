package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/kalender/internal/calendar"
	"github.com/example/kalender/internal/persistence"
	"github.com/example/kalender/internal/scheduler"
	"github.com/example/kalender/internal/testfixtures"
)

type memoryStore struct {
	pages   []*calendar.Page
	loadErr error
	saveErr error
	saves   int
}

func (m *memoryStore) Load(context.Context) ([]*calendar.Page, error) {
	return m.pages, m.loadErr
}

func (m *memoryStore) Save(_ context.Context, pages []*calendar.Page) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.pages = pages
	return nil
}

func (m *memoryStore) Location() string { return "memory" }

func newTestService(store persistence.Store) *CalendarService {
	clock := testfixtures.NewClock(time.Time{})
	return NewCalendarServiceWithLogger(store, clock.NowFunc(), nil)
}

func TestCalendarServiceLoadEmptyNeedsBootstrap(t *testing.T) {
	t.Parallel()

	svc := newTestService(&memoryStore{})
	result, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !result.NeedsBootstrap || result.Calendar.Len() != 0 {
		t.Fatalf("expected empty calendar needing bootstrap, got %+v", result)
	}

	page, err := svc.Bootstrap(context.Background(), result.Calendar, svc.Today())
	if err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if want := calendar.DateOf(testfixtures.ReferenceTime()); page.Date() != want {
		t.Fatalf("expected bootstrap page dated %s, got %s", want, page.Date())
	}
	current, err := result.Calendar.CurrentPage()
	if err != nil || current != page {
		t.Fatalf("expected cursor on bootstrap page, got %v (%v)", current, err)
	}

	again, err := svc.Bootstrap(context.Background(), result.Calendar, testfixtures.MustDate(t, "2030-01-01"))
	if err != nil || again != page || result.Calendar.Len() != 1 {
		t.Fatalf("expected Bootstrap on a non-empty calendar to be a no-op")
	}
}

func TestCalendarServiceLoadSaveRoundTrip(t *testing.T) {
	t.Parallel()

	for format, store := range testfixtures.NewStoreHarness(t).All() {
		t.Run(string(format), func(t *testing.T) {
			svc := newTestService(store)
			ctx := context.Background()

			if err := svc.Save(ctx, testfixtures.SampleCalendar(t)); err != nil {
				t.Fatalf("Save returned error: %v", err)
			}

			result, err := svc.Load(ctx)
			if err != nil {
				t.Fatalf("Load returned error: %v", err)
			}
			if result.NeedsBootstrap {
				t.Fatal("expected loaded calendar not to need bootstrap")
			}
			testfixtures.AssertPagesEqual(t, testfixtures.SamplePages(t), result.Calendar.Pages())
			if result.Calendar.Cursor() != 0 {
				t.Fatalf("expected cursor on first page, got %d", result.Calendar.Cursor())
			}
		})
	}
}

func TestCalendarServiceLoadErrors(t *testing.T) {
	t.Parallel()

	malformed := &persistence.MalformedRecordError{Resource: "pages.txt", Line: 2, Reason: "bad"}
	_, err := newTestService(&memoryStore{loadErr: malformed}).Load(context.Background())
	if !errors.Is(err, persistence.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}

	duplicates := &memoryStore{pages: []*calendar.Page{
		testfixtures.NewPage(t, "2022-04-10"),
		testfixtures.NewPage(t, "2022-04-10"),
	}}
	_, err = newTestService(duplicates).Load(context.Background())
	if !errors.Is(err, calendar.ErrDuplicateDate) {
		t.Fatalf("expected ErrDuplicateDate, got %v", err)
	}

	_, err = NewCalendarService(nil, nil).Load(context.Background())
	if !errors.Is(err, ErrStoreNotConfigured) {
		t.Fatalf("expected ErrStoreNotConfigured, got %v", err)
	}
}

func TestCalendarServiceSaveErrors(t *testing.T) {
	t.Parallel()

	storageErr := persistence.NewStorageError("pages", "write", errors.New("read-only file system"))
	svc := newTestService(&memoryStore{saveErr: storageErr})

	if err := svc.Save(context.Background(), testfixtures.SampleCalendar(t)); !errors.Is(err, persistence.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if err := svc.Save(context.Background(), nil); !errors.Is(err, ErrNilCalendar) {
		t.Fatalf("expected ErrNilCalendar, got %v", err)
	}
}

func TestCalendarServiceAddActivityReportsOverlaps(t *testing.T) {
	t.Parallel()

	svc := newTestService(&memoryStore{})
	page := testfixtures.NewPage(t, "2022-04-10",
		testfixtures.Activity("09:00", "10:00", "Möte"),
		testfixtures.Activity("10:00", "11:00", "Fika"),
	)
	ctx := context.Background()

	warnings, err := svc.AddActivity(ctx, AddActivityParams{
		Page:     page,
		Interval: testfixtures.MustInterval(t, "09:30", "10:30"),
		Label:    "Samtal",
	})
	if err != nil {
		t.Fatalf("AddActivity returned error: %v", err)
	}
	if len(warnings) != 2 || warnings[0].Activity.Label() != "Möte" || warnings[1].Activity.Label() != "Fika" {
		t.Fatalf("expected overlaps with Möte and Fika, got %+v", warnings)
	}
	if page.Len() != 3 {
		t.Fatalf("expected overlapping activity to be added, page has %d", page.Len())
	}

	warnings, err = svc.AddActivity(ctx, AddActivityParams{
		Page:     page,
		Interval: testfixtures.MustInterval(t, "11:00", "12:00"),
		Label:    "Lunch",
	})
	if err != nil || len(warnings) != 0 {
		t.Fatalf("expected touching activity to add without warnings, got %+v (%v)", warnings, err)
	}
}

func TestCalendarServiceAddActivityRejectsInvalidInterval(t *testing.T) {
	t.Parallel()

	svc := newTestService(&memoryStore{})
	page := testfixtures.NewPage(t, "2022-04-10")

	_, err := svc.AddActivity(context.Background(), AddActivityParams{Page: page, Label: "Tom"})
	if !errors.Is(err, scheduler.ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
	if page.Len() != 0 {
		t.Fatalf("expected page to stay empty, got %d activities", page.Len())
	}
}

func TestCalendarServiceChangeActivity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	newPage := func(t *testing.T) *calendar.Page {
		return testfixtures.NewPage(t, "2022-04-10",
			testfixtures.Activity("09:00", "10:00", "Möte"),
			testfixtures.Activity("11:00", "12:00", "Lunch"),
		)
	}

	t.Run("start overlapping sibling", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(&memoryStore{})
		page := newPage(t)

		warnings, err := svc.ChangeActivity(ctx, ChangeActivityParams{
			Page: page, Index: 1, Field: FieldStart, Clock: testfixtures.MustClock(t, "09:30"),
		})
		if err != nil {
			t.Fatalf("ChangeActivity returned error: %v", err)
		}
		if len(warnings) != 1 || warnings[0].Activity.Label() != "Möte" {
			t.Fatalf("expected overlap with Möte only, got %+v", warnings)
		}
		got, _ := page.Activity(1)
		if got.Start() != testfixtures.MustClock(t, "09:30") || got.Label() != "Lunch" {
			t.Fatalf("expected Lunch to start 09:30, got %s", got)
		}
	})

	t.Run("end within itself does not warn", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(&memoryStore{})
		page := newPage(t)

		warnings, err := svc.ChangeActivity(ctx, ChangeActivityParams{
			Page: page, Index: 0, Field: FieldEnd, Clock: testfixtures.MustClock(t, "09:45"),
		})
		if err != nil || len(warnings) != 0 {
			t.Fatalf("expected no warnings, got %+v (%v)", warnings, err)
		}
	})

	t.Run("end before start", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(&memoryStore{})
		page := newPage(t)

		_, err := svc.ChangeActivity(ctx, ChangeActivityParams{
			Page: page, Index: 0, Field: FieldEnd, Clock: testfixtures.MustClock(t, "08:00"),
		})
		if !errors.Is(err, scheduler.ErrInvalidInterval) {
			t.Fatalf("expected ErrInvalidInterval, got %v", err)
		}
		got, _ := page.Activity(0)
		if got.End() != testfixtures.MustClock(t, "10:00") {
			t.Fatalf("expected activity to be unchanged, got %s", got)
		}
	})

	t.Run("label", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(&memoryStore{})
		page := newPage(t)

		if _, err := svc.ChangeActivity(ctx, ChangeActivityParams{Page: page, Index: 1, Field: FieldLabel, Label: "Middag"}); err != nil {
			t.Fatalf("ChangeActivity returned error: %v", err)
		}
		got, _ := page.Activity(1)
		if got.Label() != "Middag" {
			t.Fatalf("expected relabelled activity, got %s", got)
		}
	})

	t.Run("bad index and field", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(&memoryStore{})
		page := newPage(t)

		if _, err := svc.ChangeActivity(ctx, ChangeActivityParams{Page: page, Index: 5, Field: FieldLabel}); !errors.Is(err, calendar.ErrIndexOutOfRange) {
			t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
		}
		var vErr *calendar.ValidationError
		if _, err := svc.ChangeActivity(ctx, ChangeActivityParams{Page: page, Index: 0, Field: "colour"}); !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestCalendarServiceRemoveActivity(t *testing.T) {
	t.Parallel()

	svc := newTestService(&memoryStore{})
	page := testfixtures.NewPage(t, "2022-04-10", testfixtures.Activity("09:00", "10:00", "Möte"))

	removed, err := svc.RemoveActivity(context.Background(), page, 0)
	if err != nil || removed.Label() != "Möte" || page.Len() != 0 {
		t.Fatalf("expected Möte to be removed, got %s (%v)", removed, err)
	}
	if _, err := svc.RemoveActivity(context.Background(), page, 0); !errors.Is(err, calendar.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestCalendarServicePages(t *testing.T) {
	t.Parallel()

	svc := newTestService(&memoryStore{})
	ctx := context.Background()
	cal := testfixtures.SampleCalendar(t)

	if _, err := svc.AddPage(ctx, cal, testfixtures.MustDate(t, "2022-04-11")); !errors.Is(err, calendar.ErrDuplicateDate) {
		t.Fatalf("expected ErrDuplicateDate, got %v", err)
	}
	if _, err := svc.AddPage(ctx, cal, testfixtures.MustDate(t, "2022-04-20")); err != nil {
		t.Fatalf("AddPage returned error: %v", err)
	}

	month := svc.ThisMonth(cal)
	if len(month) != 4 {
		t.Fatalf("expected 4 pages in April 2022, got %d", len(month))
	}

	single, err := calendar.New(testfixtures.NewPage(t, "2022-04-10"))
	if err != nil {
		t.Fatalf("calendar.New returned error: %v", err)
	}
	empty, err := svc.DeleteCurrentPage(ctx, single)
	if err != nil || !empty {
		t.Fatalf("expected deleting the last page to require bootstrap, got %v (%v)", empty, err)
	}
	if _, err := svc.DeleteCurrentPage(ctx, single); !errors.Is(err, calendar.ErrNoPages) {
		t.Fatalf("expected ErrNoPages, got %v", err)
	}
}
