// Package cli is the interactive text menu for browsing and editing the
// calendar. It reads answers from an io.Reader and writes to an io.Writer.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/example/kalender/internal/application"
	"github.com/example/kalender/internal/calendar"
	"github.com/example/kalender/internal/persistence"
	"github.com/example/kalender/internal/scheduler"
)

var menuOptions = []string{
	"1. Bläddra framåt",
	"2. Bläddra bakåt",
	"3. Sätt in ny sida",
	"4. Ta bort sidan",
	"5. Visa alla sidor",
	"6. Lägg till aktivitet",
	"7. Ta bort aktivitet",
	"8. Ändra aktivitet",
	"9. Visa månadens aktiviteter",
	"10. Avsluta",
}

const (
	optionForward = iota + 1
	optionBack
	optionAddPage
	optionDeletePage
	optionShowAll
	optionAddActivity
	optionRemoveActivity
	optionChangeActivity
	optionThisMonth
	optionQuit
)

var storageOptions = []string{
	"1. All data sparas i en och samma fil",
	"2. Data sparas i flera filer, där varje fil motsvarar en sida ur kalendern",
	"3. Data sparas i en SQLite-databas",
}

// UI drives the menu loop.
type UI struct {
	prompt *Prompter
	out    io.Writer
	render *Renderer
}

// New returns a UI reading from in and writing to out.
func New(in io.Reader, out io.Writer) *UI {
	return &UI{prompt: NewPrompter(in, out), out: out, render: NewRenderer(out)}
}

// Welcome greets the user.
func (u *UI) Welcome() {
	u.println("Välkommen till kalendern!")
}

// ChooseFormat asks how pages should be stored.
func (u *UI) ChooseFormat() (persistence.Format, error) {
	u.println("Hur vill du läsa in/lagra din data?")
	u.println(u.render.Options(storageOptions))
	choice, err := u.prompt.Choice(len(storageOptions))
	if err != nil {
		return "", err
	}
	return persistence.Formats()[choice-1], nil
}

// Run loads the calendar, runs the menu until the user quits and saves on
// the way out. When ctx is cancelled the session ends and is saved after the
// answer being read. It returns ErrInputClosed when input ends before the
// user quits; nothing is saved in that case.
func (u *UI) Run(ctx context.Context, svc *application.CalendarService) error {
	result, err := svc.Load(ctx)
	if err != nil {
		return fmt.Errorf("kunde inte läsa in kalendern: %w", err)
	}
	cal := result.Calendar

	if result.NeedsBootstrap {
		u.println("Kunde inte hitta någon tidigare data!")
	}

	for {
		if ctx.Err() != nil {
			u.println("Avslutar, sparar kalendern...")
			return u.save(ctx, svc, cal)
		}
		if cal.Len() == 0 {
			if err := u.bootstrap(ctx, svc, cal); err != nil {
				return err
			}
		}

		page, err := cal.CurrentPage()
		if err != nil {
			return err
		}
		u.println(u.render.Heading("Aktuell sida"))
		u.println(u.render.Page(page))
		u.println(u.render.Heading("Meny"))
		u.println(u.render.Options(menuOptions))

		choice, err := u.prompt.Choice(len(menuOptions))
		if err != nil {
			return err
		}
		if choice == optionQuit {
			return u.save(ctx, svc, cal)
		}
		if err := u.execute(ctx, svc, cal, page, choice); err != nil {
			return err
		}
	}
}

func (u *UI) execute(ctx context.Context, svc *application.CalendarService, cal *calendar.Calendar, page *calendar.Page, choice int) error {
	switch choice {
	case optionForward:
		return cal.MoveCursor(1)
	case optionBack:
		return cal.MoveCursor(-1)
	case optionAddPage:
		return u.addPage(ctx, svc, cal)
	case optionDeletePage:
		_, err := svc.DeleteCurrentPage(ctx, cal)
		return err
	case optionShowAll:
		u.println(u.render.Heading("Alla sidor"))
		for _, p := range cal.Pages() {
			u.println(u.render.Page(p))
		}
	case optionAddActivity:
		return u.addActivity(ctx, svc, page)
	case optionRemoveActivity:
		return u.removeActivity(ctx, svc, page)
	case optionChangeActivity:
		return u.changeActivity(ctx, svc, page)
	case optionThisMonth:
		u.println(u.render.Heading("Aktiviteter för den här månaden"))
		pages := svc.ThisMonth(cal)
		if len(pages) == 0 {
			u.println("Inga aktiviteter den här månaden")
		}
		for _, p := range pages {
			u.println(u.render.Page(p))
		}
	}
	return nil
}

// bootstrap creates the first page of an empty calendar.
func (u *UI) bootstrap(ctx context.Context, svc *application.CalendarService, cal *calendar.Calendar) error {
	u.println(u.render.Heading("Lägg till ny sida i kalendern"))
	date, err := u.prompt.Date()
	if err != nil {
		return err
	}
	page, err := svc.Bootstrap(ctx, cal, date)
	if err != nil {
		return err
	}
	return u.addActivity(ctx, svc, page)
}

// addPage asks for an unused date, inserts the page and asks for its first
// activity.
func (u *UI) addPage(ctx context.Context, svc *application.CalendarService, cal *calendar.Calendar) error {
	u.println(u.render.Heading("Lägg till ny sida i kalendern"))
	for {
		date, err := u.prompt.Date()
		if err != nil {
			return err
		}
		page, err := svc.AddPage(ctx, cal, date)
		if errors.Is(err, calendar.ErrDuplicateDate) {
			u.println(fmt.Sprintf("Det finns redan en sida med datumet %s!", date))
			continue
		}
		if err != nil {
			return err
		}
		return u.addActivity(ctx, svc, page)
	}
}

func (u *UI) addActivity(ctx context.Context, svc *application.CalendarService, page *calendar.Page) error {
	u.println(u.render.Heading("Lägg till ny aktivitet"))
	interval, err := u.askInterval(svc, page)
	if err != nil {
		return err
	}
	label, err := u.prompt.Line("Ange aktivitet: ")
	if err != nil {
		return err
	}
	_, err = svc.AddActivity(ctx, application.AddActivityParams{Page: page, Interval: interval, Label: label})
	return err
}

// askInterval asks for start and end until end is after start and the user
// accepts any overlap.
func (u *UI) askInterval(svc *application.CalendarService, page *calendar.Page) (scheduler.Interval, error) {
	for {
		start, err := u.prompt.Clock("Ange starttid för aktiviteten (HHMM): ")
		if err != nil {
			return scheduler.Interval{}, err
		}

		var interval scheduler.Interval
		for {
			end, err := u.prompt.Clock("Ange sluttid för aktiviteten (HHMM): ")
			if err != nil {
				return scheduler.Interval{}, err
			}
			if interval, err = scheduler.NewInterval(start, end); err == nil {
				break
			}
			u.println("Sluttiden kan inte vara innan eller lika med starttiden för aktiviteten!")
		}

		ok, err := u.confirmOverlap(svc, page, scheduler.NoSkip, interval, "Vill du lägga till ändå? (j/n): ")
		if err != nil || ok {
			return interval, err
		}
	}
}

// confirmOverlap lists the activities interval overlaps and asks whether to
// go ahead. It returns true without asking when nothing overlaps.
func (u *UI) confirmOverlap(svc *application.CalendarService, page *calendar.Page, skip int, interval scheduler.Interval, question string) (bool, error) {
	warnings := svc.PreviewOverlaps(page, skip, interval.Start(), interval.End())
	if len(warnings) == 0 {
		return true, nil
	}
	u.println(u.render.Warning("Tiden överlappar med en annan aktivitet!"))
	for _, w := range warnings {
		u.println("  " + u.render.Activity(w.Activity))
	}
	return u.prompt.YesNo(question)
}

// chooseActivity lets the user pick an activity on page. ok is false when
// the page has none.
func (u *UI) chooseActivity(page *calendar.Page) (index int, ok bool, err error) {
	switch page.Len() {
	case 0:
		u.println("Det finns inga aktiviteter!")
		return 0, false, nil
	case 1:
		return 0, true, nil
	}
	for i, activity := range page.Activities() {
		u.println(fmt.Sprintf("(%d) %s", i+1, u.render.Activity(activity)))
	}
	choice, err := u.prompt.Choice(page.Len())
	if err != nil {
		return 0, false, err
	}
	return choice - 1, true, nil
}

func (u *UI) removeActivity(ctx context.Context, svc *application.CalendarService, page *calendar.Page) error {
	u.println(u.render.Heading("Ta bort aktivitet"))
	index, ok, err := u.chooseActivity(page)
	if err != nil || !ok {
		return err
	}
	_, err = svc.RemoveActivity(ctx, page, index)
	return err
}

var changeOptions = []string{
	"1. Aktivitetens starttid",
	"2. Aktivitetens sluttid",
	"3. Aktiviteten",
}

func (u *UI) changeActivity(ctx context.Context, svc *application.CalendarService, page *calendar.Page) error {
	index, ok, err := u.chooseActivity(page)
	if err != nil || !ok {
		return err
	}
	activity, err := page.Activity(index)
	if err != nil {
		return err
	}

	u.println(u.render.Heading("Ändra aktivitet"))
	u.println("Vad vill du ändra?")
	u.println("Aktivitet: " + u.render.Activity(activity))
	u.println(u.render.Options(changeOptions))
	choice, err := u.prompt.Choice(len(changeOptions))
	if err != nil {
		return err
	}

	params := application.ChangeActivityParams{Page: page, Index: index}
	switch choice {
	case 1:
		u.println(u.render.Heading("Ändra starttid"))
		params.Field = application.FieldStart
		params.Clock, err = u.askChangedBound(svc, page, index, func(c scheduler.Clock) (scheduler.Interval, error) {
			return activity.Interval().WithStart(c)
		}, "Ange ny starttid för aktiviteten (HHMM): ", "Starttiden måste vara före sluttiden "+activity.End().String()+"!")
	case 2:
		u.println(u.render.Heading("Ändra sluttid"))
		params.Field = application.FieldEnd
		params.Clock, err = u.askChangedBound(svc, page, index, func(c scheduler.Clock) (scheduler.Interval, error) {
			return activity.Interval().WithEnd(c)
		}, "Ange ny sluttid för aktiviteten (HHMM): ", "Sluttiden måste vara efter starttiden "+activity.Start().String()+"!")
	case 3:
		u.println(u.render.Heading("Ändra aktiviteten"))
		params.Field = application.FieldLabel
		params.Label, err = u.prompt.Line("Ange aktivitet: ")
	}
	if err != nil {
		return err
	}

	_, err = svc.ChangeActivity(ctx, params)
	return err
}

// askChangedBound asks for a new start or end until apply yields a valid
// interval and the user accepts any overlap with the other activities.
func (u *UI) askChangedBound(svc *application.CalendarService, page *calendar.Page, index int, apply func(scheduler.Clock) (scheduler.Interval, error), prompt, invalid string) (scheduler.Clock, error) {
	for {
		c, err := u.prompt.Clock(prompt)
		if err != nil {
			return 0, err
		}
		interval, err := apply(c)
		if err != nil {
			u.println(invalid)
			continue
		}
		ok, err := u.confirmOverlap(svc, page, index, interval, "Vill du ändra tiden ändå? (j/n): ")
		if err != nil {
			return 0, err
		}
		if ok {
			return c, nil
		}
	}
}

// save writes the calendar, offering a retry when storage fails. Saving is
// not cut short by cancellation of ctx.
func (u *UI) save(ctx context.Context, svc *application.CalendarService, cal *calendar.Calendar) error {
	ctx = context.WithoutCancel(ctx)
	for {
		err := svc.Save(ctx, cal)
		if err == nil {
			return nil
		}
		u.println(u.render.Warning("Kunde inte spara kalendern: " + err.Error()))
		retry, perr := u.prompt.YesNo("Vill du försöka igen? (j/n): ")
		if perr != nil || !retry {
			return fmt.Errorf("kalendern sparades inte: %w", err)
		}
	}
}

func (u *UI) println(s string) {
	fmt.Fprintln(u.out, s)
}
