package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/example/kalender/internal/calendar"
	"github.com/example/kalender/internal/scheduler"
)

// Renderer formats pages and menus for a terminal. Colors are only emitted
// when the output supports them.
type Renderer struct {
	heading lipgloss.Style
	date    lipgloss.Style
	times   lipgloss.Style
	muted   lipgloss.Style
	warning lipgloss.Style
}

// NewRenderer returns a renderer whose color profile matches w.
func NewRenderer(w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)
	return &Renderer{
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		date:    r.NewStyle().Bold(true),
		times:   r.NewStyle().Foreground(lipgloss.Color("#4A90E2")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#626262")),
		warning: r.NewStyle().Foreground(lipgloss.Color("#FFA500")),
	}
}

// Heading renders a section heading such as "----Meny----".
func (r *Renderer) Heading(title string) string {
	return r.heading.Render("----" + title + "----")
}

// Warning renders s in the warning color.
func (r *Renderer) Warning(s string) string {
	return r.warning.Render(s)
}

// Page renders the date followed by one line per activity.
func (r *Renderer) Page(page *calendar.Page) string {
	var b strings.Builder
	b.WriteString("Datum: ")
	b.WriteString(r.date.Render(page.Date().String()))
	b.WriteByte('\n')

	if page.Len() == 0 {
		b.WriteString(r.muted.Render("(Inga aktiviteter för dagen)"))
		return b.String()
	}

	b.WriteString("Aktiviteter")
	for _, activity := range page.Activities() {
		b.WriteByte('\n')
		b.WriteString(r.Activity(activity))
	}
	return b.String()
}

// Activity renders "HH:MM-HH:MM: label". Continuation lines of a
// multi-line label are indented under the first.
func (r *Renderer) Activity(activity scheduler.Activity) string {
	label := strings.ReplaceAll(activity.Label(), "\n", "\n             ")
	return r.times.Render(activity.Interval().String()) + ": " + label
}

// Options renders one option per line.
func (r *Renderer) Options(options []string) string {
	return strings.Join(options, "\n")
}
