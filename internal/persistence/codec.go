package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/kalender/internal/calendar"
	"github.com/example/kalender/internal/scheduler"
)

// FieldSeparator separates the fields of an encoded page line.
const FieldSeparator = ';'

const fieldsPerActivity = 3

// EncodePage renders a page as a single line without a line terminator:
//
//	YYYY-MM-DD(;HH:MM;HH:MM;label)*
//
// Separators, backslashes and line breaks inside labels are escaped with a
// backslash so every label survives DecodePage unchanged.
func EncodePage(page *calendar.Page) string {
	var b strings.Builder
	b.WriteString(page.Date().String())
	for _, activity := range page.Activities() {
		b.WriteByte(FieldSeparator)
		b.WriteString(activity.Start().String())
		b.WriteByte(FieldSeparator)
		b.WriteString(activity.End().String())
		b.WriteByte(FieldSeparator)
		b.WriteString(escapeLabel(activity.Label()))
	}
	return b.String()
}

// DecodePage parses a line produced by EncodePage. Activities are built in
// line order and then sorted by the page. Any deviation from the grammar
// fails with a *MalformedRecordError.
func DecodePage(line string) (*calendar.Page, error) {
	fields, err := splitFields(line)
	if err != nil {
		return nil, &MalformedRecordError{Reason: "invalid escape sequence", Err: err}
	}
	if (len(fields)-1)%fieldsPerActivity != 0 {
		return nil, &MalformedRecordError{
			Reason: fmt.Sprintf("expected a date followed by start;end;label triples, got %d fields", len(fields)),
		}
	}

	date, err := calendar.ParseISODate(fields[0])
	if err != nil {
		return nil, &MalformedRecordError{Reason: "invalid date", Err: err}
	}

	activities := make([]scheduler.Activity, 0, (len(fields)-1)/fieldsPerActivity)
	for i := 1; i < len(fields); i += fieldsPerActivity {
		activity, err := decodeActivity(fields[i], fields[i+1], fields[i+2])
		if err != nil {
			return nil, &MalformedRecordError{
				Reason: fmt.Sprintf("activity %d", len(activities)+1),
				Err:    err,
			}
		}
		activities = append(activities, activity)
	}

	return calendar.NewPage(date, activities...), nil
}

func decodeActivity(startField, endField, label string) (scheduler.Activity, error) {
	start, err := scheduler.ParseStoredClock(startField)
	if err != nil {
		return scheduler.Activity{}, err
	}
	end, err := scheduler.ParseStoredClock(endField)
	if err != nil {
		return scheduler.Activity{}, err
	}
	interval, err := scheduler.NewInterval(start, end)
	if err != nil {
		return scheduler.Activity{}, err
	}
	return scheduler.NewActivity(interval, label)
}

var errTrailingEscape = errors.New("line ends inside an escape sequence")

func escapeLabel(label string) string {
	if !strings.ContainsAny(label, "\\;\n\r") {
		return label
	}
	var b strings.Builder
	for i := 0; i < len(label); i++ {
		switch c := label[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case FieldSeparator:
			b.WriteString(`\;`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// splitFields splits on unescaped separators and resolves escapes. It works
// on bytes so that label bytes which are not valid UTF-8 survive unchanged.
func splitFields(line string) ([]string, error) {
	var (
		fields  []string
		current strings.Builder
		escaped bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		if escaped {
			switch c {
			case '\\':
				current.WriteByte('\\')
			case FieldSeparator:
				current.WriteByte(FieldSeparator)
			case 'n':
				current.WriteByte('\n')
			case 'r':
				current.WriteByte('\r')
			default:
				return nil, fmt.Errorf("unknown escape \\%c", c)
			}
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case FieldSeparator:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	if escaped {
		return nil, errTrailingEscape
	}
	return append(fields, current.String()), nil
}
