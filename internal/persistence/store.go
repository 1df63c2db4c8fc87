package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/kalender/internal/calendar"
)

// Store loads and saves the complete page set in one encoding. Load on a
// location that does not exist yet returns no pages and no error.
type Store interface {
	Load(ctx context.Context) ([]*calendar.Page, error)
	Save(ctx context.Context, pages []*calendar.Page) error
	// Location describes where the pages live, for logs and prompts.
	Location() string
}

// Format names a page encoding.
type Format string

const (
	// FormatFile stores every page as one line of a single file.
	FormatFile Format = "file"
	// FormatFolder stores each page in its own file inside a folder.
	FormatFolder Format = "folder"
	// FormatSQLite stores pages in a SQLite database.
	FormatSQLite Format = "sqlite"
)

// Formats lists the supported formats in menu order.
func Formats() []Format {
	return []Format{FormatFile, FormatFolder, FormatSQLite}
}

// ParseFormat accepts a format name or its 1-based menu number.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", string(FormatFile):
		return FormatFile, nil
	case "2", string(FormatFolder):
		return FormatFolder, nil
	case "3", string(FormatSQLite):
		return FormatSQLite, nil
	}
	return "", fmt.Errorf("persistence: unknown storage format %q", s)
}
