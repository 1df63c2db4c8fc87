package testfixtures

import (
	"path/filepath"
	"testing"

	"github.com/example/kalender/internal/persistence"
	"github.com/example/kalender/internal/persistence/filestore"
	"github.com/example/kalender/internal/persistence/sqlite"
)

// StoreHarness provides every page store backed by a temporary directory.
type StoreHarness struct {
	Dir       string
	Aggregate *filestore.AggregateStore
	Split     *filestore.SplitStore
	SQLite    *sqlite.Store
	IDs       *IDGenerator
}

// NewStoreHarness creates the stores inside tb.TempDir(). The SQLite store is
// closed when the test ends.
func NewStoreHarness(tb testing.TB) *StoreHarness {
	tb.Helper()

	dir := tb.TempDir()
	ids := NewIDGenerator("fixture")

	db, err := sqlite.Open(sqlite.Config{DSN: filepath.Join(dir, "kalender.db")}, ids.NextFunc(), nil)
	if err != nil {
		tb.Fatalf("failed to open sqlite store: %v", err)
	}
	tb.Cleanup(func() { _ = db.Close() })

	return &StoreHarness{
		Dir:       dir,
		Aggregate: filestore.NewAggregateStore(filepath.Join(dir, "pages.txt")),
		Split:     filestore.NewSplitStore(filepath.Join(dir, "pages"), ids.NextFunc()),
		SQLite:    db,
		IDs:       ids,
	}
}

// All returns every store keyed by format.
func (h *StoreHarness) All() map[persistence.Format]persistence.Store {
	return map[persistence.Format]persistence.Store{
		persistence.FormatFile:   h.Aggregate,
		persistence.FormatFolder: h.Split,
		persistence.FormatSQLite: h.SQLite,
	}
}
