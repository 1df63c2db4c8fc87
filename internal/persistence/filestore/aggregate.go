package filestore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/kalender/internal/calendar"
	"github.com/example/kalender/internal/persistence"
)

// AggregateStore stores all pages in one file, one line per page.
type AggregateStore struct {
	path string
}

// NewAggregateStore returns a store backed by the file at path.
func NewAggregateStore(path string) *AggregateStore {
	return &AggregateStore{path: path}
}

// Location returns the file path.
func (s *AggregateStore) Location() string {
	return s.path
}

// Load reads every page from the file. A missing file yields no pages. Blank
// lines are ignored.
func (s *AggregateStore) Load(ctx context.Context) ([]*calendar.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, persistence.NewStorageError(s.path, "read", err)
	}

	var pages []*calendar.Page
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		page, err := persistence.DecodePage(line)
		if err != nil {
			return nil, persistence.AtLocation(err, s.path, i+1)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// Save writes every page to the file, replacing its previous contents.
func (s *AggregateStore) Save(ctx context.Context, pages []*calendar.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	for _, page := range pages {
		b.WriteString(persistence.EncodePage(page))
		b.WriteByte('\n')
	}

	if err := writeFileAtomic(s.path, []byte(b.String())); err != nil {
		return persistence.NewStorageError(s.path, "write", err)
	}
	return nil
}

// writeFileAtomic writes to a temp file in the target directory and renames
// it over path, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
