package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/example/kalender/internal/calendar"
	"github.com/example/kalender/internal/persistence"
)

// PageFileSuffix is appended to the ISO date to name each page file.
const PageFileSuffix = ".txt"

// SplitStore stores each page in its own file inside a folder.
type SplitStore struct {
	dir         string
	idGenerator func() string
}

// NewSplitStore returns a store backed by the folder at dir. idGenerator names
// the staging folders used while saving; when nil, random UUIDs are used.
func NewSplitStore(dir string, idGenerator func() string) *SplitStore {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	return &SplitStore{dir: dir, idGenerator: idGenerator}
}

// Location returns the folder path.
func (s *SplitStore) Location() string {
	return s.dir
}

// PageFileName returns the file name a page for date is stored under.
func PageFileName(date calendar.Date) string {
	return date.String() + PageFileSuffix
}

// Load reads one page per *.txt file in the folder, in file name order. A
// missing folder yields no pages. Hidden files, subfolders and files with
// other suffixes are ignored. A file whose name does not match the date it
// contains is rejected.
func (s *SplitStore) Load(ctx context.Context) ([]*calendar.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, persistence.NewStorageError(s.dir, "read folder", err)
	}

	var pages []*calendar.Page
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, PageFileSuffix) {
			continue
		}
		page, err := s.loadPage(name)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func (s *SplitStore) loadPage(name string) (*calendar.Page, error) {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, persistence.NewStorageError(path, "read", err)
	}

	line := strings.TrimSuffix(string(data), "\n")
	line = strings.TrimSuffix(line, "\r")
	if strings.ContainsAny(line, "\n") {
		return nil, &persistence.MalformedRecordError{Resource: path, Reason: "expected exactly one line"}
	}

	page, err := persistence.DecodePage(line)
	if err != nil {
		return nil, persistence.AtLocation(err, path, 1)
	}
	if want := PageFileName(page.Date()); want != name {
		return nil, &persistence.MalformedRecordError{
			Resource: path,
			Line:     1,
			Reason:   fmt.Sprintf("page dated %s does not belong in %s", page.Date(), name),
		}
	}
	return page, nil
}

// Save replaces the folder with exactly one file per page. Pages are written
// to a staging folder next to the target first; the old folder is then
// swapped out and removed, so pages deleted since the last save do not
// survive.
func (s *SplitStore) Save(ctx context.Context, pages []*calendar.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	parent := filepath.Dir(s.dir)
	base := filepath.Base(s.dir)
	id := s.idGenerator()
	staging := filepath.Join(parent, "."+base+".staging-"+id)
	backup := filepath.Join(parent, "."+base+".old-"+id)

	if err := os.MkdirAll(staging, 0o755); err != nil {
		return persistence.NewStorageError(staging, "create staging folder", err)
	}
	defer os.RemoveAll(staging)

	for _, page := range pages {
		path := filepath.Join(staging, PageFileName(page.Date()))
		if err := os.WriteFile(path, []byte(persistence.EncodePage(page)), 0o644); err != nil {
			return persistence.NewStorageError(path, "write", err)
		}
	}

	hadPrevious, err := s.moveAside(backup)
	if err != nil {
		return err
	}

	if err := os.Rename(staging, s.dir); err != nil {
		if hadPrevious {
			_ = os.Rename(backup, s.dir)
		}
		return persistence.NewStorageError(s.dir, "replace folder", err)
	}

	if hadPrevious {
		if err := os.RemoveAll(backup); err != nil {
			return persistence.NewStorageError(backup, "remove previous folder", err)
		}
	}
	return nil
}

// moveAside renames an existing target folder to backup and reports whether
// there was one.
func (s *SplitStore) moveAside(backup string) (bool, error) {
	info, err := os.Stat(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, persistence.NewStorageError(s.dir, "stat", err)
	}
	if !info.IsDir() {
		return false, persistence.NewStorageError(s.dir, "replace folder", errors.New("target exists and is not a folder"))
	}
	if err := os.Rename(s.dir, backup); err != nil {
		return false, persistence.NewStorageError(s.dir, "move previous folder", err)
	}
	return true, nil
}
