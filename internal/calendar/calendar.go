package calendar

import (
	"fmt"
	"slices"
	"time"
)

// Calendar is an ordered collection of pages with unique dates and a cursor
// identifying the current page by index.
type Calendar struct {
	pages  []*Page
	cursor int
}

// New builds a calendar from pages in any order. It fails with
// ErrDuplicateDate if two pages share a date.
func New(pages ...*Page) (*Calendar, error) {
	c := &Calendar{}
	for _, page := range pages {
		if err := c.InsertPage(page); err != nil {
			return nil, err
		}
	}
	c.cursor = 0
	return c, nil
}

// Len returns the number of pages.
func (c *Calendar) Len() int { return len(c.pages) }

// Pages returns the pages in date order. The slice is a copy; the pages are not.
func (c *Calendar) Pages() []*Page {
	return slices.Clone(c.pages)
}

// Page returns the page at index.
func (c *Calendar) Page(index int) (*Page, error) {
	if err := c.checkIndex(index); err != nil {
		return nil, err
	}
	return c.pages[index], nil
}

// IndexOf returns the index of the page for date.
func (c *Calendar) IndexOf(date Date) (int, bool) {
	return slices.BinarySearchFunc(c.pages, date, func(p *Page, d Date) int {
		return p.date.Compare(d)
	})
}

// AddPage creates an empty page for date and inserts it in date order.
func (c *Calendar) AddPage(date Date) (*Page, error) {
	page := NewPage(date)
	if err := c.InsertPage(page); err != nil {
		return nil, err
	}
	return page, nil
}

// InsertPage inserts an existing page in date order. The cursor keeps
// pointing at the page it pointed at before the insert.
func (c *Calendar) InsertPage(page *Page) error {
	if page == nil {
		return &ValidationError{FieldErrors: map[string]string{"page": "page is required"}}
	}
	index, found := c.IndexOf(page.date)
	if found {
		return fmt.Errorf("%w: %s", ErrDuplicateDate, page.date)
	}
	c.pages = slices.Insert(c.pages, index, page)
	if len(c.pages) > 1 && index <= c.cursor {
		c.cursor++
	}
	return nil
}

// DeletePage removes the page at index. The cursor is clamped to the
// remaining pages. Deleting the last page leaves the calendar empty; the
// caller must insert a replacement before using cursor operations again.
func (c *Calendar) DeletePage(index int) error {
	if err := c.checkIndex(index); err != nil {
		return err
	}
	c.pages = slices.Delete(c.pages, index, index+1)
	if index < c.cursor {
		c.cursor--
	}
	if c.cursor >= len(c.pages) {
		c.cursor = max(len(c.pages)-1, 0)
	}
	return nil
}

// DeleteCurrentPage removes the page at the cursor.
func (c *Calendar) DeleteCurrentPage() error {
	if len(c.pages) == 0 {
		return ErrNoPages
	}
	return c.DeletePage(c.cursor)
}

// MoveCursor moves the cursor by delta pages, wrapping around in both directions.
func (c *Calendar) MoveCursor(delta int) error {
	n := len(c.pages)
	if n == 0 {
		return ErrNoPages
	}
	c.cursor = ((c.cursor+delta)%n + n) % n
	return nil
}

// Cursor returns the index of the current page.
func (c *Calendar) Cursor() int { return c.cursor }

// CurrentPage returns the page at the cursor.
func (c *Calendar) CurrentPage() (*Page, error) {
	if len(c.pages) == 0 {
		return nil, ErrNoPages
	}
	return c.pages[c.cursor], nil
}

// PagesInMonth returns the pages dated within the given month, in date order.
func (c *Calendar) PagesInMonth(year int, month time.Month) []*Page {
	var pages []*Page
	for _, page := range c.pages {
		if page.date.year == year && page.date.month == month {
			pages = append(pages, page)
		}
	}
	return pages
}

func (c *Calendar) checkIndex(index int) error {
	if index < 0 || index >= len(c.pages) {
		return fmt.Errorf("%w: page %d of %d", ErrIndexOutOfRange, index, len(c.pages))
	}
	return nil
}
