// Package sqlite stores calendar pages in a SQLite database using the pure Go
// modernc.org/sqlite driver. The schema is created from embedded migrations
// when the store is opened.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/example/kalender/internal/calendar"
	"github.com/example/kalender/internal/persistence"
	"github.com/example/kalender/internal/persistence/sqlite/migration"
	"github.com/example/kalender/internal/scheduler"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Store persists pages in two tables, pages and activities. Activity rows keep
// their position on the page so equal start times reload in saved order.
type Store struct {
	db          *sql.DB
	dsn         string
	idGenerator func() string
	logger      *slog.Logger
}

// Open connects to the database described by cfg and applies pending
// migrations. idGenerator names activity rows; when nil, random UUIDs are
// used. A nil logger discards output.
func Open(cfg Config, idGenerator func() string, logger *slog.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, persistence.NewStorageError(cfg.DSN, "open", err)
	}

	s := &Store{
		db:          db,
		dsn:         cfg.DSN,
		idGenerator: idGenerator,
		logger:      logger.With(slog.String("store", "sqlite")),
	}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Location returns the DSN.
func (s *Store) Location() string {
	return s.dsn
}

func (s *Store) migrate(ctx context.Context) error {
	migrations, err := migration.Scan(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("sqlite: load migrations: %w", err)
	}
	manager := migration.NewManager(migration.NewExecutor(s.db), migrations, s.logger)
	if err := manager.Run(ctx); err != nil {
		return persistence.NewStorageError(s.dsn, "migrate", err)
	}
	return nil
}

// Load reads every page ordered by date.
func (s *Store) Load(ctx context.Context) ([]*calendar.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var pages []*calendar.Page
	err := withTransaction(ctx, s.db, func(tx *sql.Tx) error {
		dates, err := s.loadDates(ctx, tx)
		if err != nil {
			return err
		}
		activities, err := s.loadActivities(ctx, tx)
		if err != nil {
			return err
		}
		pages = make([]*calendar.Page, 0, len(dates))
		for _, date := range dates {
			pages = append(pages, calendar.NewPage(date, activities[date]...))
		}
		return nil
	})
	if err != nil {
		return nil, s.wrap("load", err)
	}

	s.logger.DebugContext(ctx, "loaded pages", slog.Int("pages", len(pages)))
	return pages, nil
}

func (s *Store) loadDates(ctx context.Context, tx *sql.Tx) ([]calendar.Date, error) {
	rows, err := tx.QueryContext(ctx, `SELECT date FROM pages ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []calendar.Date
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		date, err := calendar.ParseISODate(raw)
		if err != nil {
			return nil, &persistence.MalformedRecordError{
				Resource: s.dsn + ": pages/" + raw,
				Reason:   "invalid date",
				Err:      err,
			}
		}
		dates = append(dates, date)
	}
	return dates, rows.Err()
}

func (s *Store) loadActivities(ctx context.Context, tx *sql.Tx) (map[calendar.Date][]scheduler.Activity, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, page_date, start_minute, end_minute, label
		FROM activities
		ORDER BY page_date, position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byDate := make(map[calendar.Date][]scheduler.Activity)
	for rows.Next() {
		var (
			id, rawDate, label string
			start, end         int
		)
		if err := rows.Scan(&id, &rawDate, &start, &end, &label); err != nil {
			return nil, err
		}

		resource := s.dsn + ": activities/" + id
		date, err := calendar.ParseISODate(rawDate)
		if err != nil {
			return nil, &persistence.MalformedRecordError{Resource: resource, Reason: "invalid page date", Err: err}
		}
		interval, err := scheduler.NewInterval(scheduler.Clock(start), scheduler.Clock(end))
		if err != nil {
			return nil, &persistence.MalformedRecordError{Resource: resource, Reason: "invalid interval", Err: err}
		}
		activity, err := scheduler.NewActivity(interval, label)
		if err != nil {
			return nil, &persistence.MalformedRecordError{Resource: resource, Reason: "invalid activity", Err: err}
		}
		byDate[date] = append(byDate[date], activity)
	}
	return byDate, rows.Err()
}

// Save replaces every stored page with pages in a single transaction.
func (s *Store) Save(ctx context.Context, pages []*calendar.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := withTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM activities`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM pages`); err != nil {
			return err
		}

		insertPage, err := tx.PrepareContext(ctx, `INSERT INTO pages (date) VALUES (?)`)
		if err != nil {
			return err
		}
		defer insertPage.Close()

		insertActivity, err := tx.PrepareContext(ctx, `
			INSERT INTO activities (id, page_date, position, start_minute, end_minute, label)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer insertActivity.Close()

		for _, page := range pages {
			date := page.Date().String()
			if _, err := insertPage.ExecContext(ctx, date); err != nil {
				return err
			}
			for position, activity := range page.Activities() {
				_, err := insertActivity.ExecContext(ctx,
					s.idGenerator(), date, position,
					int(activity.Start()), int(activity.End()), activity.Label())
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return s.wrap("save", err)
	}

	s.logger.DebugContext(ctx, "saved pages", slog.Int("pages", len(pages)))
	return nil
}

// wrap converts database failures into storage errors. Decode failures and
// context errors pass through unchanged.
func (s *Store) wrap(operation string, err error) error {
	if errors.Is(err, persistence.ErrMalformedRecord) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	s.logger.Error("sqlite operation failed",
		slog.String("operation", operation),
		slog.String("kind", describeError(err)),
		slog.Any("error", err),
	)
	return persistence.NewStorageError(s.dsn, operation, fmt.Errorf("%s: %w", describeError(err), err))
}
