package migration

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func testMigrations() []Migration {
	first := "CREATE TABLE pages (date TEXT PRIMARY KEY);"
	second := "CREATE TABLE activities (page_date TEXT NOT NULL, label TEXT NOT NULL);\nCREATE INDEX activities_page ON activities (page_date);"
	return []Migration{
		{Version: "001", Description: "pages", SQL: first, FilePath: "001_pages.sql", Checksum: checksum(first)},
		{Version: "002", Description: "activities", SQL: second, FilePath: "002_activities.sql", Checksum: checksum(second)},
	}
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&count)
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	return count == 1
}

func TestManagerRunAppliesPendingMigrations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	manager := NewManager(NewExecutor(db), testMigrations(), nil)

	if err := manager.Run(ctx); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	for _, table := range []string{"schema_migrations", "pages", "activities"} {
		if !tableExists(t, db, table) {
			t.Errorf("expected table %s to exist", table)
		}
	}

	status, err := manager.Status(ctx)
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if status.CurrentVersion != "002" || len(status.Pending) != 0 || len(status.Applied) != 2 {
		t.Fatalf("unexpected status: %+v", status)
	}
	if status.Applied[0].Checksum != testMigrations()[0].Checksum {
		t.Errorf("expected checksum to be recorded")
	}
	if status.Applied[0].AppliedAt.IsZero() {
		t.Errorf("expected applied_at to be recorded")
	}
}

func TestManagerRunIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := NewManager(NewExecutor(db), testMigrations()[:1], nil).Run(ctx); err != nil {
		t.Fatalf("first Run returned error: %v", err)
	}
	manager := NewManager(NewExecutor(db), testMigrations(), nil)
	if err := manager.Run(ctx); err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}
	if err := manager.Run(ctx); err != nil {
		t.Fatalf("third Run returned error: %v", err)
	}

	status, err := manager.Status(ctx)
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if len(status.Applied) != 2 {
		t.Fatalf("expected 2 applied migrations, got %d", len(status.Applied))
	}
}

func TestManagerRunRollsBackFailedMigration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	broken := "CREATE TABLE half (id INTEGER);\nINSERT INTO missing_table VALUES (1);"
	migrations := []Migration{
		{Version: "001", SQL: broken, FilePath: "001_broken.sql", Checksum: checksum(broken)},
	}

	err := NewManager(NewExecutor(db), migrations, nil).Run(ctx)
	if !errors.Is(err, ErrMigrationFailed) {
		t.Fatalf("expected ErrMigrationFailed, got %v", err)
	}
	var dbErr *DatabaseError
	if !errors.As(err, &dbErr) || dbErr.Version != "001" {
		t.Fatalf("expected DatabaseError for version 001, got %v", err)
	}

	if tableExists(t, db, "half") {
		t.Fatal("expected partial migration to be rolled back")
	}
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("failed to count schema_migrations: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no recorded migrations, got %d", count)
	}
}

func TestManagerDetectsEditedMigration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := NewManager(NewExecutor(db), testMigrations(), nil).Run(ctx); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	edited := testMigrations()
	edited[0].SQL = "CREATE TABLE pages (date TEXT PRIMARY KEY, note TEXT);"
	edited[0].Checksum = checksum(edited[0].SQL)

	err := NewManager(NewExecutor(db), edited, nil).Run(ctx)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestManagerRejectsVersionConflicts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	gap := []Migration{testMigrations()[0], {Version: "003", SQL: "CREATE TABLE c (id INTEGER);", Checksum: "x"}}
	if err := NewManager(NewExecutor(db), gap, nil).Run(ctx); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict for a gap, got %v", err)
	}

	if err := NewManager(NewExecutor(db), testMigrations(), nil).Run(ctx); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if err := NewManager(NewExecutor(db), testMigrations()[:1], nil).Run(ctx); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict for a missing applied file, got %v", err)
	}
}
