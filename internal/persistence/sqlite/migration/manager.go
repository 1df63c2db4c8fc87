package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Manager runs pending migrations in version order.
type Manager struct {
	executor   *Executor
	migrations []Migration
	logger     *slog.Logger
}

// NewManager creates a manager for migrations, which must be sorted by
// version as returned by Scan. A nil logger discards output.
func NewManager(executor *Executor, migrations []Migration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		executor:   executor,
		migrations: migrations,
		logger:     logger.With(slog.String("component", "migration")),
	}
}

// Run applies every pending migration. It stops at the first failure.
func (m *Manager) Run(ctx context.Context) error {
	started := time.Now()

	status, err := m.Status(ctx)
	if err != nil {
		return err
	}

	if len(status.Pending) == 0 {
		m.logger.DebugContext(ctx, "schema up to date", slog.String("version", status.CurrentVersion))
		return nil
	}

	for i, mig := range status.Pending {
		m.logger.InfoContext(ctx, "applying migration",
			slog.String("version", mig.Version),
			slog.String("description", mig.Description),
			slog.Int("position", i+1),
			slog.Int("pending", len(status.Pending)),
		)
		if err := m.executor.Apply(ctx, mig); err != nil {
			m.logger.ErrorContext(ctx, "migration failed",
				slog.String("version", mig.Version),
				slog.String("file", mig.FilePath),
				slog.Any("error", err),
			)
			return NewMigrationError(mig.Version, mig.FilePath, "execute migration",
				fmt.Errorf("%w: %w", ErrMigrationFailed, err))
		}
	}

	m.logger.InfoContext(ctx, "migrations complete",
		slog.Int("applied", len(status.Pending)),
		slog.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// Status reports which migrations are applied and which are pending. It
// initializes the version table and validates that the scanned migrations
// are consistent with what the database already recorded.
func (m *Manager) Status(ctx context.Context) (*Status, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return nil, err
	}

	applied, err := m.executor.AppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}

	if err := m.validateSequence(applied); err != nil {
		return nil, err
	}

	appliedSet := make(map[string]bool, len(applied))
	for _, am := range applied {
		appliedSet[am.Version] = true
	}

	status := &Status{Applied: applied}
	for _, mig := range m.migrations {
		if !appliedSet[mig.Version] {
			status.Pending = append(status.Pending, mig)
		}
	}
	if len(applied) > 0 {
		status.CurrentVersion = applied[len(applied)-1].Version
	}
	return status, nil
}

// validateSequence ensures there are no gaps in the available versions, and
// that each applied version still has a file with the same checksum.
func (m *Manager) validateSequence(applied []AppliedMigration) error {
	byVersion := make(map[int]Migration, len(m.migrations))
	for i, mig := range m.migrations {
		n := versionNumber(mig.Version)
		if i > 0 && n != versionNumber(m.migrations[i-1].Version)+1 {
			return fmt.Errorf("%w: missing migration version %03d in sequence",
				ErrVersionConflict, versionNumber(m.migrations[i-1].Version)+1)
		}
		byVersion[n] = mig
	}

	for _, am := range applied {
		mig, ok := byVersion[versionNumber(am.Version)]
		if !ok {
			return fmt.Errorf("%w: applied migration %s not found in available migrations",
				ErrVersionConflict, am.Version)
		}
		if mig.Checksum != am.Checksum {
			return NewMigrationError(mig.Version, mig.FilePath, "verify checksum", ErrChecksumMismatch)
		}
	}
	return nil
}
