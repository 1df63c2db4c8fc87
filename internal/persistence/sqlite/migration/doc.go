// Package migration applies versioned SQL schema changes to a SQLite
// database.
//
// Migration files are read from an fs.FS (usually an embed.FS) and follow the
// naming convention {version}_{description}.sql, e.g. "001_pages.sql". A
// leading "-- Description: ..." comment overrides the description taken from
// the file name.
//
// Applied versions are tracked in a schema_migrations table together with the
// checksum of the file that was applied. A file whose contents changed after
// it was applied is reported as ErrChecksumMismatch instead of silently
// running against a schema it no longer describes.
//
// Example usage:
//
//	migrations, err := migration.Scan(files, "migrations")
//	if err != nil {
//		return err
//	}
//	manager := migration.NewManager(migration.NewExecutor(db), migrations, logger)
//	if err := manager.Run(ctx); err != nil {
//		return err
//	}
package migration
