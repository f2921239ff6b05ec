package main

import (
	"io/fs"
	"os"

	"bookbrowser/db/migrations"
	"bookbrowser/internal/config"
	"bookbrowser/internal/platform/database"
)

// migrationsSource returns the migration files to apply. MIGRATIONS_DIR
// points at an on-disk directory; otherwise the embedded set is used.
func migrationsSource() (fs.FS, string) {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return os.DirFS(v), "."
	}
	return migrations.FS, "."
}

// sqlTarget maps the configured driver to a database/sql driver, its DSN
// and the matching goose dialect.
func sqlTarget(cfg *config.Config) (driver, dsn, dialect string) {
	if cfg.DBDriver == config.DriverSQLite {
		return database.DriverSQLite, cfg.SQLiteDSN(), database.GooseDialectSQLite
	}
	return database.DriverPGX, cfg.PostgresDSN(), database.GooseDialectPostgres
}
