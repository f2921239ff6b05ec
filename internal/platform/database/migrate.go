package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

const (
	GooseDialectPostgres = "postgres"
	GooseDialectSQLite   = "sqlite3"
)

// Migrator runs goose against one database with migrations read from fsys.
type Migrator struct {
	db  *sql.DB
	dir string
}

// NewMigrator configures goose for dialect. goose keeps its base FS and
// dialect in package state, so only one Migrator should be active at a time.
func NewMigrator(db *sql.DB, dialect string, fsys fs.FS, dir string) (*Migrator, error) {
	goose.SetBaseFS(fsys)
	if err := goose.SetDialect(dialect); err != nil {
		return nil, fmt.Errorf("goose dialect %s: %w", dialect, err)
	}
	return &Migrator{db: db, dir: dir}, nil
}

func (m *Migrator) Up(ctx context.Context) error {
	if err := goose.UpContext(ctx, m.db, m.dir); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

func (m *Migrator) Down(ctx context.Context) error {
	if err := goose.DownContext(ctx, m.db, m.dir); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

func (m *Migrator) Status(ctx context.Context) error {
	return goose.StatusContext(ctx, m.db, m.dir)
}

// Version reports the currently applied migration version.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	return goose.GetDBVersionContext(ctx, m.db)
}
