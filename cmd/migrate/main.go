package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bookbrowser/internal/config"
	"bookbrowser/internal/platform/database"
	"bookbrowser/internal/platform/logging"
)

func main() {
	command := flag.String("command", "up", "Migration command: up, down, status, version")
	flag.Parse()

	config.LoadEnvFiles()
	cfg, err := config.Load(nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)

	if err := migrate(context.Background(), cfg, *command); err != nil {
		logger.Error("migration failed", "command", *command, "error", err)
		os.Exit(1)
	}
	logger.Info("migration finished", "command", *command)
}

func migrate(ctx context.Context, cfg *config.Config, command string) error {
	driver, dsn, dialect := sqlTarget(cfg)
	db, err := database.OpenSQL(driver, dsn, 1)
	if err != nil {
		return err
	}
	defer db.Close()

	fsys, dir := migrationsSource()
	m, err := database.NewMigrator(db.DB, dialect, fsys, dir)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		return m.Up(ctx)
	case "down":
		return m.Down(ctx)
	case "status":
		return m.Status(ctx)
	case "version":
		version, err := m.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Println(version)
		return nil
	default:
		return fmt.Errorf("unknown command %q, use: up, down, status, version", command)
	}
}
