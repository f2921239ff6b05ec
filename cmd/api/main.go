package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"bookbrowser/internal/book"
	"bookbrowser/internal/config"
	"bookbrowser/internal/platform/database"
	"bookbrowser/internal/platform/logging"
	"bookbrowser/internal/review"
	"bookbrowser/internal/server"
	"bookbrowser/internal/view"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "bookbrowser [port]",
		Short:         "Serve the book catalog browser",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnvFiles()
			cfg, err := config.Load(args)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}

			logger := logging.New(cmd.OutOrStdout(), cfg.LogFormat, cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := run(ctx, cfg, logger); err != nil {
				logger.Error("server stopped", "error", err)
				return err
			}
			return nil
		},
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	repo, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	views, err := view.New()
	if err != nil {
		return fmt.Errorf("load views: %w", err)
	}

	reviews := review.NewClient(review.ClientConfig{
		BaseURL: cfg.ReviewAPIURL,
		APIKey:  cfg.APIKey,
		RPS:     cfg.ReviewAPIRPS,
		Timeout: cfg.ReviewAPITimeout,
	}, logger)

	router := server.NewRouter(
		book.NewHTTPHandler(book.NewService(repo), views, logger),
		review.NewHTTPHandler(reviews, views, logger),
		views,
		logger,
	)
	handler := server.WithMiddleware(ctx, router, logger, server.MiddlewareOptions{
		EnableHSTS:     cfg.EnableHSTS,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		TrustProxy:     cfg.TrustProxy,
	})

	srv := server.New(server.Config{
		Addr:         cfg.Addr(),
		ProbeTimeout: cfg.DBProbeTimeout,
	}, handler, repo, logger)
	return srv.Run(ctx)
}

// openRepository builds the book store for the configured driver. The
// returned func releases the pool.
func openRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (book.Repository, func(), error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		dsn := cfg.SQLiteDSN()
		logger.Info("opening database", "driver", cfg.DBDriver, "dsn", dsn, "max_conns", cfg.DBConnectionLimit)
		db, err := database.OpenSQL(database.DriverSQLite, dsn, cfg.DBConnectionLimit)
		if err != nil {
			return nil, nil, err
		}
		repo := book.NewSQLRepo(db, book.DialectSQLite, cfg.DBAcquireTimeout, cfg.Location)
		return repo, func() { _ = db.Close() }, nil
	default:
		dsn := cfg.PostgresDSN()
		logger.Info("opening database", "driver", cfg.DBDriver, "dsn", database.RedactDSN(dsn), "max_conns", cfg.DBConnectionLimit)
		pool, err := database.NewPostgresPool(ctx, dsn, cfg.DBConnectionLimit)
		if err != nil {
			return nil, nil, err
		}
		repo := book.NewPostgresRepo(pool, cfg.DBAcquireTimeout, cfg.Location)
		return repo, pool.Close, nil
	}
}
