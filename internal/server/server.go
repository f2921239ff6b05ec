package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// ErrProbeFailed is returned by Run when the store does not answer the
// startup probe. The port is never bound in that case.
var ErrProbeFailed = errors.New("database liveness probe failed")

// Pinger is the store's liveness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Addr            string
	ProbeTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server owns the startup sequence: probe the store, bind, serve.
type Server struct {
	cfg     Config
	handler http.Handler
	pinger  Pinger
	logger  *slog.Logger
	listen  func(network, address string) (net.Listener, error)
}

func New(cfg Config, handler http.Handler, pinger Pinger, logger *slog.Logger) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &Server{
		cfg:     cfg,
		handler: handler,
		pinger:  pinger,
		logger:  logger,
		listen:  net.Listen,
	}
}

// Run blocks until ctx is cancelled or the listener fails. A failed probe
// returns ErrProbeFailed before any socket is opened.
func (s *Server) Run(ctx context.Context) error {
	if err := s.probe(ctx); err != nil {
		s.logger.ErrorContext(ctx, "cannot ping database", "error", err)
		return fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}

	ln, err := s.listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}

	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(ln)
	}()
	s.logger.InfoContext(ctx, "application started", "addr", ln.Addr().String(), "at", time.Now())

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) probe(ctx context.Context) error {
	s.logger.InfoContext(ctx, "pinging database")
	if s.cfg.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ProbeTimeout)
		defer cancel()
	}
	return s.pinger.Ping(ctx)
}
