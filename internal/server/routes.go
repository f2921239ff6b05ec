package server

import (
	"context"
	"log/slog"
	"net/http"

	"bookbrowser/internal/book"
	"bookbrowser/internal/httpx"
	"bookbrowser/internal/review"
)

// NewRouter registers every route of the catalog browser.
func NewRouter(books *book.HTTPHandler, reviews *review.HTTPHandler, views httpx.Renderer, logger *slog.Logger) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		if err := views.Render(w, http.StatusOK, "index", nil); err != nil {
			logger.ErrorContext(r.Context(), "render index", "error", err)
		}
	})
	router.HandleFunc("GET /search", books.Search)
	router.HandleFunc("GET /book/{bookId}", books.Detail)
	router.HandleFunc("GET /findreview", reviews.Find)

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", books.Ready)

	return router
}

type MiddlewareOptions struct {
	EnableHSTS     bool
	RateLimitRPS   float64
	RateLimitBurst int
	TrustProxy     bool
}

// WithMiddleware wraps h in the standard stack. The rate limiter, when
// enabled, stops its sweeper once ctx is done.
func WithMiddleware(ctx context.Context, h http.Handler, logger *slog.Logger, opts MiddlewareOptions) http.Handler {
	middlewares := []httpx.Middleware{
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(logger),
		httpx.RecoveryMiddleware(logger),
		httpx.SecurityHeadersMiddleware(opts.EnableHSTS),
	}
	if opts.RateLimitRPS > 0 {
		rl := httpx.NewRateLimitMiddleware(ctx, opts.RateLimitRPS, opts.RateLimitBurst, opts.TrustProxy)
		middlewares = append(middlewares, rl.Middleware)
	}
	middlewares = append(middlewares, httpx.CompressionMiddleware)
	return httpx.Chain(h, middlewares...)
}
