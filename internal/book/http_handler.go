package book

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"bookbrowser/internal/httpx"
)

type HTTPHandler struct {
	service *Service
	views   httpx.Renderer
	logger  *slog.Logger
}

func NewHTTPHandler(service *Service, views httpx.Renderer, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, views: views, logger: logger}
}

// Search handles GET /search?q=&offset=
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := query.Get("q")
	offset := parseOffset(query.Get("offset"))

	page, err := h.service.Search(r.Context(), q, offset)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "search failed",
			"q", q, "offset", offset, "error", err, "request_id", httpx.RequestIDFrom(r))
		httpx.HTMLErrorFragment(w, http.StatusInternalServerError, err)
		return
	}

	if err := h.views.Render(w, http.StatusOK, "results", page); err != nil {
		h.logger.ErrorContext(r.Context(), "render results", "error", err)
	}
}

// Detail handles GET /book/{bookId}
func (h *HTTPHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("bookId")

	page, err := h.service.Detail(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if err := h.views.Render(w, http.StatusNotFound, "not_found", map[string]string{"ID": id}); err != nil {
				h.logger.ErrorContext(r.Context(), "render not_found", "error", err)
			}
			return
		}
		h.logger.ErrorContext(r.Context(), "load book failed",
			"book_id", id, "error", err, "request_id", httpx.RequestIDFrom(r))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := h.views.Render(w, http.StatusOK, "book", page); err != nil {
		h.logger.ErrorContext(r.Context(), "render book", "error", err)
	}
}

// Ready handles GET /readyz
func (h *HTTPHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
	defer cancel()
	if err := h.service.Ready(ctx); err != nil {
		http.Error(w, "db not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// parseOffset never fails: missing, non-numeric, negative and out of range
// values are 0.
func parseOffset(raw string) int {
	offset, err := strconv.Atoi(raw)
	if err != nil || offset < 0 || offset > MaxOffset {
		return 0
	}
	return offset
}
