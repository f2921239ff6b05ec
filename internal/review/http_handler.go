package review

import (
	"log/slog"
	"net/http"

	"bookbrowser/internal/httpx"
)

type HTTPHandler struct {
	finder Finder
	views  httpx.Renderer
	logger *slog.Logger
}

func NewHTTPHandler(finder Finder, views httpx.Renderer, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{finder: finder, views: views, logger: logger}
}

// Find handles GET /findreview?title=
func (h *HTTPHandler) Find(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")

	reviews, err := h.finder.FindReviews(r.Context(), title)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "find reviews failed",
			"title", title, "error", err, "request_id", httpx.RequestIDFrom(r))
		httpx.HTMLErrorFragment(w, http.StatusBadGateway, err)
		return
	}

	if err := h.views.Render(w, http.StatusOK, "review", NewPage(title, reviews)); err != nil {
		h.logger.ErrorContext(r.Context(), "render review", "error", err)
	}
}
