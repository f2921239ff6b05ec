package httpx

import (
	"html"
	"net/http"
)

// Renderer writes a named HTML view. Implementations must not write a
// partial page when the view fails to execute.
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, data any) error
}

// HTMLErrorFragment writes a bare HTML fragment carrying the error text.
// It is used where no template is involved in the failure response.
func HTMLErrorFragment(w http.ResponseWriter, statusCode int, err error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte("<h2>Error</h2>" + html.EscapeString(err.Error())))
}
