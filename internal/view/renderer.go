// Package view renders the server-side HTML pages. Every page is parsed
// together with the shared layout and executed into a buffer first, so a
// failing template never leaves a half-written response behind.
package view

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	layoutFile   = "layout.html"
	layoutName   = "layout"
	templatesDir = "templates"
)

// ErrUnknownView is returned when a view name has no template.
var ErrUnknownView = errors.New("unknown view")

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	return NewFromFS(templateFS, templatesDir)
}

// NewFromFS parses layout.html plus every other *.html file in dir. The
// view name is the file name without extension.
func NewFromFS(fsys fs.FS, dir string) (*Renderer, error) {
	layout, err := template.New(layoutName).Funcs(funcs).ParseFS(fsys, path.Join(dir, layoutFile))
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(fsys, path.Join(dir, "*.html"))
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		base := path.Base(file)
		if base == layoutFile {
			continue
		}
		t, err := template.Must(layout.Clone()).ParseFS(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("parse view %s: %w", base, err)
		}
		pages[strings.TrimSuffix(base, ".html")] = t
	}
	return &Renderer{pages: pages}, nil
}

// Render executes the named view inside the layout and writes it with status.
// On failure a bare 500 is written and the error returned.
func (v *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	t, ok := v.pages[name]
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return fmt.Errorf("%w: %s", ErrUnknownView, name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layoutName, data); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return fmt.Errorf("execute view %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

var funcs = template.FuncMap{
	"int": func(n *int) string {
		if n == nil {
			return ""
		}
		return strconv.Itoa(*n)
	},
	"rating": func(f *float64) string {
		if f == nil {
			return ""
		}
		return strconv.FormatFloat(*f, 'f', 2, 64)
	},
	"datetime": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02 15:04:05 -07:00")
	},
}
