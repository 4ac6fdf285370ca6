// Package view renders html/template pages that share one layout.
//
//	views, err := view.New(resources.Views, "views", template.FuncMap{"image": catalog.ImageURL})
//	views.Render(w, http.StatusOK, "home.html", page)
//
// Every page is parsed together with layout.html and must define a
// "content" block; the layout is what gets executed.
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"time"

	"github.com/shashiranjanraj/thali/pkg/logger"
)

const layoutFile = "layout.html"

// Engine holds one parsed template set per page.
type Engine struct {
	pages map[string]*template.Template
}

// Funcs available to every template.
func baseFuncs() template.FuncMap {
	return template.FuncMap{
		"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"date":  func(t time.Time) string { return t.Format("2006-01-02 15:04") },
	}
}

// New parses every *.html under dir in fsys. extra is merged over the
// built-in funcs.
func New(fsys fs.FS, dir string, extra template.FuncMap) (*Engine, error) {
	funcs := baseFuncs()
	for k, v := range extra {
		funcs[k] = v
	}

	names, err := fs.Glob(fsys, path.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("view: list templates: %w", err)
	}

	layout := path.Join(dir, layoutFile)
	e := &Engine{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		base := path.Base(name)
		if base == layoutFile {
			continue
		}
		tmpl, err := template.New(base).Funcs(funcs).ParseFS(fsys, layout, name)
		if err != nil {
			return nil, fmt.Errorf("view: parse %s: %w", base, err)
		}
		e.pages[base] = tmpl
	}
	return e, nil
}

// Has reports whether page was parsed.
func (e *Engine) Has(page string) bool {
	_, ok := e.pages[page]
	return ok
}

// Render executes page into a buffer and writes it with status. A failed
// render becomes a plain 500 so no half-written page reaches the client.
func (e *Engine) Render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	tmpl, ok := e.pages[page]
	if !ok {
		logger.WithCtx(r.Context()).Error("view: unknown page", "page", page)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		logger.WithCtx(r.Context()).Error("view: render failed", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
