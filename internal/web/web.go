// Package web holds the page templates and static assets of the preview.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var (
	previewTmpl = template.Must(template.ParseFS(templateFS, "templates/preview.html"))
	exportTmpl  = template.Must(template.ParseFS(templateFS, "templates/export.html"))
)

// Page is the data shared by both page templates.
type Page struct {
	Title     string
	HTML      string
	Timestamp int64
}

// LiveOptions controls the polling script of the live page.
type LiveOptions struct {
	PollInterval time.Duration
	Events       bool
}

type liveConfig struct {
	Timestamp    int64 `json:"timestamp"`
	PollInterval int64 `json:"pollInterval"`
	Events       bool  `json:"events"`
}

// RenderPreview writes the live preview page, which polls /update.
func RenderPreview(w io.Writer, p Page, opts LiveOptions) error {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	return previewTmpl.Execute(w, map[string]any{
		"Title":     p.Title,
		"HTML":      template.HTML(p.HTML),
		"Timestamp": p.Timestamp,
		"Config": liveConfig{
			Timestamp:    p.Timestamp,
			PollInterval: interval.Milliseconds(),
			Events:       opts.Events,
		},
	})
}

// RenderExport writes a standalone page with the stylesheet inlined and
// no script.
func RenderExport(w io.Writer, p Page) error {
	css, err := fs.ReadFile(staticFS, "static/preview.css")
	if err != nil {
		return fmt.Errorf("web: read stylesheet: %w", err)
	}
	return exportTmpl.Execute(w, map[string]any{
		"Title": p.Title,
		"HTML":  template.HTML(p.HTML),
		"CSS":   template.CSS(css),
	})
}

// Static serves the bundled assets; mount it with the /static/ prefix stripped.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
