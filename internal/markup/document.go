package markup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/meow/internal/apperr"
)

// RenderResult is one rendering of the document.
type RenderResult struct {
	HTML      string
	Title     string
	Timestamp int64
}

// Document binds one file to one markup kind. The kind is resolved once
// and never changes; content and mtime are read fresh on every call.
type Document struct {
	registry *Registry
	path     string
	dir      string
	base     string
	kind     Kind
}

// Resolve validates path and determines its kind. A non-empty filetype
// overrides extension matching by detecting against "dummy.<filetype>".
func Resolve(reg *Registry, path, filetype string) (*Document, error) {
	abs, err := absPath(path)
	if err != nil {
		return nil, &apperr.InvalidFileError{Path: path, Err: err}
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, &apperr.InvalidFileError{Path: abs, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &apperr.InvalidFileError{Path: abs}
	}

	probe := abs
	if filetype != "" {
		probe = "dummy." + filetype
	}
	kind, err := reg.Detect(probe)
	if err != nil {
		return nil, err
	}

	dir, base := filepath.Split(abs)
	return &Document{
		registry: reg,
		path:     abs,
		dir:      filepath.Clean(dir),
		base:     base,
		kind:     kind,
	}, nil
}

func absPath(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand home: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return filepath.Abs(p)
}

// Path returns the absolute document path.
func (d *Document) Path() string { return d.path }

// Dir returns the directory containing the document.
func (d *Document) Dir() string { return d.dir }

// Base returns the document's file name.
func (d *Document) Base() string { return d.base }

// Kind returns the resolved markup kind.
func (d *Document) Kind() Kind { return d.kind }

// Title returns "<basename> - <directory>".
func (d *Document) Title() string {
	return d.base + " - " + d.dir
}

// Timestamp returns the document's modification time in whole seconds.
func (d *Document) Timestamp() (int64, error) {
	info, err := os.Stat(d.path)
	if err != nil {
		return 0, &apperr.DocumentReadError{Path: d.path, Err: err}
	}
	return info.ModTime().Unix(), nil
}

// Render renders the current file content.
func (d *Document) Render() (*RenderResult, error) {
	ts, err := d.Timestamp()
	if err != nil {
		return nil, err
	}
	html, err := d.registry.Render(d.kind, d.path)
	if err != nil {
		return nil, err
	}
	return &RenderResult{
		HTML:      html,
		Title:     d.Title(),
		Timestamp: ts,
	}, nil
}
