// Package testutil provides shared test helpers for documents and registries.
package testutil

import (
	"html"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/meow/internal/markup"
)

// WriteDoc creates name under a fresh temp directory and returns its path.
func WriteDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// Rewrite replaces the content of path and moves its mtime forward by
// delta, so second-resolution timestamps change reliably.
func Rewrite(t *testing.T, path, content string, delta time.Duration) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	mtime := info.ModTime().Add(delta)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

// HeadingRender is a tiny markdown stand-in: lines starting with "# "
// become <h1>, everything else is escaped inside <p>.
func HeadingRender(src []byte) (string, error) {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimSpace(string(src)), "\n") {
		if rest, ok := strings.CutPrefix(line, "# "); ok {
			b.WriteString("<h1>" + html.EscapeString(rest) + "</h1>\n")
			continue
		}
		if line != "" {
			b.WriteString("<p>" + html.EscapeString(line) + "</p>\n")
		}
	}
	return b.String(), nil
}

// Registry returns a registry with every catalog kind registered to
// HeadingRender, so tests do not depend on installed backends.
func Registry(t *testing.T) *markup.Registry {
	t.Helper()
	reg := markup.NewRegistry()
	for _, s := range markup.Catalog {
		reg.Register(s.Kind, s.Pattern(), HeadingRender)
	}
	return reg
}
