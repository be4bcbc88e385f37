package markup

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/starford/meow/internal/apperr"
)

// RenderFunc converts document source to an HTML fragment.
type RenderFunc func(src []byte) (string, error)

type entry struct {
	kind    Kind
	pattern *regexp.Regexp
	render  RenderFunc
}

// Registry maps kinds to their filename pattern and render function.
// It is built once at startup and then shared read-only.
type Registry struct {
	mu      sync.RWMutex
	entries map[Kind]entry
	extra   []Kind // non-catalog kinds in registration order
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Kind]entry)}
}

// Register associates kind with pattern and fn. Registering a kind again
// replaces the previous entry without changing its detection priority.
func (r *Registry) Register(kind Kind, pattern *regexp.Regexp, fn RenderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[kind]; !exists {
		if _, known := Lookup(kind); !known {
			r.extra = append(r.extra, kind)
		}
	}
	r.entries[kind] = entry{kind: kind, pattern: pattern, render: fn}
}

// Has reports whether kind is registered.
func (r *Registry) Has(kind Kind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[kind]
	return ok
}

// Kinds returns the registered kinds in detection order: catalog kinds
// first, in catalog order, then any others in registration order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.orderedLocked()
}

func (r *Registry) orderedLocked() []Kind {
	out := make([]Kind, 0, len(r.entries))
	for _, s := range Catalog {
		if _, ok := r.entries[s.Kind]; ok {
			out = append(out, s.Kind)
		}
	}
	return append(out, r.extra...)
}

// Detect returns the first kind whose pattern matches filename.
func (r *Registry) Detect(filename string) (Kind, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, k := range r.orderedLocked() {
		if r.entries[k].pattern.MatchString(filename) {
			return k, nil
		}
	}
	return "", &apperr.UnsupportedMarkupError{Filename: filename, Known: r.knownLocked()}
}

// Known describes every catalog kind plus any extra registered ones,
// flagging which are available.
func (r *Registry) Known() []apperr.MarkupInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.knownLocked()
}

func (r *Registry) knownLocked() []apperr.MarkupInfo {
	out := make([]apperr.MarkupInfo, 0, len(Catalog)+len(r.extra))
	for _, s := range Catalog {
		_, ok := r.entries[s.Kind]
		out = append(out, apperr.MarkupInfo{
			Kind:       string(s.Kind),
			Extensions: s.Extensions,
			Backend:    s.Backend,
			Available:  ok,
		})
	}
	for _, k := range r.extra {
		out = append(out, apperr.MarkupInfo{
			Kind:       string(k),
			Extensions: []string{r.entries[k].pattern.String()},
			Backend:    "custom",
			Available:  true,
		})
	}
	return out
}

// Render reads path and converts it with the backend registered for kind.
// Read failures are reported as *apperr.DocumentReadError.
func (r *Registry) Render(kind Kind, path string) (string, error) {
	r.mu.RLock()
	e, ok := r.entries[kind]
	r.mu.RUnlock()
	if !ok {
		return "", &apperr.UnsupportedMarkupError{Filename: path, Known: r.Known()}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &apperr.DocumentReadError{Path: path, Err: err}
	}
	src := []byte(strings.ToValidUTF8(string(data), "�"))

	html, err := e.render(src)
	if err != nil {
		return "", fmt.Errorf("render %s as %s: %w", path, kind, err)
	}
	return html, nil
}
