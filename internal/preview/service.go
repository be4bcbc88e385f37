// Package preview implements the poll-based change detection used by the
// browser: the client sends the last timestamp it saw and gets fresh HTML
// only when the file's mtime differs. No per-client state is kept.
package preview

import (
	"log/slog"

	"github.com/starford/meow/internal/markup"
)

// Update is the response to a staleness check. HTMLPart is nil when the
// client's view is current.
type Update struct {
	Title     string  `json:"title"`
	Timestamp int64   `json:"timestamp"`
	HTMLPart  *string `json:"html_part"`
}

// Changed reports whether the update carries new content.
func (u *Update) Changed() bool { return u.HTMLPart != nil }

// Service answers page and staleness requests for one document.
type Service struct {
	doc    *markup.Document
	logger *slog.Logger
}

// NewService creates a Service bound to doc.
func NewService(doc *markup.Document, logger *slog.Logger) *Service {
	return &Service{doc: doc, logger: logger}
}

// Document returns the bound document.
func (s *Service) Document() *markup.Document { return s.doc }

// Page renders the full document for the initial page load.
func (s *Service) Page() (*markup.RenderResult, error) {
	return s.doc.Render()
}

// Check compares the client's timestamp with the file's current mtime.
func (s *Service) Check(clientTS int64) (*Update, error) {
	ts, err := s.doc.Timestamp()
	if err != nil {
		return nil, err
	}

	u := &Update{Title: s.doc.Title(), Timestamp: ts}
	if ts == clientTS {
		return u, nil
	}

	s.logger.Info("detected file change",
		slog.String("path", s.doc.Path()),
		slog.Int64("client_timestamp", clientTS),
		slog.Int64("timestamp", ts))

	res, err := s.doc.Render()
	if err != nil {
		return nil, err
	}
	u.Timestamp = res.Timestamp
	u.HTMLPart = &res.HTML
	return u, nil
}
