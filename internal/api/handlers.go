package api

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/meow/internal/apperr"
	"github.com/starford/meow/internal/preview"
	"github.com/starford/meow/internal/web"
)

// LevelCritical marks failures that mean the previewed file is gone.
const LevelCritical = slog.Level(12)

// Shutdowner stops the server that hosts the handler. Shutdown must not
// block on the request that triggers it.
type Shutdowner interface {
	Shutdown()
}

// Handler holds the preview route handlers.
type Handler struct {
	svc     *preview.Service
	stopper Shutdowner
	live    web.LiveOptions
	logger  *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(svc *preview.Service, stopper Shutdowner, live web.LiveOptions, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, stopper: stopper, live: live, logger: logger}
}

// Index handles GET /: the full preview page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Page()
	if err != nil {
		h.readFailure(r.Context(), w, err, false)
		return
	}

	var buf bytes.Buffer
	if err := web.RenderPreview(&buf, web.Page{
		Title:     res.Title,
		HTML:      res.HTML,
		Timestamp: res.Timestamp,
	}, h.live); err != nil {
		h.logger.Error("render page failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Update handles POST /update: the staleness check.
//
// Request:  {"timestamp": 1700000000}
// Response: {"title": "...", "timestamp": 1700000000, "html_part": null | "<p>..."}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	clientTS, err := preview.DecodeToken(r.Body)
	if err != nil {
		h.logger.Debug("malformed update request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, errorBody("malformed JSON: "+err.Error()))
		return
	}

	u, err := h.svc.Check(clientTS)
	if err != nil {
		h.readFailure(r.Context(), w, err, true)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Shutdown handles DELETE /: it answers first and then stops the server.
func (h *Handler) Shutdown(w http.ResponseWriter, _ *http.Request) {
	h.logger.Info("shutdown requested over HTTP")
	w.WriteHeader(http.StatusNoContent)
	h.stopper.Shutdown()
}

func (h *Handler) readFailure(ctx context.Context, w http.ResponseWriter, err error, asJSON bool) {
	var msg string
	var readErr *apperr.DocumentReadError
	if errors.As(err, &readErr) {
		h.logger.Log(ctx, LevelCritical, "document unreadable",
			slog.String("path", readErr.Path),
			slog.String("error", apperr.Reason(readErr.Err)))
		msg = readErr.Error()
	} else {
		h.logger.Error("render failed", slog.String("error", err.Error()))
		msg = err.Error()
	}

	if asJSON {
		writeJSON(w, http.StatusInternalServerError, errorBody(msg))
		return
	}
	http.Error(w, msg, http.StatusInternalServerError)
}
