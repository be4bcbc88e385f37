package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/meow/internal/web"
)

// NewRouter creates a chi router with the preview routes mounted.
// events, if non-nil, is mounted at GET /events.
func NewRouter(h *Handler, events http.Handler) chi.Router {
	r := chi.NewRouter()

	// Health check endpoints.
	r.Get("/health/live", health)
	r.Get("/health/ready", health)

	r.Group(func(r chi.Router) {
		r.Use(NoStore)

		r.Get("/", h.Index)
		r.Delete("/", h.Shutdown)
		r.Post("/update", h.Update)

		if events != nil {
			r.Get("/events", events.ServeHTTP)
		}
	})

	r.Handle("/static/*", http.StripPrefix("/static/", web.Static()))

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
