// Package api implements the preview HTTP surface using chi.
package api

import "net/http"

// NoStore marks responses as uncacheable; every answer reflects the file
// as it is on disk at request time.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
