package server

import (
	"net/http"
	"time"

	"retrace/internal/trace"
)

// crossOriginIsolation sets the COOP/COEP pair on every response, matching
// the headers the hosted frontend is deployed behind. Without both, the
// browser refuses cross-origin-isolated features on the served pages.
func crossOriginIsolation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Cross-Origin-Embedder-Policy", "require-corp")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"dur", time.Since(started),
		)
	})
}

// withDiag puts the server's diagnostics tracer on the request context so
// handlers and anything below them can open spans against it.
func (s *Server) withDiag(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(trace.WithTracer(r.Context(), s.diag)))
	})
}
