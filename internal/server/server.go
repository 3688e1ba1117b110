// Package server adapts an engine to HTTP: a JSON API over the public
// operations plus static hosting for a frontend, served with the
// cross-origin isolation headers the frontend needs.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"retrace/internal/engine"
	"retrace/internal/trace"
)

// DefaultAddr is the bind address retrace serve uses unless configured.
const DefaultAddr = ":8080"

// Options configures a Server. A nil Engine gets a fresh one; a nil Logger
// falls back to slog.Default().
type Options struct {
	Engine    *engine.Engine
	Logger    *slog.Logger
	Diag      trace.Tracer
	StaticDir string
}

// Server owns one engine and serializes all access to it: the engine is
// single-threaded by contract, the HTTP layer is not.
type Server struct {
	mu      sync.Mutex
	eng     *engine.Engine
	log     *slog.Logger
	diag    trace.Tracer
	static  string
	metrics *metrics
}

// New builds a server around the given engine.
func New(opts Options) *Server {
	if opts.Engine == nil {
		opts.Engine = engine.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Diag == nil {
		opts.Diag = trace.Nop
	}
	return &Server{
		eng:     opts.Engine,
		log:     opts.Logger,
		diag:    opts.Diag,
		static:  opts.StaticDir,
		metrics: newMetrics(),
	}
}

// Handler builds the router: the JSON API under /api, health and metrics
// probes, and optional static hosting at the root.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(crossOriginIsolation)
	r.Use(s.logRequests)
	r.Use(s.withDiag)

	r.Route("/api", func(r chi.Router) {
		r.Post("/execute", s.handleExecute)
		r.Get("/flow", s.handleFlow)
		r.Get("/variables", s.handleVariables)
		r.Get("/errors", s.handleErrors)
		r.Get("/performance", s.handlePerformance)
	})
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.reg, promhttp.HandlerOpts{}))

	if s.static != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.static)))
	}
	return r
}

// ListenAndServe serves the handler on addr until ctx is canceled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("listening", "addr", addr, "static", s.static)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

type executeRequest struct {
	Source      string `json:"source"`
	Language    string `json:"language"`
	Breakpoints []int  `json:"breakpoints"`
}

// handleExecute loads the posted source and runs it. The request's
// breakpoint list is declarative: it replaces the armed set entirely.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var body executeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.Language == "" {
		body.Language = engine.LanguageJavaScript
	}

	span := trace.Begin(trace.FromContext(r.Context()), trace.ScopeSession, "http:execute", 0)
	defer span.End("")

	s.mu.Lock()
	defer s.mu.Unlock()

	s.eng.SetCode(body.Source, body.Language)
	s.eng.ClearBreakpoints()
	for _, line := range body.Breakpoints {
		s.eng.AddBreakpoint(line)
	}

	started := time.Now()
	res, err := s.eng.Execute()
	if err != nil {
		if errors.Is(err, engine.ErrUnsupportedLanguage) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.metrics.observeRun(res.Outcome, time.Since(started))
	s.log.Info("run finished",
		"outcome", res.Outcome.String(),
		"entries", len(res.State.History),
		"language", body.Language,
	)
	s.writeJSON(w, res)
}

func (s *Server) handleFlow(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.eng.Flow()
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.writeJSON(w, g)
}

func (s *Server) handleVariables(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeJSON(w, s.eng.VariableStates())
}

func (s *Server) handleErrors(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeJSON(w, s.eng.ErrorTimeline())
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeJSON(w, s.eng.AnalyzePerformance())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("response encode failed", "error", err)
	}
}
