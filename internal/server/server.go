// Package server exposes the solving service over HTTP: chain intake,
// chain status, health and a non-secret config echo.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ppiankov/solvent/internal/model"
	"github.com/ppiankov/solvent/internal/registry"
	"github.com/ppiankov/solvent/internal/worker"
)

// ChainRunner executes one chain to completion. The server hands it a
// pool context and the registry entry tracking the chain.
type ChainRunner func(ctx context.Context, req model.ChainRequest, chain *registry.Chain)

// Server wires the HTTP surface to the worker pool and registry
type Server struct {
	cfg      *model.Config
	registry *registry.Registry
	pool     *worker.Pool
	run      ChainRunner
	ready    bool // reasoning backend probed successfully at startup
	log      *slog.Logger
}

// New creates a server. ready=false keeps the surface up but makes
// solve requests fail with a configuration error.
func New(cfg *model.Config, reg *registry.Registry, pool *worker.Pool, run ChainRunner, ready bool, logger *slog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		registry: reg,
		pool:     pool,
		run:      run,
		ready:    ready,
		log:      logger,
	}
}

// Router builds the chi routing tree
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Post("/solve", s.handleSolve)
	r.Get("/chains/{id}", s.handleChain)
	r.Get("/health", s.handleHealth)
	r.Get("/config", s.handleConfig)
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

// handleSolve validates credentials, registers the chain and queues it.
// The response is an acknowledgement; solving continues in the pool.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req model.ChainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "invalid request body"})
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "url is required"})
		return
	}

	if !s.cfg.ValidateCredentials(req.Email, req.Secret) {
		writeJSON(w, http.StatusForbidden, map[string]any{"detail": "Invalid secret"})
		return
	}

	if !s.ready {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": "reasoning backend not configured"})
		return
	}

	id, chain := s.registry.Register(req)
	if !s.pool.Submit(func(ctx context.Context) { s.run(ctx, req, chain) }) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"detail": "solver at capacity, retry later"})
		return
	}

	s.log.Info("chain accepted", "chain_id", id, "url", req.URL)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "accepted",
		"message":  "Quiz solving started",
		"chain_id": id,
	})
}

func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.registry.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "unknown or expired chain"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "healthy",
		"backend_configured": s.ready,
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
	})
}

// handleConfig echoes operational settings. Credentials and API keys
// never appear here.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"addr":            s.cfg.Server.Addr,
		"chain_workers":   s.cfg.Server.ChainWorkers,
		"primary_model":   s.cfg.LLM.PrimaryModel,
		"fallback_models": s.cfg.LLM.FallbackModels,
		"browser":         map[string]any{"headless": s.cfg.Browser.Headless, "disabled": s.cfg.Browser.Disabled},
		"max_attempts":    s.cfg.Solver.MaxAttempts,
		"total_budget":    s.cfg.Solver.TotalBudget.String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
