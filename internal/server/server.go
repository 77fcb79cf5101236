// Package server exposes the latest compiled snapshots over a read-only HTTP
// API, with Prometheus metrics and a websocket feed of rebuild events.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/shapec-dev/shapec/internal/compiler/pipeline"
	"github.com/shapec-dev/shapec/internal/compiler/schema"
	"github.com/shapec-dev/shapec/internal/compiler/snapshot"
	"github.com/shapec-dev/shapec/internal/metrics"
	"github.com/shapec-dev/shapec/internal/store"
	"github.com/shapec-dev/shapec/internal/watch"
)

// History is the part of the snapshot store the server reads.
type History interface {
	Latest(ctx context.Context, service string) (*store.Run, error)
}

// Config holds server configuration
type Config struct {
	Address string
	DataDir string

	Compiler *pipeline.Compiler
	// History is optional; without it the diff endpoint is unavailable.
	History History
	Metrics *metrics.Collector
	Hub     *watch.ReloadHub
	Logger  *zap.Logger

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a server configuration with production timeouts.
func DefaultConfig() Config {
	return Config{
		Address:         ":8088",
		DataDir:         "data",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server is the inspection server.
type Server struct {
	mu       sync.RWMutex
	compiler *pipeline.Compiler

	config  Config
	state   *State
	router  chi.Router
	log     *zap.Logger
	metrics *metrics.Collector
}

// New creates a server. Metrics, hub and logger get defaults when unset.
func New(config Config) (*Server, error) {
	if config.Compiler == nil {
		return nil, fmt.Errorf("compiler cannot be nil")
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Metrics == nil {
		config.Metrics = metrics.New()
	}
	if config.Hub == nil {
		config.Hub = watch.NewReloadHub(config.Logger)
	}

	s := &Server{
		compiler: config.Compiler,
		config:   config,
		state:    NewState(),
		log:      config.Logger,
		metrics:  config.Metrics,
	}
	s.router = s.routes()
	return s, nil
}

// State returns the compiled state served by s.
func (s *Server) State() *State { return s.state }

// SetCompiler replaces the compiler used by later rebuilds, e.g. after the
// override tables were reloaded.
func (s *Server) SetCompiler(c *pipeline.Compiler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.compiler = c
}

func (s *Server) currentCompiler() *pipeline.Compiler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.compiler
}

// Hub returns the websocket hub.
func (s *Server) Hub() *watch.ReloadHub { return s.config.Hub }

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.countRequests)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "The requested resource was not found")
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", s.metrics.Handler().ServeHTTP)
	r.Get("/ws", s.config.Hub.HandleWebSocket)

	r.Route("/services", func(r chi.Router) {
		r.Get("/", s.handleServices)
		r.Route("/{service}", func(r chi.Router) {
			r.Get("/", s.handleService)
			r.Get("/records/{record}", s.handleRecord)
			r.Get("/diff", s.handleDiff)
		})
	})
	return r
}

// countRequests records every request by route pattern and status.
func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"services": len(s.state.Names()),
	})
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Services())
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (*snapshot.Snapshot, bool) {
	name := chi.URLParam(r, "service")
	snap, ok := s.state.Snapshot(name)
	if !ok {
		writeError(w, r, http.StatusNotFound, "SERVICE_NOT_FOUND", fmt.Sprintf("service %s has no compiled snapshot", name))
		return nil, false
	}
	return snap, true
}

func (s *Server) handleService(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.snapshot(w, r); ok {
		writeJSON(w, http.StatusOK, snap)
	}
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "record")
	rec, ok := snap.Record(name)
	if !ok {
		writeError(w, r, http.StatusNotFound, "RECORD_NOT_FOUND", fmt.Sprintf("record %s not found in %s", name, snap.Service))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DiffResponse is the body of the diff endpoint.
type DiffResponse struct {
	Service string            `json:"service"`
	BaseRun string            `json:"base_run,omitempty"`
	Summary snapshot.Summary  `json:"summary"`
	Changes []snapshot.Change `json:"changes"`
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	if s.config.History == nil {
		writeError(w, r, http.StatusServiceUnavailable, "STORE_DISABLED", "snapshot store is not configured")
		return
	}
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}

	resp := DiffResponse{Service: snap.Service}
	var base *snapshot.Snapshot
	run, err := s.config.History.Latest(r.Context(), snap.Service)
	switch {
	case err == nil:
		base = run.Snapshot
		resp.BaseRun = run.ID
	case errors.Is(err, store.ErrNotFound):
	default:
		s.log.Error("failed to load stored snapshot", zap.String("service", snap.Service), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "STORE_ERROR", "failed to load stored snapshot")
		return
	}

	resp.Changes = snapshot.Diff(base, snap)
	if resp.Changes == nil {
		resp.Changes = []snapshot.Change{}
	}
	resp.Summary = snapshot.Summarize(resp.Changes)
	writeJSON(w, http.StatusOK, resp)
}

// Rebuild compiles the named services, or every discovered service when
// names is empty, updates the state and notifies websocket clients.
func (s *Server) Rebuild(ctx context.Context, names []string) ([]*pipeline.Result, error) {
	dirs, err := schema.Discover(s.config.DataDir)
	if err != nil {
		return nil, err
	}
	if len(names) > 0 {
		wanted := make(map[string]bool, len(names))
		for _, n := range names {
			wanted[n] = true
		}
		selected := dirs[:0:0]
		for _, d := range dirs {
			if wanted[d.Name] {
				selected = append(selected, d)
			}
		}
		dirs = selected
	}

	built := make([]string, len(dirs))
	for i, d := range dirs {
		built[i] = d.Name
	}
	s.config.Hub.NotifyBuilding(built)

	start := time.Now()
	results := s.currentCompiler().CompileAll(ctx, dirs)
	s.state.Update(results)

	var failures []watch.BuildError
	for _, r := range pipeline.Failed(results) {
		be := watch.BuildError{Service: r.Service, Message: r.Err.Error()}
		if list, ok := pipeline.FatalDiagnostics(r.Err); ok && len(list) > 0 {
			be.Code = string(list[0].Code)
		}
		failures = append(failures, be)
	}
	if len(failures) > 0 {
		s.config.Hub.NotifyError(failures)
	} else {
		s.config.Hub.NotifySuccess(built, time.Since(start))
	}

	s.log.Info("rebuild finished",
		zap.Int("services", len(results)),
		zap.Int("failed", len(failures)),
		zap.Duration("duration", time.Since(start)))
	return results, nil
}

// OnChange is a watch callback rebuilding the services touched by files.
func (s *Server) OnChange(ctx context.Context) func([]string) error {
	return func(files []string) error {
		services, all := watch.ServicesFor(s.config.DataDir, files)
		if all {
			services = nil
		} else if len(services) == 0 {
			return nil
		}
		_, err := s.Rebuild(ctx, services)
		return err
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.log.Info("inspection server listening", zap.String("addr", ln.Addr().String()))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server failed: %w", err)
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("shutting down inspection server")
	s.config.Hub.Close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return <-errChan
}
