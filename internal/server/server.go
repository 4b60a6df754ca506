// Package server exposes the scanner over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ppiankov/tablespectre/internal/scanner"
	"github.com/ppiankov/tablespectre/internal/tables"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 10 << 20

const recordTimeout = 30 * time.Second

// Recorder persists the findings of a request. *store.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, source string, units []scanner.CodeUnit) error
}

// Filter drops suppressed findings. *suppress.Rules satisfies it.
type Filter interface {
	FilterUnits(units []scanner.CodeUnit) ([]scanner.CodeUnit, int)
}

// Server holds the current engine and request dependencies.
type Server struct {
	engine       atomic.Pointer[scanner.Engine]
	engineOpts   []scanner.Option
	maxBodyBytes int64
	recorder     Recorder
	filter       Filter
	pending      sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithWorkers sets the per-request batch parallelism.
func WithWorkers(n int) Option {
	return func(s *Server) {
		s.engineOpts = append(s.engineOpts, scanner.WithWorkers(n))
	}
}

// WithMaxBodyBytes caps request bodies. Non-positive values keep the default.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithRecorder persists each request's findings in the background.
func WithRecorder(r Recorder) Option {
	return func(s *Server) { s.recorder = r }
}

// WithFilter applies suppressions before responding.
func WithFilter(f Filter) Option {
	return func(s *Server) { s.filter = f }
}

// New creates a Server scanning against kb.
func New(kb *tables.KnowledgeBase, opts ...Option) *Server {
	s := &Server{maxBodyBytes: DefaultMaxBodyBytes}
	for _, o := range opts {
		o(s)
	}
	s.engine.Store(scanner.NewEngine(kb, s.engineOpts...))
	return s
}

// Engine returns the engine new requests will use.
func (s *Server) Engine() *scanner.Engine {
	return s.engine.Load()
}

// Reload swaps in a new knowledge base. In-flight requests finish with the
// engine they started with.
func (s *Server) Reload(kb *tables.KnowledgeBase) {
	s.engine.Store(scanner.NewEngine(kb, s.engineOpts...))
	slog.Info("knowledge base reloaded", "tables", kb.Len())
}

// Wait blocks until background recordings have finished.
func (s *Server) Wait() {
	s.pending.Wait()
}

// Handler returns the HTTP handler (router with recovery, request ids, logging, routes).
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(requestLogger)

	r.Get("/health", s.handleHealth)
	r.Get("/tables", s.handleTables)
	r.Post("/remediate", s.handleRemediate)
	r.Post("/remediate-array", s.handleRemediateArray)

	return r
}

// requestLogger logs one line per request through slog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// record hands units to the recorder without blocking the response.
func (s *Server) record(source string, units []scanner.CodeUnit) {
	if s.recorder == nil || len(units) == 0 {
		return
	}
	s.pending.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := s.recorder.Record(ctx, source, units); err != nil {
			slog.Warn("record findings failed", "source", source, "error", err)
		}
	})
}
