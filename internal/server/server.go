// Package server exposes the validation pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ppiankov/ixbrlcheck/internal/logger"
	"github.com/ppiankov/ixbrlcheck/internal/model"
	"github.com/ppiankov/ixbrlcheck/internal/pipeline"
	"github.com/ppiankov/ixbrlcheck/internal/store"
)

// History is the read side of the run history
type History interface {
	List(ctx context.Context, limit int) ([]store.Run, error)
	Latest(ctx context.Context, documentID string) (*store.Run, error)
}

// Server serves the validation API
type Server struct {
	pipeline *pipeline.Pipeline
	history  History // Optional
	log      *logger.Logger
	router   chi.Router
}

// New creates a server for the given pipeline. history may be nil.
func New(p *pipeline.Pipeline, history History, log *logger.Logger) *Server {
	s := &Server{
		pipeline: p,
		history:  history,
		log:      log,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler with all routes registered
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/profiles", s.listProfiles)
		r.Get("/rules", s.listRules)
		r.Post("/validate", s.validate)

		if s.history != nil {
			r.Get("/history", s.listHistory)
			r.Get("/history/{documentID}", s.latestRun)
		}
	})

	return r
}

// logRequests logs one debug line per request
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("%s %s -> %d (%d bytes, %s) [%s]", r.Method, r.URL.Path, ww.Status(),
			ww.BytesWritten(), time.Since(start).Round(time.Millisecond), middleware.GetReqID(r.Context()))
	})
}

// Run starts the HTTP server and shuts it down gracefully when ctx is done
func (s *Server) Run(ctx context.Context, cfg model.ServerConfig) error {
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening on %s", cfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
