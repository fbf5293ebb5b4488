// Package server exposes chart requests over an HTTP JSON API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/verte-zerg/salaryscope/internal/logging"
	"github.com/verte-zerg/salaryscope/internal/survey"
)

const shutdownTimeout = 5 * time.Second

// DatasetSource hands out the cleaned dataset. *survey.Handle implements it.
type DatasetSource interface {
	Dataset(ctx context.Context) (*survey.Dataset, error)
}

// Server serves the chart API.
type Server struct {
	data     DatasetSource
	logger   *slog.Logger
	metrics  *metrics
	registry *prometheus.Registry
	router   chi.Router
}

// New builds the API router over data.
func New(data DatasetSource, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	registry := prometheus.NewRegistry()
	s := &Server{
		data:     data,
		logger:   logger,
		metrics:  newMetrics(registry),
		registry: registry,
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/records", s.handleRecords)
		r.Get("/options/{field}", s.handleOptions)
		r.Route("/charts", func(r chi.Router) {
			r.Get("/histogram", s.handleHistogram)
			r.Get("/box", s.handleBox)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("http server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
