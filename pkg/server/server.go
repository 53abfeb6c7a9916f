// Package server exposes recommendations and catalog writes over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/elonfeng/tasteprice/pkg/catalog"
	"github.com/elonfeng/tasteprice/pkg/recommend"
	"github.com/elonfeng/tasteprice/pkg/source"
)

// Collector runs one collection round on demand.
type Collector interface {
	RunCollect(ctx context.Context) (*source.Result, error)
}

// Server provides the HTTP API.
type Server struct {
	engine    *recommend.Engine
	service   *catalog.Service
	collector Collector
	logger    *zap.Logger
	port      int
}

// New creates a new HTTP server. collector may be nil, which disables
// POST /api/v1/collect.
func New(engine *recommend.Engine, service *catalog.Service, collector Collector, port int, logger *zap.Logger) *Server {
	if port == 0 {
		port = 8080
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine:    engine,
		service:   service,
		collector: collector,
		logger:    logger,
		port:      port,
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/recommend", s.handleRecommend)
		r.Get("/suggest", s.handleSuggest)
		r.Post("/ratings", s.handleRate)
		r.Post("/dishes", s.handleSubmit)
		r.Post("/collect", s.handleCollect)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	if s.collector == nil {
		writeError(w, http.StatusServiceUnavailable, "collection is not configured")
		return
	}

	res, err := s.collector.RunCollect(r.Context())
	if err != nil {
		s.logger.Error("collect failed", zap.Error(err))
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var verr *catalog.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, recommend.ErrNoMatch), errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrDataUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func outcomeOf(err error) string {
	var verr *catalog.ValidationError
	switch {
	case err == nil:
		return outcomeOK
	case errors.As(err, &verr):
		return outcomeInvalid
	case errors.Is(err, recommend.ErrNoMatch):
		return outcomeNoMatch
	case errors.Is(err, catalog.ErrNotFound):
		return outcomeNotFound
	case errors.Is(err, catalog.ErrDataUnavailable):
		return outcomeUnavailable
	default:
		return outcomeError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
