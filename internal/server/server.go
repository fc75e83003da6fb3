// Package server exposes the mind-map pipeline over HTTP.
//
// Routes:
//
//	POST /api/v1/mindmap      build a graph (structured or diagram input)
//	POST /api/v1/mindmap/svg  build and return the rendered SVG
//	GET  /healthz             liveness check
//	GET  /metrics             Prometheus metrics
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/YIFUNLIN/mindflow/pkg/config"
	"github.com/YIFUNLIN/mindflow/pkg/pipeline"
	"github.com/YIFUNLIN/mindflow/pkg/render/diagram"
)

// maxBodySize caps request bodies at 1 MiB. Hierarchies are small; anything
// larger is a client error.
const maxBodySize = 1 << 20

// Server holds the HTTP handler dependencies.
type Server struct {
	runner  *pipeline.Runner
	adapter *diagram.Adapter
	cfg     config.Config
	logger  *log.Logger
}

// New creates a server around the given pipeline runner.
func New(runner *pipeline.Runner, adapter *diagram.Adapter, cfg config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if adapter == nil {
		adapter = diagram.NewAdapter(diagram.NewGraphvizRenderer())
	}
	return &Server{runner: runner, adapter: adapter, cfg: cfg, logger: logger}
}

// Handler builds the chi router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(s.requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/mindmap", s.handleMindmap)
		r.Post("/mindmap/svg", s.handleMindmapSVG)
	})
	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// HTTPServer wraps the handler in an http.Server with the configured
// timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeout),
	}
}

// requestID tags each request with a fresh id, echoed in the response for
// log correlation.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger logs one line per request with status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", w.Header().Get("X-Request-Id"))
	})
}
