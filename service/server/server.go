package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/brojonat/tipjar/service/config"
	"github.com/brojonat/tipjar/service/db"
	"github.com/brojonat/tipjar/service/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the HTTP server for the tip feed API.
type Server struct {
	addr    string
	cfg     *config.Config
	store   *db.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
	server  *http.Server
}

// New creates a new HTTP server with the given dependencies.
// The metrics is optional - if nil, the /metrics endpoint is not exposed.
func New(addr string, cfg *config.Config, store *db.Store, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		addr:    addr,
		cfg:     cfg,
		store:   store,
		metrics: m,
		logger:  logger,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	// Tip feed routes
	listTips := metrics.HTTPMetricsMiddleware(s.metrics, "/api/v1/tips")
	mux.Handle("GET /api/v1/tips", listTips(handleListTips(s.store, s.cfg, s.logger)))
	mux.Handle("GET /api/v1/tips/{address}", listTips(handleGetTip(s.store, s.logger)))

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics endpoint
	if s.metrics != nil {
		mux.Handle("GET /metrics", promhttp.Handler())
		s.logger.Info("metrics endpoint enabled")
	}

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting HTTP server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
