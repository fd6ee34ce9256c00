package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metricsServer exposes the Prometheus registry over HTTP
type metricsServer struct {
	httpServer *http.Server
	logger     *slog.Logger
}

func newMetricsRouter() http.Handler {
	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return router
}

// startMetrics serves /metrics on addr in the background.
// Listen failures are logged; the application runs without metrics.
func startMetrics(addr string, logger *slog.Logger) *metricsServer {
	s := &metricsServer{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           newMetricsRouter(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("metrics listener failed", "addr", addr, "error", err)
		return s
	}
	logger.Info("serving metrics", "addr", ln.Addr().String())

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	return s
}

// Shutdown stops the server
func (s *metricsServer) Shutdown(ctx context.Context) {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("metrics shutdown", "error", err)
	}
}
