// Package api implements the optional admin HTTP surface of facilityd:
// health probes, Prometheus metrics exposition, and a read-only status
// snapshot of the booking server. The booking protocol itself never touches
// HTTP; this surface exists for operators.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marmos91/facilityd/internal/logger"
	booking "github.com/marmos91/facilityd/internal/protocol/booking"
)

// StatusSource provides the point-in-time server snapshot served on
// /api/v1/status.
type StatusSource interface {
	Status() booking.Status
}

// NewRouter creates and configures the chi router with all middleware and
// routes.
//
// Routes:
//   - GET /health - Liveness probe
//   - GET /metrics - Prometheus exposition
//   - GET /api/v1/status - Read-only server snapshot
func NewRouter(src StatusSource, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Get("/api/v1/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(src.Status()); err != nil {
			logger.Error("Encode status failed", "error", err)
		}
	})

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	return r
}

// NewServer wires the admin router to the booking server's metrics registry
// and returns an http.Server ready to listen on addr.
func NewServer(addr string, srv *booking.Server) *http.Server {
	handler := promhttp.HandlerFor(srv.Metrics().Registry(), promhttp.HandlerOpts{})
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(srv, handler),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// isHealthPath returns true if the request path is a healthcheck endpoint.
func isHealthPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/")
}

// requestLogger is a custom middleware that logs requests using the
// internal logger. Healthcheck and metrics scrapes are logged at DEBUG to
// reduce noise.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logArgs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		}

		if isHealthPath(r.URL.Path) || r.URL.Path == "/metrics" {
			logger.Debug("Admin request completed", logArgs...)
		} else {
			logger.Info("Admin request completed", logArgs...)
		}
	})
}
