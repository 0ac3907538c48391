// Package api provides the operational HTTP endpoints of the sync service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stacklok/usersync/internal/sync/state"
	"github.com/stacklok/usersync/internal/versions"
)

// ReadinessCheck reports whether the service can serve traffic
type ReadinessCheck func(ctx context.Context) error

// ServerOption configures the ops API server
type ServerOption func(*serverConfig)

// serverConfig holds the server configuration
type serverConfig struct {
	middlewares    []func(http.Handler) http.Handler
	readiness      ReadinessCheck
	metricsHandler http.Handler
}

// WithMiddlewares adds middleware to the server
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithReadinessCheck sets the check behind /readiness, typically a database ping
func WithReadinessCheck(check ReadinessCheck) ServerOption {
	return func(cfg *serverConfig) {
		cfg.readiness = check
	}
}

// WithMetricsHandler serves handler on /metrics
func WithMetricsHandler(handler http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.metricsHandler = handler
	}
}

type routes struct {
	statusSvc state.StateService
	readiness ReadinessCheck
}

// NewServer creates and configures the HTTP router with the given status service and options
func NewServer(statusSvc state.StateService, opts ...ServerOption) *chi.Mux {
	cfg := &serverConfig{
		middlewares: []func(http.Handler) http.Handler{},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()
	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}

	rt := &routes{statusSvc: statusSvc, readiness: cfg.readiness}
	r.Get("/health", rt.health)
	r.Get("/readiness", rt.ready)
	r.Get("/status", rt.status)
	r.Get("/version", rt.version)

	if cfg.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metricsHandler)
	}

	return r
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.DebugContext(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (*routes) health(w http.ResponseWriter, _ *http.Request) {
	writeJSONResponse(w, HealthResponse{Status: "healthy"}, http.StatusOK)
}

func (rt *routes) ready(w http.ResponseWriter, r *http.Request) {
	if rt.readiness != nil {
		if err := rt.readiness(r.Context()); err != nil {
			slog.Warn("Readiness check failed", "error", err)
			writeErrorResponse(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	writeJSONResponse(w, ReadinessResponse{Status: "ready"}, http.StatusOK)
}

func (rt *routes) status(w http.ResponseWriter, r *http.Request) {
	syncStatus, err := rt.statusSvc.GetSyncStatus(r.Context())
	if err != nil {
		if errors.Is(err, state.ErrStatusNotFound) {
			writeErrorResponse(w, "no sync pass has run yet", http.StatusNotFound)
			return
		}
		slog.Error("Failed to read sync status", "error", err)
		writeErrorResponse(w, "failed to read sync status", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, syncStatus, http.StatusOK)
}

func (*routes) version(w http.ResponseWriter, _ *http.Request) {
	writeJSONResponse(w, versions.Get(), http.StatusOK)
}

// writeJSONResponse writes a JSON response with the given data
func writeJSONResponse(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	writeJSONResponse(w, ErrorResponse{Error: message}, statusCode)
}
