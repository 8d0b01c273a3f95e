// Package httptransport assembles the public HTTP surface. Each bounded
// context registers its own routes; this package owns the shared middleware.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"terralegit/internal/platform/metrics"
	"terralegit/pkg/platform/httputil"
	"terralegit/pkg/platform/middleware/auth"
	"terralegit/pkg/platform/middleware/request"
	"terralegit/pkg/platform/middleware/requesttime"
)

// Registrar mounts a bounded context's routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Config carries everything the router needs.
type Config struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Validator      auth.JWTValidator
	Actors         auth.ActorResolver
	Health         map[string]HealthCheck
	RequestTimeout time.Duration
	// RateLimit runs after authentication so it can tell anonymous callers
	// apart. Optional.
	RateLimit func(http.Handler) http.Handler
	// Public routes accept anonymous callers; authorization is decided per
	// operation by the services.
	Public []Registrar
	// Private routes reject anonymous callers before reaching a handler.
	Private []Registrar
}

// NewRouter builds the chi router serving /v1, /healthz and /metrics.
func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	r.Get("/healthz", healthHandler(cfg.Health, logger))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(chimw.Timeout(timeout))
		v1.Use(auth.Authenticate(cfg.Validator, cfg.Actors, logger))
		if cfg.RateLimit != nil {
			v1.Use(cfg.RateLimit)
		}
		for _, reg := range cfg.Public {
			reg.Register(v1)
		}
		v1.Group(func(private chi.Router) {
			private.Use(auth.RequireActor(logger))
			for _, reg := range cfg.Private {
				reg.Register(private)
			}
		})
	})
	return r
}

func healthHandler(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
				results[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		httputil.WriteJSON(w, status, map[string]any{"status": http.StatusText(status), "checks": results})
	}
}
