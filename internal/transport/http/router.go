package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"regionx/internal/platform/metrics"
	"regionx/pkg/platform/httputil"
	"regionx/pkg/platform/middleware/request"
	"regionx/pkg/platform/middleware/requesttime"
)

// Module is a handler package that mounts its own routes.
type Module interface {
	Register(r chi.Router)
}

// HealthCheck checks a backing dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

type Options struct {
	Logger         *slog.Logger
	Metrics        *metrics.Registry
	RequestTimeout time.Duration
	// Health names the dependencies checked by /health.
	Health map[string]HealthCheck
	// RateLimit wraps module routes. Operational endpoints are never limited.
	RateLimit func(http.Handler) http.Handler
}

// NewRouter builds the HTTP surface: the shared middleware chain, the
// operational endpoints and every module's routes.
func NewRouter(opts Options, modules ...Module) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	latency := newLatency(opts.Metrics)

	r := chi.NewRouter()
	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(logger))
	r.Use(request.Timeout(timeout))
	r.Use(request.ContentTypeJSON)
	r.Use(requesttime.Middleware)
	r.Use(latency.middleware)

	r.Get("/health", healthHandler(opts.Health))
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		if opts.RateLimit != nil {
			r.Use(opts.RateLimit)
		}
		for _, m := range modules {
			m.Register(r)
		}
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
