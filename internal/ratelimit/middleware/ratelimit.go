// Package middleware limits requests per client address. Queries and
// extrinsics have separate windows so a burst of reads cannot starve a
// client's writes.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"regionx/internal/ratelimit/metrics"
	"regionx/internal/ratelimit/models"
	"regionx/internal/ratelimit/store/bucket"
	"regionx/pkg/platform/httputil"
	"regionx/pkg/platform/middleware/metadata"
	"regionx/pkg/platform/middleware/request"
)

// BucketStore admits or refuses one request against a window.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit models.Limit) (*models.Result, error)
}

type Middleware struct {
	store    BucketStore
	fallback BucketStore
	breaker  *circuitBreaker
	limits   map[models.Class]models.Limit
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Middleware)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Middleware) {
		m.logger = logger
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

// WithBreaker tunes when the fallback takes over and when it hands back.
func WithBreaker(failures, successes int) Option {
	return func(m *Middleware) {
		m.breaker = newCircuitBreaker(failures, successes)
	}
}

// New limits reads and writes. A nil store uses the in-process store only.
func New(store BucketStore, read, write models.Limit, opts ...Option) *Middleware {
	fallback := bucket.New()
	if store == nil {
		store = fallback
	}
	m := &Middleware{
		store:    store,
		fallback: fallback,
		breaker:  newCircuitBreaker(5, 3),
		limits:   map[models.Class]models.Limit{models.ClassRead: read, models.ClassWrite: write},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ClassOf maps safe methods to reads and everything else to writes.
func ClassOf(r *http.Request) models.Class {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return models.ClassRead
	}
	return models.ClassWrite
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		class := ClassOf(r)
		limit := m.limits[class]
		if limit.Requests <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		result, err := m.check(ctx, models.Key(class, metadata.ClientIPFromRequest(r)), limit)
		if err != nil {
			// Both stores failed; let the request through.
			m.logger.ErrorContext(ctx, "rate limit check failed",
				"error", err,
				"request_id", request.GetRequestID(ctx),
			)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
		if m.breaker.isOpen() {
			w.Header().Set("X-RateLimit-Status", "degraded")
		}
		if !result.Allowed {
			m.metrics.IncRejected(string(class))
			w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
			httputil.WriteJSON(w, http.StatusTooManyRequests, &models.ExceededResponse{
				Error:      "rate_limit_exceeded",
				Message:    "Too many requests. Please try again later.",
				RetryAfter: result.RetryAfter,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// check asks the primary store and falls back to the in-process store while
// the primary is failing. The primary is still tried so the breaker can close.
func (m *Middleware) check(ctx context.Context, key string, limit models.Limit) (*models.Result, error) {
	if m.store == m.fallback {
		return m.store.Allow(ctx, key, limit)
	}
	result, err := m.store.Allow(ctx, key, limit)
	if err != nil {
		m.metrics.IncStoreErrors()
		if m.breaker.recordFailure() {
			m.logger.WarnContext(ctx, "rate limit store failing, using in-process fallback", "error", err)
			m.metrics.SetFallback(true)
		}
		return m.fallback.Allow(ctx, key, limit)
	}
	if m.breaker.recordSuccess() {
		m.logger.InfoContext(ctx, "rate limit store recovered")
		m.metrics.SetFallback(false)
	}
	if m.breaker.isOpen() {
		return m.fallback.Allow(ctx, key, limit)
	}
	return result, nil
}
