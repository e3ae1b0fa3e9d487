package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"regionx/internal/ratelimit/metrics"
	"regionx/internal/ratelimit/models"
)

type failingStore struct {
	err error
}

func (f *failingStore) Allow(context.Context, string, models.Limit) (*models.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Result{Allowed: true, Limit: 100, Remaining: 99, ResetAt: time.Now()}, nil
}

type RateLimitSuite struct {
	suite.Suite
	metrics *metrics.Metrics
	next    http.Handler
}

func TestRateLimitSuite(t *testing.T) {
	suite.Run(t, new(RateLimitSuite))
}

func (s *RateLimitSuite) SetupTest() {
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.next = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
}

func (s *RateLimitSuite) serve(m *Middleware, method, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/regions/0x00", nil)
	req.Header.Set("X-Forwarded-For", ip)
	rec := httptest.NewRecorder()
	m.Handler(s.next).ServeHTTP(rec, req)
	return rec
}

func (s *RateLimitSuite) middleware(store BucketStore, opts ...Option) *Middleware {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), WithMetrics(s.metrics)}, opts...)
	return New(store,
		models.Limit{Requests: 3, Window: time.Minute},
		models.Limit{Requests: 1, Window: time.Minute},
		opts...,
	)
}

func (s *RateLimitSuite) TestLimits() {
	m := s.middleware(nil)

	s.Run("reads carry headers", func() {
		rec := s.serve(m, http.MethodGet, "10.0.0.1")
		s.Equal(http.StatusNoContent, rec.Code)
		s.Equal("3", rec.Header().Get("X-RateLimit-Limit"))
		s.Equal("2", rec.Header().Get("X-RateLimit-Remaining"))
		s.Empty(rec.Header().Get("X-RateLimit-Status"))
	})

	s.Run("writes have their own window", func() {
		s.Equal(http.StatusNoContent, s.serve(m, http.MethodPost, "10.0.0.1").Code)

		rec := s.serve(m, http.MethodPost, "10.0.0.1")
		s.Equal(http.StatusTooManyRequests, rec.Code)
		s.NotEmpty(rec.Header().Get("Retry-After"))
		var body models.ExceededResponse
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
		s.Equal("rate_limit_exceeded", body.Error)
		s.Positive(body.RetryAfter)

		s.Equal(http.StatusNoContent, s.serve(m, http.MethodGet, "10.0.0.1").Code)
	})

	s.Run("clients are independent", func() {
		s.Equal(http.StatusNoContent, s.serve(m, http.MethodDelete, "10.0.0.2").Code)
	})

	s.Equal(1.0, testutil.ToFloat64(s.metrics.Rejected.WithLabelValues("write")))
}

func (s *RateLimitSuite) TestZeroLimitDisablesClass() {
	m := New(nil, models.Limit{}, models.Limit{Requests: 1, Window: time.Minute})
	for range 5 {
		s.Equal(http.StatusNoContent, s.serve(m, http.MethodGet, "10.0.0.1").Code)
	}
}

func (s *RateLimitSuite) TestFallback() {
	store := &failingStore{err: errors.New("redis down")}
	m := s.middleware(store, WithBreaker(2, 2))

	s.Run("errors are served from the fallback", func() {
		rec := s.serve(m, http.MethodPost, "10.0.0.3")
		s.Equal(http.StatusNoContent, rec.Code)
		s.Empty(rec.Header().Get("X-RateLimit-Status"))

		rec = s.serve(m, http.MethodPost, "10.0.0.3")
		s.Equal(http.StatusTooManyRequests, rec.Code, "the fallback still enforces the limit")
		s.Equal("degraded", rec.Header().Get("X-RateLimit-Status"))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.FallbackState))
		s.Equal(2.0, testutil.ToFloat64(s.metrics.StoreErrors))
	})

	s.Run("the breaker closes after successful trial calls", func() {
		store.err = nil
		s.serve(m, http.MethodGet, "10.0.0.4")
		rec := s.serve(m, http.MethodGet, "10.0.0.4")
		s.Equal(http.StatusNoContent, rec.Code)
		s.Empty(rec.Header().Get("X-RateLimit-Status"))
		s.Equal("99", rec.Header().Get("X-RateLimit-Remaining"))
		s.Equal(0.0, testutil.ToFloat64(s.metrics.FallbackState))
	})
}

func TestClassOf(t *testing.T) {
	for method, want := range map[string]models.Class{
		http.MethodGet:    models.ClassRead,
		http.MethodHead:   models.ClassRead,
		http.MethodPost:   models.ClassWrite,
		http.MethodDelete: models.ClassWrite,
	} {
		req := httptest.NewRequest(method, "/", nil)
		assert.Equal(t, want, ClassOf(req), method)
	}
	require.Equal(t, "regionx:ratelimit:read:1.2.3.4", models.Key(models.ClassRead, "1.2.3.4"))
}
