package httptransport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"regionx/internal/platform/metrics"
)

type latency struct {
	duration *prometheus.HistogramVec
}

func newLatency(reg *metrics.Registry) *latency {
	if reg == nil {
		return &latency{}
	}
	return &latency{
		duration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "regionx_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// middleware observes latency labelled by the matched route pattern so path
// parameters do not explode label cardinality.
func (l *latency) middleware(next http.Handler) http.Handler {
	if l.duration == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		l.duration.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
