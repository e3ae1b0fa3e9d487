package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Rejected      *prometheus.CounterVec
	StoreErrors   prometheus.Counter
	FallbackState prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regionx_ratelimit_rejected_total",
			Help: "Requests refused with 429, by endpoint class",
		}, []string{"class"}),
		StoreErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "regionx_ratelimit_store_errors_total",
			Help: "Failed checks against the primary bucket store",
		}),
		FallbackState: f.NewGauge(prometheus.GaugeOpts{
			Name: "regionx_ratelimit_fallback_active",
			Help: "1 while limits are enforced from the in-process fallback",
		}),
	}
}

func (m *Metrics) IncRejected(class string) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(class).Inc()
}

func (m *Metrics) IncStoreErrors() {
	if m == nil {
		return
	}
	m.StoreErrors.Inc()
}

func (m *Metrics) SetFallback(active bool) {
	if m == nil {
		return
	}
	if active {
		m.FallbackState.Set(1)
		return
	}
	m.FallbackState.Set(0)
}
