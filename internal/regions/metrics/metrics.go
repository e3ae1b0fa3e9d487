package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the region registry and its record
// synchronization.
type Metrics struct {
	RegionsMinted   prometheus.Counter
	RecordRequests  *prometheus.CounterVec
	RecordResponses *prometheus.CounterVec
	RecordTimeouts  prometheus.Counter
}

// New registers the registry metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RegionsMinted: f.NewCounter(prometheus.CounterOpts{
			Name: "regionx_regions_minted_total",
			Help: "Total number of regions minted into the registry",
		}),
		RecordRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regionx_region_record_requests_total",
			Help: "Region record GET requests by dispatch result",
		}, []string{"result"}),
		RecordResponses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regionx_region_record_responses_total",
			Help: "Region record responses by outcome",
		}, []string{"outcome"}),
		RecordTimeouts: f.NewCounter(prometheus.CounterOpts{
			Name: "regionx_region_record_timeouts_total",
			Help: "Region record requests that timed out",
		}),
	}
}

func (m *Metrics) IncrementMinted() {
	if m == nil {
		return
	}
	m.RegionsMinted.Inc()
}

// IncrementRecordRequest records a dispatch attempt; result is "ok" or "failed".
func (m *Metrics) IncrementRecordRequest(result string) {
	if m == nil {
		return
	}
	m.RecordRequests.WithLabelValues(result).Inc()
}

// IncrementRecordResponse records a response; outcome is "applied", "stale" or "rejected".
func (m *Metrics) IncrementRecordResponse(outcome string) {
	if m == nil {
		return
	}
	m.RecordResponses.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementRecordTimeout() {
	if m == nil {
		return
	}
	m.RecordTimeouts.Inc()
}
