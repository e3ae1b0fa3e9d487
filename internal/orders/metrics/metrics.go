package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	OrdersCreated        prometheus.Counter
	OrdersRemoved        prometheus.Counter
	Contributions        prometheus.Counter
	ContributedVolume    prometheus.Counter
	ContributionsRemoved prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		OrdersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "regionx_orders_created_total",
			Help: "Orders created",
		}),
		OrdersRemoved: f.NewCounter(prometheus.CounterOpts{
			Name: "regionx_orders_removed_total",
			Help: "Orders cancelled by the creator or after expiry",
		}),
		Contributions: f.NewCounter(prometheus.CounterOpts{
			Name: "regionx_order_contributions_total",
			Help: "Contributions made to orders",
		}),
		ContributedVolume: f.NewCounter(prometheus.CounterOpts{
			Name: "regionx_order_contributed_volume_total",
			Help: "Sum of amounts reserved for orders",
		}),
		ContributionsRemoved: f.NewCounter(prometheus.CounterOpts{
			Name: "regionx_order_contributions_removed_total",
			Help: "Contributions reclaimed from cancelled orders",
		}),
	}
}

func (m *Metrics) IncrementCreated() {
	if m == nil {
		return
	}
	m.OrdersCreated.Inc()
}

func (m *Metrics) IncrementRemoved() {
	if m == nil {
		return
	}
	m.OrdersRemoved.Inc()
}

func (m *Metrics) ObserveContribution(amount uint64) {
	if m == nil {
		return
	}
	m.Contributions.Inc()
	m.ContributedVolume.Add(float64(amount))
}

func (m *Metrics) IncrementContributionRemoved() {
	if m == nil {
		return
	}
	m.ContributionsRemoved.Inc()
}
