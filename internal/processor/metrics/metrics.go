package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	OrdersFulfilled prometheus.Counter
	Assignments     *prometheus.CounterVec
	EscrowReleased  prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		OrdersFulfilled: f.NewCounter(prometheus.CounterOpts{
			Name: "regionx_orders_fulfilled_total",
			Help: "Orders fulfilled with a matching region",
		}),
		Assignments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regionx_region_assignments_total",
			Help: "Region assignment dispatch attempts by result",
		}, []string{"result"}),
		EscrowReleased: f.NewCounter(prometheus.CounterOpts{
			Name: "regionx_order_escrow_released_total",
			Help: "Contributions paid out to sellers on fulfillment",
		}),
	}
}

func (m *Metrics) ObserveFulfilled(paid uint64) {
	if m == nil {
		return
	}
	m.OrdersFulfilled.Inc()
	m.EscrowReleased.Add(float64(paid))
}

// IncrementAssignment records a dispatch; result is "sent" or "failed".
func (m *Metrics) IncrementAssignment(result string) {
	if m == nil {
		return
	}
	m.Assignments.WithLabelValues(result).Inc()
}
