package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Listings       prometheus.Counter
	Unlistings     prometheus.Counter
	Purchases      prometheus.Counter
	PurchaseVolume prometheus.Counter
	ActiveListings prometheus.Gauge
	PurchasePrice  prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Listings: f.NewCounter(prometheus.CounterOpts{
			Name: "regionx_market_listings_total",
			Help: "Regions put up for sale",
		}),
		Unlistings: f.NewCounter(prometheus.CounterOpts{
			Name: "regionx_market_unlistings_total",
			Help: "Listings withdrawn without a sale",
		}),
		Purchases: f.NewCounter(prometheus.CounterOpts{
			Name: "regionx_market_purchases_total",
			Help: "Regions sold on the market",
		}),
		PurchaseVolume: f.NewCounter(prometheus.CounterOpts{
			Name: "regionx_market_purchase_volume_total",
			Help: "Sum of prices paid for purchased regions",
		}),
		ActiveListings: f.NewGauge(prometheus.GaugeOpts{
			Name: "regionx_market_active_listings",
			Help: "Listings currently open",
		}),
		PurchasePrice: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "regionx_market_purchase_price",
			Help:    "Distribution of region purchase prices",
			Buckets: prometheus.ExponentialBuckets(1, 10, 12),
		}),
	}
}

func (m *Metrics) IncrementListed() {
	if m == nil {
		return
	}
	m.Listings.Inc()
	m.ActiveListings.Inc()
}

func (m *Metrics) IncrementUnlisted() {
	if m == nil {
		return
	}
	m.Unlistings.Inc()
	m.ActiveListings.Dec()
}

func (m *Metrics) ObservePurchase(price uint64) {
	if m == nil {
		return
	}
	m.Purchases.Inc()
	m.ActiveListings.Dec()
	m.PurchaseVolume.Add(float64(price))
	m.PurchasePrice.Observe(float64(price))
}

// SetActive resets the open-listing gauge, used on startup.
func (m *Metrics) SetActive(n int) {
	if m == nil {
		return
	}
	m.ActiveListings.Set(float64(n))
}
