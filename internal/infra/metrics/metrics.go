package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bar"

// result label 值
const (
	ResultSuccess     = "success"
	ResultEmptyCart   = "empty_cart"
	ResultNoStock     = "insufficient_stock"
	ResultInvalid     = "invalid"
	ResultUnavailable = "unavailable"
	ResultError       = "error"
	ResultHit         = "hit"
	ResultMiss        = "miss"
	ResultRetry       = "retry"
)

// Metrics 所有方法對 nil receiver 安全, 測試可以不帶
type Metrics struct {
	checkoutTotal    *prometheus.CounterVec
	checkoutDuration prometheus.Histogram
	ticketTotal      *prometheus.CounterVec
	catalogCache     *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		checkoutTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Checkout attempts by result.",
		}, []string{"result"}),
		checkoutDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_duration_seconds",
			Help:      "Checkout latency including the database transaction.",
			Buckets:   prometheus.DefBuckets,
		}),
		ticketTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticket_generation_total",
			Help:      "Pickup ticket generation attempts by result.",
		}, []string{"result"}),
		catalogCache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_total",
			Help:      "Catalog cache lookups by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) ObserveCheckout(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.checkoutTotal.WithLabelValues(result).Inc()
	m.checkoutDuration.Observe(d.Seconds())
}

func (m *Metrics) IncTicket(result string) {
	if m == nil {
		return
	}
	m.ticketTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) IncCatalogCache(result string) {
	if m == nil {
		return
	}
	m.catalogCache.WithLabelValues(result).Inc()
}
