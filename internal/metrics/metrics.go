// Package metrics exposes Prometheus counters for HTTP traffic and ledger
// activity. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	salesTotal       prometheus.Counter
	duesCreated      *prometheus.CounterVec
	paymentsApplied  *prometheus.CounterVec
	amountCollected  *prometheus.CounterVec
	paymentsRejected *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pos_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		salesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pos_sales_total",
			Help: "Sales committed.",
		}),
		duesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_dues_created_total",
			Help: "Dues raised, by origin type.",
		}, []string{"type"}),
		paymentsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_due_payments_total",
			Help: "Payments applied to dues, by origin type.",
		}, []string{"type"}),
		amountCollected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_due_collected_amount_total",
			Help: "Money applied to dues, by origin type.",
		}, []string{"type"}),
		paymentsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_due_payments_rejected_total",
			Help: "Payments refused by the reconciler, by reason.",
		}, []string{"reason"}),
	}
	registry.MustRegister(m.requestsTotal, m.requestDuration, m.salesTotal, m.duesCreated,
		m.paymentsApplied, m.amountCollected, m.paymentsRejected)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler serves /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records every request under its route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) SaleRecorded() {
	if m == nil {
		return
	}
	m.salesTotal.Inc()
}

func (m *Metrics) DueCreated(kind string) {
	if m == nil {
		return
	}
	m.duesCreated.WithLabelValues(kind).Inc()
}

func (m *Metrics) PaymentApplied(kind string, amount float64) {
	if m == nil {
		return
	}
	m.paymentsApplied.WithLabelValues(kind).Inc()
	m.amountCollected.WithLabelValues(kind).Add(amount)
}

func (m *Metrics) PaymentRejected(reason string) {
	if m == nil {
		return
	}
	m.paymentsRejected.WithLabelValues(reason).Inc()
}
