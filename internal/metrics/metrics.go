package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

const (
	SubmitCreated  = "created"
	SubmitReplayed = "replayed"
	SubmitInvalid  = "invalid"
	SubmitFailed   = "failed"

	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"

	PublishOK     = "ok"
	PublishFailed = "failed"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	OrdersSubmitted *prometheus.CounterVec
	SubmitDuration  prometheus.Histogram
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	CacheRequests   *prometheus.CounterVec
	OutboxPublished *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OrdersSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_submitted_total",
			Help:      "Order submissions by result.",
		}, []string{"result"}),
		SubmitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_submit_duration_seconds",
			Help:      "Latency of order submission including validation.",
			Buckets:   prometheus.DefBuckets,
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"handler"}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_cache_requests_total",
			Help:      "Order cache lookups by result.",
		}, []string{"result"}),
		OutboxPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_published_total",
			Help:      "Outbox records handed to the broker by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.OrdersSubmitted,
		m.SubmitDuration,
		m.HTTPRequests,
		m.HTTPDuration,
		m.CacheRequests,
		m.OutboxPublished,
	)

	return m
}

func (m *Metrics) ObserveSubmit(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.OrdersSubmitted.WithLabelValues(result).Inc()
	m.SubmitDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveHTTP(handler string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(handler).Observe(elapsed.Seconds())
}

func (m *Metrics) CacheResult(result string) {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) OutboxResult(result string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.OutboxPublished.WithLabelValues(result).Add(float64(n))
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
