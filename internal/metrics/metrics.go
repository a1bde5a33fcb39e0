// Package metrics collects Prometheus metrics for the server and the
// remote client.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records zbirka metrics. A nil *Collector records nothing, so
// callers never need to check whether metrics are enabled.
type Collector struct {
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	mutations     *prometheus.CounterVec
	clientRetries *prometheus.CounterVec
	rateLimited   *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zbirka_http_requests_total",
			Help: "HTTP requests served, by route and status code.",
		}, []string{"route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zbirka_http_request_duration_seconds",
			Help:    "HTTP request latency, by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zbirka_item_mutations_total",
			Help: "Item mutations, by operation.",
		}, []string{"op"}),
		clientRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zbirka_client_retries_total",
			Help: "Remote client retries after a recoverable error, by operation.",
		}, []string{"op"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zbirka_rate_limited_total",
			Help: "Requests rejected by a rate limiter, by limiter.",
		}, []string{"limiter"}),
	}

	reg.MustRegister(c.requests, c.latency, c.mutations, c.clientRetries, c.rateLimited)
	return c
}

// RecordRequest records one served request. route is the matched mux
// pattern, not the raw path, to keep label cardinality bounded.
func (c *Collector) RecordRequest(route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	c.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(route).Observe(d.Seconds())
}

// RecordMutation records a successful create, update, delete, restore or
// photo upload.
func (c *Collector) RecordMutation(op string) {
	if c == nil {
		return
	}
	c.mutations.WithLabelValues(op).Inc()
}

// RecordClientRetry records a retried remote call.
func (c *Collector) RecordClientRetry(op string) {
	if c == nil {
		return
	}
	c.clientRetries.WithLabelValues(op).Inc()
}

// RecordRateLimited records a request rejected by the named limiter.
func (c *Collector) RecordRateLimited(limiter string) {
	if c == nil {
		return
	}
	c.rateLimited.WithLabelValues(limiter).Inc()
}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
