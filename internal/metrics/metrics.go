// Package metrics exposes Prometheus collectors for catalog operations and
// HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the service layer and the HTTP middleware depend on.
type Recorder interface {
	RecordOperation(op, outcome string, duration time.Duration)
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
	RecordEventPublishFailure(eventType string)
}

type Collector struct {
	operations       *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
	eventFailures    *prometheus.CounterVec
}

// NewCollector creates the collectors and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "elibrary_operations_total",
			Help: "Catalog and identity operations by outcome.",
		}, []string{"operation", "outcome"}),
		operationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "elibrary_operation_duration_seconds",
			Help:    "Latency of catalog and identity operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "elibrary_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "elibrary_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		eventFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "elibrary_event_publish_failures_total",
			Help: "Book lifecycle events that could not be published.",
		}, []string{"type"}),
	}

	reg.MustRegister(
		c.operations,
		c.operationLatency,
		c.httpRequests,
		c.httpLatency,
		c.eventFailures,
	)

	return c
}

func (c *Collector) RecordOperation(op, outcome string, duration time.Duration) {
	c.operations.WithLabelValues(op, outcome).Inc()
	c.operationLatency.WithLabelValues(op).Observe(duration.Seconds())
}

func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) RecordEventPublishFailure(eventType string) {
	c.eventFailures.WithLabelValues(eventType).Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything; handy in tests and when PROMETHEUS_ENABLED=false.
type Nop struct{}

func (Nop) RecordOperation(string, string, time.Duration)        {}
func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}
func (Nop) RecordEventPublishFailure(string)                     {}
