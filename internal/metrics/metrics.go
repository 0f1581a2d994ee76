// Package metrics holds the service's Prometheus collectors. A nil *Metrics
// is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JaimeStill/marlin/internal/stage"
)

const namespace = "marlin"

// Metrics records request, stage failure, and stage latency series.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates Metrics on a private registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests received per operation.",
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Failed requests by operation, pipeline stage, and failure kind.",
		}, []string{"operation", "stage", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Latency of external pipeline stages.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
	}

	m.registry.MustRegister(
		m.requests,
		m.failures,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Request counts one request for operation.
func (m *Metrics) Request(operation string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(operation).Inc()
}

// Failure counts a failed request, labelled by the stage and kind carried in err.
func (m *Metrics) Failure(operation string, err error) {
	if m == nil || err == nil {
		return
	}
	name := "unknown"
	if se, ok := stage.From(err); ok {
		name = string(se.Stage)
	}
	m.failures.WithLabelValues(operation, name, stage.KindName(err)).Inc()
}

// Observe records how long a stage took.
func (m *Metrics) Observe(name stage.Name, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(string(name)).Observe(d.Seconds())
}

// Time starts a stage timer; call the returned func when the stage ends.
func (m *Metrics) Time(name stage.Name) func() {
	start := time.Now()
	return func() {
		m.Observe(name, time.Since(start))
	}
}
