// Package metrics provides Prometheus metrics for the project backend.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so independent servers (and tests) never
// collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	// CallsTotal counts dispatched calls.
	// Labels: surface (rpc, mcp), method, outcome (ok, not_found, validation_failed, ...)
	CallsTotal *prometheus.CounterVec

	// CallDuration tracks how long dispatched calls take.
	CallDuration *prometheus.HistogramVec
}

// New creates the metric set and registers Go runtime collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		CallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "projector",
				Subsystem: "backend",
				Name:      "calls_total",
				Help:      "Total number of project operations handled",
			},
			[]string{"surface", "method", "outcome"},
		),
		CallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "projector",
				Subsystem: "backend",
				Name:      "call_duration_seconds",
				Help:      "Duration of project operations in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"surface", "method"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ForSurface returns an observer that labels calls with the given surface.
func (m *Metrics) ForSurface(surface string) *Observer {
	return &Observer{metrics: m, surface: surface}
}

// Observer records call outcomes for one surface.
type Observer struct {
	metrics *Metrics
	surface string
}

// ObserveCall records one finished call.
func (o *Observer) ObserveCall(method, outcome string, elapsed time.Duration) {
	o.metrics.CallsTotal.WithLabelValues(o.surface, method, outcome).Inc()
	o.metrics.CallDuration.WithLabelValues(o.surface, method).Observe(elapsed.Seconds())
}
