// Package metrics exposes dispatcher Prometheus collectors.
//
// All methods are safe on a nil *Metrics, so instrumentation can be left
// unconfigured without guarding every call site.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one dispatcher.
type Metrics struct {
	registry    *prometheus.Registry
	inFlight    prometheus.Gauge
	dispatches  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	forwards    *prometheus.CounterVec
	filterSkips *prometheus.CounterVec
}

// New creates collectors under namespace on a fresh registry, together with
// the Go runtime and process collectors.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "inflight_requests",
			Help:      "Requests currently being dispatched.",
		}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "requests_total",
			Help:      "Dispatched requests by entry module, action and status.",
		}, []string{"module", "action", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "request_duration_seconds",
			Help:      "Time from route resolution to flush.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		}, []string{"module"}),
		forwards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "forwards_total",
			Help:      "Internal forwards by destination module and action.",
		}, []string{"module", "action"}),
		filterSkips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "filter",
			Name:      "skipped_total",
			Help:      "Filters skipped because the current package is out of scope.",
		}, []string{"filter"}),
	}

	m.registry.MustRegister(
		m.inFlight,
		m.dispatches,
		m.duration,
		m.forwards,
		m.filterSkips,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
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
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Begin marks a request in flight and returns the function that ends it.
func (m *Metrics) Begin() func() {
	if m == nil {
		return func() {}
	}
	m.inFlight.Inc()
	return m.inFlight.Dec
}

// ObserveDispatch records a finished request.
func (m *Metrics) ObserveDispatch(module, action string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(module, action, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(module).Observe(elapsed.Seconds())
}

// Forward records an internal forward.
func (m *Metrics) Forward(module, action string) {
	if m == nil {
		return
	}
	m.forwards.WithLabelValues(module, action).Inc()
}

// FilterSkipped records a filter skipped by package scope.
func (m *Metrics) FilterSkipped(id string) {
	if m == nil {
		return
	}
	m.filterSkips.WithLabelValues(id).Inc()
}
