// Package metrics exposes Prometheus instrumentation for the discovery
// engine and router. All metrics hang off a Collector with its own
// registry so tests can assert on values without global state.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the metric vectors and their backing registry.
type Collector struct {
	registry *prometheus.Registry

	probesTotal      *prometheus.CounterVec
	probeLatency     *prometheus.HistogramVec
	registryEntries  *prometheus.GaugeVec
	discoveriesTotal *prometheus.CounterVec
	routesTotal      *prometheus.CounterVec
	fallbacksTotal   prometheus.Counter
}

// NewCollector builds a collector with all vectors registered under
// the given namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		probesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Provider probes by provider type and outcome.",
		}, []string{"provider", "status"}),
		probeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_latency_seconds",
			Help:      "Probe round-trip latency by provider type.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"provider"}),
		registryEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registry_entries",
			Help:      "Registry entries in the current snapshot by status.",
		}, []string{"status"}),
		discoveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discoveries_total",
			Help:      "Discovery cycles by trigger.",
		}, []string{"trigger"}),
		routesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_requests_total",
			Help:      "Analysis dispatches by provider type and outcome.",
		}, []string{"provider", "outcome"}),
		fallbacksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Fallback dispatch attempts after a rate-limited primary.",
		}),
	}

	registry.MustRegister(
		c.probesTotal,
		c.probeLatency,
		c.registryEntries,
		c.discoveriesTotal,
		c.routesTotal,
		c.fallbacksTotal,
	)
	return c
}

// ObserveProbe records one probe outcome and its latency.
func (c *Collector) ObserveProbe(provider, status string, latencyMs int64) {
	c.probesTotal.WithLabelValues(provider, status).Inc()
	c.probeLatency.WithLabelValues(provider).Observe(float64(latencyMs) / 1000)
}

// SetRegistryEntries replaces the per-status entry gauges with the
// counts from a fresh snapshot. Statuses absent from counts are reset
// so stale series do not linger after a rescan.
func (c *Collector) SetRegistryEntries(counts map[string]int) {
	c.registryEntries.Reset()
	for status, n := range counts {
		c.registryEntries.WithLabelValues(status).Set(float64(n))
	}
}

// RecordDiscovery counts one discovery cycle by its trigger
// ("startup", "ttl", "forced", "schedule", "config").
func (c *Collector) RecordDiscovery(trigger string) {
	c.discoveriesTotal.WithLabelValues(trigger).Inc()
}

// RecordRoute counts one analysis dispatch by outcome
// ("ok", "rate_limited", "error").
func (c *Collector) RecordRoute(provider, outcome string) {
	c.routesTotal.WithLabelValues(provider, outcome).Inc()
}

// RecordFallback counts one fallback attempt.
func (c *Collector) RecordFallback() {
	c.fallbacksTotal.Inc()
}

// Handler serves the collector's registry in Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
