package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	cacheRequests    *prometheus.CounterVec
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	notifications    *prometheus.CounterVec
}

// New creates the registry with Go runtime and process collectors attached
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weatherpulse",
			Name:      "cache_requests_total",
			Help:      "Cache lookups by domain and result.",
		}, []string{"domain", "result"}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weatherpulse",
			Name:      "upstream_requests_total",
			Help:      "Upstream API calls by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weatherpulse",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream API latency.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 8),
		}, []string{"endpoint"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weatherpulse",
			Name:      "alert_notifications_total",
			Help:      "Alert subscription outcomes per dispatch run.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.cacheRequests, m.upstreamRequests, m.upstreamDuration, m.notifications)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// CacheResult counts a cache lookup for domain
func (m *Metrics) CacheResult(domain string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheRequests.WithLabelValues(domain, result).Inc()
}

// ObserveUpstream records one upstream call
func (m *Metrics) ObserveUpstream(endpoint string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	m.upstreamDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// Notification counts a dispatch outcome: sent, skipped or failed
func (m *Metrics) Notification(outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome).Inc()
}
