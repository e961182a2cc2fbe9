// Package metrics exposes the Prometheus instruments for the Chowdown
// server: HTTP traffic, upstream search behavior, and fallback servings.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "chowdown"

// Manager owns the service's metric instruments.
type Manager struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	upstreamCalls  *prometheus.CounterVec
	upstreamErrors *prometheus.CounterVec
	pagesFetched   prometheus.Counter
	fallbackServed prometheus.Counter
}

// New builds a Manager with its own registry.
func New(namespace string) *Manager {
	if namespace == "" {
		namespace = defaultNamespace
	}

	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Manager{
		registry: registry,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		}, []string{"endpoint", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		upstreamCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_search_calls_total",
			Help:      "Upstream search calls by provider.",
		}, []string{"provider"}),
		upstreamErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_search_errors_total",
			Help:      "Failed upstream search calls by provider.",
		}, []string{"provider"}),
		pagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_pages_fetched_total",
			Help:      "Continuation pages fetched from upstream search.",
		}),
		fallbackServed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_responses_total",
			Help:      "Responses served from the static fallback list.",
		}),
	}
}

// ObserveHTTP records one handled request.
func (m *Manager) ObserveHTTP(endpoint string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// UpstreamCall records one upstream search attempt.
func (m *Manager) UpstreamCall(provider string, err error) {
	m.upstreamCalls.WithLabelValues(provider).Inc()
	if err != nil {
		m.upstreamErrors.WithLabelValues(provider).Inc()
	}
}

// PageFetched records a continuation-page fetch.
func (m *Manager) PageFetched() {
	m.pagesFetched.Inc()
}

// FallbackServed records one response answered from the static list.
func (m *Manager) FallbackServed() {
	m.fallbackServed.Inc()
}

// Handler returns the scrape endpoint handler for this registry.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
