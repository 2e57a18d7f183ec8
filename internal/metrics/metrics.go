// Package metrics defines the Prometheus collectors used across the portfolio
// server. Collectors are registered on an injected registry so tests can use
// an isolated one.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portfolio"

// Metrics holds every collector the server exports.
type Metrics struct {
	// CacheRequests counts query cache lookups.
	// Labels: key, result (hit, miss, coalesced)
	CacheRequests *prometheus.CounterVec

	// CacheLoads counts loader executions by outcome.
	// Labels: key, status (resolved, rejected)
	CacheLoads *prometheus.CounterVec

	// CacheLoadDuration measures loader latency.
	// Labels: key
	CacheLoadDuration *prometheus.HistogramVec

	// RelaySends counts outbound email attempts.
	// Labels: kind (owner, confirmation), status (ok, error)
	RelaySends *prometheus.CounterVec

	// RelayRequests counts relay responses by HTTP status class.
	// Labels: outcome (success, partial, invalid, failed, limited)
	RelayRequests *prometheus.CounterVec

	// ContactSubmissions counts state machine terminal transitions.
	// Labels: status (succeeded, failed, rejected)
	ContactSubmissions *prometheus.CounterVec

	// PageViews counts tracked page views.
	// Labels: path
	PageViews *prometheus.CounterVec
}

// New creates and registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query_cache",
			Name:      "requests_total",
			Help:      "Query cache lookups by key and result.",
		}, []string{"key", "result"}),
		CacheLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query_cache",
			Name:      "loads_total",
			Help:      "Query cache loader executions by key and outcome.",
		}, []string{"key", "status"}),
		CacheLoadDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "query_cache",
			Name:      "load_duration_seconds",
			Help:      "Query cache loader latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"key"}),
		RelaySends: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "sends_total",
			Help:      "Outbound contact emails by kind and status.",
		}, []string{"kind", "status"}),
		RelayRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "requests_total",
			Help:      "Relay function invocations by outcome.",
		}, []string{"outcome"}),
		ContactSubmissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "contact",
			Name:      "submissions_total",
			Help:      "Contact form submissions by terminal status.",
		}, []string{"status"}),
		PageViews: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "site",
			Name:      "page_views_total",
			Help:      "Tracked page views by path.",
		}, []string{"path"}),
	}
}

// NewNop returns collectors registered on a throwaway registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
