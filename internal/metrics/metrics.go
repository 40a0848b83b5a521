package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "salesdesk"

// Provisioning outcomes.
const (
	OutcomeSuccess    = "success"
	OutcomeFailure    = "failure"
	OutcomeConfig     = "config_error"
	OutcomeRolledBack = "rolled_back"
)

// Metrics holds all Prometheus metrics for the API.
type Metrics struct {
	ProvisionTotal   *prometheus.CounterVec
	RollbacksTotal   prometheus.Counter
	TeamCacheHits    prometheus.Counter
	TeamCacheMisses  prometheus.Counter
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	EventSubscribers prometheus.Gauge
	RateLimitedTotal prometheus.Counter
}

// New registers the metrics with reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ProvisionTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provision",
			Name:      "attempts_total",
			Help:      "Total number of account provisioning attempts by variant and outcome.",
		}, []string{"variant", "outcome"}), // variant: restricted, privileged
		RollbacksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provision",
			Name:      "rollbacks_total",
			Help:      "Total number of identities deleted after a failed profile insert.",
		}),
		TeamCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "team_hits_total",
			Help:      "Total number of team listing cache hits.",
		}),
		TeamCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "team_misses_total",
			Help:      "Total number of team listing cache misses.",
		}),
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		EventSubscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "subscribers",
			Help:      "Number of connected event stream subscribers.",
		}),
		RateLimitedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the auth rate limiter.",
		}),
	}
}

func (m *Metrics) ObserveProvision(variant, outcome string) {
	m.ProvisionTotal.WithLabelValues(variant, outcome).Inc()
}
