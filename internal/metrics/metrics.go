// Package metrics holds the Prometheus collectors the service reports.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kindred"

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	decisions          *prometheus.CounterVec
	mutualMatches      prometheus.Counter
	poolRefreshes      prometheus.Counter
	poolSize           prometheus.Histogram
	remoteSyncFailures *prometheus.CounterVec
	profileRecoveries  *prometheus.CounterVec
	lockContention     *prometheus.CounterVec
}

// New registers every collector on a fresh registry, along with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matches",
			Name:      "decisions_total",
			Help:      "Match decisions recorded, by decision.",
		}, []string{"decision"}),
		mutualMatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matches",
			Name:      "mutual_total",
			Help:      "Mutual matches created.",
		}),
		poolRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "refreshes_total",
			Help:      "Pool refreshes that generated a new batch.",
		}),
		poolSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "active_size",
			Help:      "Active matches returned per dashboard load.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 10, 15, 20},
		}),
		remoteSyncFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "profile",
			Name:      "remote_sync_failures_total",
			Help:      "Swallowed remote store failures, by operation.",
		}, []string{"operation"}),
		profileRecoveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "profile",
			Name:      "recoveries_total",
			Help:      "Durable cache read recoveries, by outcome.",
		}, []string{"outcome"}),
		lockContention: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "profile",
			Name:      "lock_contention_total",
			Help:      "Operations rejected because a lock was held.",
		}, []string{"lock"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.decisions,
		m.mutualMatches,
		m.poolRefreshes,
		m.poolSize,
		m.remoteSyncFailures,
		m.profileRecoveries,
		m.lockContention,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) IncDecision(decision string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(decision).Inc()
}

func (m *Metrics) IncMutualMatch() {
	if m == nil {
		return
	}
	m.mutualMatches.Inc()
}

func (m *Metrics) IncPoolRefresh() {
	if m == nil {
		return
	}
	m.poolRefreshes.Inc()
}

func (m *Metrics) ObservePoolSize(n int) {
	if m == nil {
		return
	}
	m.poolSize.Observe(float64(n))
}

func (m *Metrics) IncRemoteSyncFailure(op string) {
	if m == nil {
		return
	}
	m.remoteSyncFailures.WithLabelValues(op).Inc()
}

func (m *Metrics) IncProfileRecovery(outcome string) {
	if m == nil {
		return
	}
	m.profileRecoveries.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncLockContention(lock string) {
	if m == nil {
		return
	}
	m.lockContention.WithLabelValues(lock).Inc()
}
