// Package metrics exposes Prometheus instruments for ledger computations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tripledger"

// Metrics holds the instruments recorded by the ledger service. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	summaries       *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	skippedExpenses prometheus.Counter
	settlementSize  prometheus.Histogram
	computeDuration prometheus.Histogram
	rpcRequests     *prometheus.CounterVec
	watchers        prometheus.Gauge
}

// New creates the instruments on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_total",
			Help:      "Trip summaries served, by source (computed or cached).",
		}, []string{"source"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_cache_lookups_total",
			Help:      "Summary cache lookups, by result (hit, miss or error).",
		}, []string{"result"}),
		skippedExpenses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_expenses_total",
			Help:      "Expenses ignored by the calculator because they had no payer or a non-positive amount.",
		}),
		settlementSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settlement_transactions",
			Help:      "Number of payments in each computed settlement plan.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
		computeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "summary_compute_seconds",
			Help:      "Time spent computing balances, settlements and stats for one trip.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		}),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC requests handled, by procedure and connect code.",
		}, []string{"procedure", "code"}),
		watchers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trip_watchers",
			Help:      "Open WatchTrip streams.",
		}),
	}

	reg.MustRegister(
		m.summaries,
		m.cacheLookups,
		m.skippedExpenses,
		m.settlementSize,
		m.computeDuration,
		m.rpcRequests,
		m.watchers,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// SummaryComputed records a freshly computed summary.
func (m *Metrics) SummaryComputed(d time.Duration, skipped, transactions int) {
	if m == nil {
		return
	}
	m.summaries.WithLabelValues("computed").Inc()
	m.computeDuration.Observe(d.Seconds())
	m.skippedExpenses.Add(float64(skipped))
	m.settlementSize.Observe(float64(transactions))
}

// SummaryCached records a summary served from the cache.
func (m *Metrics) SummaryCached() {
	if m == nil {
		return
	}
	m.summaries.WithLabelValues("cached").Inc()
}

// CacheLookup records the result of a cache lookup: "hit", "miss" or "error".
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// RPC records a handled RPC.
func (m *Metrics) RPC(procedure, code string) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
}

// WatcherAdded and WatcherRemoved track open watch streams.
func (m *Metrics) WatcherAdded() {
	if m == nil {
		return
	}
	m.watchers.Inc()
}

func (m *Metrics) WatcherRemoved() {
	if m == nil {
		return
	}
	m.watchers.Dec()
}
