// Package metrics provides Prometheus metrics for the transitstats
// library. The library exposes no HTTP endpoint itself; callers scrape or
// push the Registry however they serve metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the instrumentation for feed loading and statistics
// computation. All observation methods are safe on a nil receiver, so
// computation code can take an optional *Metrics without guarding every
// call site.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance
	Registry *prometheus.Registry

	// Feed I/O metrics
	FeedLoadsTotal   *prometheus.CounterVec
	FeedLoadDuration prometheus.Histogram
	FeedFetchBytes   prometheus.Counter

	// Computation metrics
	ComputationsTotal   *prometheus.CounterVec
	ComputationDuration *prometheus.HistogramVec
}

// New creates and registers all metrics with a new registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	feedLoadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transitstats_feed_loads_total",
			Help: "Total number of feed load attempts",
		},
		[]string{"source", "status"},
	)

	feedLoadDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "transitstats_feed_load_duration_seconds",
		Help:    "Feed load and parse latency distribution",
		Buckets: prometheus.DefBuckets,
	})

	feedFetchBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "transitstats_feed_fetch_bytes_total",
		Help: "Total bytes downloaded from remote feeds",
	})

	computationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transitstats_computations_total",
			Help: "Total number of statistics computations by stage",
		},
		[]string{"stage"},
	)

	computationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transitstats_computation_duration_seconds",
			Help:    "Statistics computation latency distribution by stage",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// Register all metrics with the custom registry
	registry.MustRegister(
		feedLoadsTotal,
		feedLoadDuration,
		feedFetchBytes,
		computationsTotal,
		computationDuration,
	)

	return &Metrics{
		Registry:            registry,
		FeedLoadsTotal:      feedLoadsTotal,
		FeedLoadDuration:    feedLoadDuration,
		FeedFetchBytes:      feedFetchBytes,
		ComputationsTotal:   computationsTotal,
		ComputationDuration: computationDuration,
	}
}

// ObserveFeedLoad records one feed load attempt against its source kind
// ("file", "directory" or "http") and outcome.
func (m *Metrics) ObserveFeedLoad(source string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.FeedLoadsTotal.WithLabelValues(source, status).Inc()
	m.FeedLoadDuration.Observe(elapsed.Seconds())
}

// AddFetchBytes records bytes downloaded from a remote feed.
func (m *Metrics) AddFetchBytes(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.FeedFetchBytes.Add(float64(n))
}

// ObserveComputation records one computation of the named stage.
func (m *Metrics) ObserveComputation(stage string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ComputationsTotal.WithLabelValues(stage).Inc()
	m.ComputationDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}
