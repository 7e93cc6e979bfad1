// Package metrics collects Prometheus metrics for the storage engine.
//
// The store has no network surface, so nothing here is exposed over HTTP;
// collectors are registered against a caller-supplied registerer and can be
// scraped or inspected by whatever embeds the store.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the collectors recorded by the storage engine.
type Metrics struct {
	SetsTotal        prometheus.Counter
	GetsTotal        prometheus.Counter
	GetMisses        prometheus.Counter
	RemovesTotal     prometheus.Counter
	CompactionsTotal prometheus.Counter

	CompactionDuration prometheus.Histogram
	LogSizeBytes       prometheus.Gauge
	LiveKeys           prometheus.Gauge
}

// New creates the engine collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SetsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kvlite_sets_total",
			Help: "Total set operations applied to the log",
		}),
		GetsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kvlite_gets_total",
			Help: "Total get operations that returned a value",
		}),
		GetMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kvlite_get_misses_total",
			Help: "Total get operations for keys that do not exist",
		}),
		RemovesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kvlite_removes_total",
			Help: "Total remove operations applied to the log",
		}),
		CompactionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kvlite_compactions_total",
			Help: "Total log compactions",
		}),
		CompactionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kvlite_compaction_duration_seconds",
			Help:    "Wall time spent rewriting the log",
			Buckets: prometheus.DefBuckets,
		}),
		LogSizeBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kvlite_log_size_bytes",
			Help: "Current size of the command log",
		}),
		LiveKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kvlite_live_keys",
			Help: "Number of live keys in the index after the last replay",
		}),
	}

	reg.MustRegister(
		m.SetsTotal,
		m.GetsTotal,
		m.GetMisses,
		m.RemovesTotal,
		m.CompactionsTotal,
		m.CompactionDuration,
		m.LogSizeBytes,
		m.LiveKeys,
	)
	return m
}
