package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the statistics subsystem.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	LoadFailures       prometheus.Counter
	DirtyPlayers       prometheus.Gauge
	CachedPlayers      prometheus.Gauge
	FlushCycles        prometheus.Counter
	FlushFailures      prometheus.Counter
	RecordsFlushed     prometheus.Counter
	FlushDuration      prometheus.Histogram
	StartupTimeSeconds prometheus.Gauge
}
