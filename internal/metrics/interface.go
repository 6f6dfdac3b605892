package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the subsystem from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncCacheHit()
	IncCacheMiss()
	IncLoadFailure()
	SetDirtyPlayers(count float64)
	SetCachedPlayers(count float64)
	IncFlushCycles()
	IncFlushFailures()
	AddRecordsFlushed(count float64)
	ObserveFlushDuration(seconds float64)
	SetStartupTime(seconds float64)
}
