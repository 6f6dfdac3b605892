package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skystats_cache_hits_total",
			Help: "The total number of statistics cache hits.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skystats_cache_misses_total",
			Help: "The total number of statistics cache misses that went to the store.",
		}),
		LoadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skystats_load_failures_total",
			Help: "The total number of record loads that failed or timed out.",
		}),
		DirtyPlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "skystats_dirty_players",
			Help: "The number of cached players with unflushed mutations.",
		}),
		CachedPlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "skystats_cached_players",
			Help: "The number of player records currently held in the cache.",
		}),
		FlushCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skystats_flush_cycles_total",
			Help: "The total number of flush cycles executed.",
		}),
		FlushFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skystats_flush_failures_total",
			Help: "The total number of records that failed to persist during a flush.",
		}),
		RecordsFlushed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skystats_records_flushed_total",
			Help: "The total number of records successfully persisted by flushes.",
		}),
		FlushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "skystats_flush_duration_seconds",
			Help:    "The duration of individual flush cycles.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "skystats_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.CacheHits,
		s.CacheMisses,
		s.LoadFailures,
		s.DirtyPlayers,
		s.CachedPlayers,
		s.FlushCycles,
		s.FlushFailures,
		s.RecordsFlushed,
		s.FlushDuration,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncCacheHit() {
	s.CacheHits.Inc()
}

func (s *Service) IncCacheMiss() {
	s.CacheMisses.Inc()
}

func (s *Service) IncLoadFailure() {
	s.LoadFailures.Inc()
}

func (s *Service) SetDirtyPlayers(count float64) {
	s.DirtyPlayers.Set(count)
}

func (s *Service) SetCachedPlayers(count float64) {
	s.CachedPlayers.Set(count)
}

func (s *Service) IncFlushCycles() {
	s.FlushCycles.Inc()
}

func (s *Service) IncFlushFailures() {
	s.FlushFailures.Inc()
}

func (s *Service) AddRecordsFlushed(count float64) {
	s.RecordsFlushed.Add(count)
}

func (s *Service) ObserveFlushDuration(seconds float64) {
	s.FlushDuration.Observe(seconds)
}

func (s *Service) SetStartupTime(seconds float64) {
	s.StartupTimeSeconds.Set(seconds)
}
