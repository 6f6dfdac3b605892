// Package flush drives the periodic write-back of dirty statistics.
package flush

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"

	"github.com/nordkyn/skystats/internal/cache"
	"github.com/nordkyn/skystats/internal/metrics"
)

// DefaultInterval is the flush cadence when none is configured. It bounds the
// data-loss window on an ungraceful shutdown.
const DefaultInterval = 30 * time.Second

// Scheduler periodically flushes the statistics cache. Singleton mode with
// LimitModeReschedule means a tick that fires while a flush is still running
// is skipped, not queued, so a slow store never builds a backlog.
type Scheduler struct {
	cache    cache.StatsCache
	metrics  metrics.Metrics
	interval time.Duration
	sched    gocron.Scheduler
}

// New creates a stopped scheduler; call Start to begin flushing.
func New(statsCache cache.StatsCache, metricsSvc metrics.Metrics, interval time.Duration) (*Scheduler, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("flush: create scheduler: %w", err)
	}

	s := &Scheduler{
		cache:    statsCache,
		metrics:  metricsSvc,
		interval: interval,
		sched:    sched,
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.runCycle),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("flush: register flush job: %w", err)
	}
	return s, nil
}

// Start begins the periodic flush loop.
func (s *Scheduler) Start() {
	s.sched.Start()
	log.Info("Flush scheduler started", "interval", s.interval)
}

// runCycle executes one flush. The whole batch gets twice the interval to
// complete before the context gives up on it.
func (s *Scheduler) runCycle() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*s.interval)
	defer cancel()

	start := time.Now()
	outcome := s.cache.FlushAll(ctx)
	elapsed := time.Since(start)

	s.metrics.IncFlushCycles()
	s.metrics.ObserveFlushDuration(elapsed.Seconds())

	if outcome.Attempted == 0 {
		log.Debug("Flush cycle found nothing dirty")
		return
	}
	if outcome.OK() {
		log.Info("Flush cycle completed", "flushed", outcome.Flushed, "duration_ms", elapsed.Milliseconds())
	} else {
		log.Error("Flush cycle completed with failures",
			"flushed", outcome.Flushed, "failed", len(outcome.Failed), "duration_ms", elapsed.Milliseconds())
	}
}

// Stop halts the periodic loop and runs one final synchronous flush so a
// graceful shutdown loses nothing.
func (s *Scheduler) Stop(ctx context.Context) error {
	if err := s.sched.Shutdown(); err != nil {
		log.Error("Failed to shut down flush scheduler", "error", err)
	}

	outcome := s.cache.FlushAll(ctx)
	s.metrics.IncFlushCycles()
	if !outcome.OK() {
		return fmt.Errorf("flush: final flush left %d records unpersisted", len(outcome.Failed))
	}
	log.Info("Final flush completed", "flushed", outcome.Flushed)
	return nil
}
