package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nordkyn/skystats/internal/gateway"
	"github.com/nordkyn/skystats/internal/metrics"
	"github.com/nordkyn/skystats/internal/stats"
)

// ErrUnavailable marks a load that failed or timed out before the store could
// say whether the player exists. Callers should retry rather than assume a
// new player; creating a fresh record here would clobber a returning player's
// history on the next flush.
var ErrUnavailable = errors.New("cache: store unavailable")

// New creates a StatsCache backed by the given gateway. A loadTimeout of 0
// uses DefaultLoadTimeout.
func New(gw gateway.StatsGateway, metricsSvc metrics.Metrics, loadTimeout time.Duration) StatsCache {
	if loadTimeout <= 0 {
		loadTimeout = DefaultLoadTimeout
	}
	return &cache{
		gw:          gw,
		metrics:     metricsSvc,
		loadTimeout: loadTimeout,
		entries:     make(map[uuid.UUID]*entry),
		dirty:       newDirtySet(),
	}
}

func (c *cache) lookup(playerID uuid.UUID) (*entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[playerID]
	return e, ok
}

func (c *cache) GetOrLoad(ctx context.Context, playerID uuid.UUID, name string) (*stats.StatRecord, error) {
	if e, ok := c.lookup(playerID); ok {
		c.metrics.IncCacheHit()
		c.refreshName(playerID, e, name)
		return e.snapshot(), nil
	}

	c.metrics.IncCacheMiss()

	// Collapse concurrent misses for the same player into a single
	// load-or-create; everyone observes the winner's result.
	v, err, _ := c.group.Do(playerID.String(), func() (any, error) {
		if e, ok := c.lookup(playerID); ok {
			return e, nil
		}

		loadCtx, cancel := context.WithTimeout(ctx, c.loadTimeout)
		defer cancel()

		rec, found, err := c.gw.Load(loadCtx, playerID)
		if err != nil {
			c.metrics.IncLoadFailure()
			log.Error("Failed to load player record", "error", err, "playerID", playerID)
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		fresh, renamed := false, false
		if !found {
			rec = stats.NewRecord(playerID, name)
			fresh = true
			log.Debug("Created fresh record for new player", "playerID", playerID, "name", name)
		} else if name != "" && rec.Name != name {
			rec.Name = name
			renamed = true
		}

		e := &entry{rec: rec}
		c.mu.Lock()
		c.entries[playerID] = e
		size := len(c.entries)
		c.mu.Unlock()
		c.metrics.SetCachedPlayers(float64(size))

		// A brand-new or renamed record has state the store has not seen.
		if fresh || renamed {
			c.dirty.Mark(playerID)
			c.metrics.SetDirtyPlayers(float64(c.dirty.Len()))
		}
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*entry).snapshot(), nil
}

// refreshName picks up display-name changes for players already cached.
func (c *cache) refreshName(playerID uuid.UUID, e *entry, name string) {
	if name == "" {
		return
	}
	changed := false
	e.locked(func(rec *stats.StatRecord) {
		if rec.Name != name {
			rec.Name = name
			changed = true
		}
	})
	if changed {
		c.dirty.Mark(playerID)
		c.metrics.SetDirtyPlayers(float64(c.dirty.Len()))
	}
}

func (c *cache) Peek(playerID uuid.UUID) (*stats.StatRecord, bool) {
	e, ok := c.lookup(playerID)
	if !ok {
		return nil, false
	}
	return e.snapshot(), true
}

// mutate applies fn to a cached record and marks it dirty. Uncached players
// are a caller error: logged, never thrown.
func (c *cache) mutate(playerID uuid.UUID, op string, fn func(rec *stats.StatRecord)) {
	e, ok := c.lookup(playerID)
	if !ok {
		log.Warn("Mutation for player not in cache ignored", "op", op, "playerID", playerID)
		return
	}
	e.locked(fn)
	c.dirty.Mark(playerID)
	c.metrics.SetDirtyPlayers(float64(c.dirty.Len()))
}

func (c *cache) ApplyGameResult(playerID uuid.UUID, res stats.GameResult) {
	c.mutate(playerID, "applyGameResult", func(rec *stats.StatRecord) {
		rec.ApplyGameResult(res)
	})
}

func (c *cache) RecordKill(playerID uuid.UUID) {
	c.mutate(playerID, "recordKill", func(rec *stats.StatRecord) {
		rec.AddKill()
	})
}

func (c *cache) RecordDeath(playerID uuid.UUID) {
	c.mutate(playerID, "recordDeath", func(rec *stats.StatRecord) {
		rec.AddDeath()
	})
}

func (c *cache) RecordDamageDealt(playerID uuid.UUID, amount float64) {
	c.mutate(playerID, "recordDamageDealt", func(rec *stats.StatRecord) {
		rec.AddDamageDealt(amount)
	})
}

func (c *cache) RecordDamageTaken(playerID uuid.UUID, amount float64) {
	c.mutate(playerID, "recordDamageTaken", func(rec *stats.StatRecord) {
		rec.AddDamageTaken(amount)
	})
}

func (c *cache) RecordChestOpened(playerID uuid.UUID) {
	c.mutate(playerID, "recordChestOpened", func(rec *stats.StatRecord) {
		rec.AddChestOpened()
	})
}

func (c *cache) FlushOne(ctx context.Context, playerID uuid.UUID) error {
	e, ok := c.lookup(playerID)
	if !ok {
		return nil
	}
	mark, wasDirty := c.dirty.Get(playerID)
	snapshot := e.snapshot()

	if err := c.gw.Upsert(ctx, snapshot); err != nil {
		c.metrics.IncFlushFailures()
		return fmt.Errorf("cache: flush player %s: %w", playerID, err)
	}
	if wasDirty {
		c.dirty.ClearIf(playerID, mark)
		c.metrics.SetDirtyPlayers(float64(c.dirty.Len()))
	}
	c.metrics.AddRecordsFlushed(1)
	return nil
}

// FlushAll snapshots every dirty record and batch-upserts them. Mutations
// arriving while the batch is in flight re-mark their record dirty and are
// picked up by the next cycle; they are never lost and never double-cleared.
func (c *cache) FlushAll(ctx context.Context) FlushOutcome {
	marks := c.dirty.Snapshot()
	outcome := FlushOutcome{Failed: make(map[uuid.UUID]error)}
	if len(marks) == 0 {
		return outcome
	}

	recs := make([]*stats.StatRecord, 0, len(marks))
	for id := range marks {
		e, ok := c.lookup(id)
		if !ok {
			// Evicted between mark and flush; eviction already persisted it.
			c.dirty.ClearIf(id, marks[id])
			continue
		}
		recs = append(recs, e.snapshot())
	}
	outcome.Attempted = len(recs)

	result := c.gw.BatchUpsert(ctx, recs)
	for _, id := range result.Succeeded {
		c.dirty.ClearIf(id, marks[id])
	}
	for id, err := range result.Failed {
		outcome.Failed[id] = err
	}
	outcome.Flushed = len(result.Succeeded)

	c.metrics.AddRecordsFlushed(float64(outcome.Flushed))
	if !outcome.OK() {
		c.metrics.IncFlushFailures()
		log.Error("Flush cycle left records dirty", "failed", len(outcome.Failed), "flushed", outcome.Flushed)
	}
	c.metrics.SetDirtyPlayers(float64(c.dirty.Len()))
	return outcome
}

func (c *cache) Evict(ctx context.Context, playerID uuid.UUID) error {
	if _, dirty := c.dirty.Get(playerID); dirty {
		if err := c.FlushOne(ctx, playerID); err != nil {
			// Keep the record cached; evicting now would drop the pending
			// mutations on the floor.
			return fmt.Errorf("cache: evict %s: %w", playerID, err)
		}
	}
	c.mu.Lock()
	delete(c.entries, playerID)
	size := len(c.entries)
	c.mu.Unlock()
	c.dirty.Remove(playerID)
	c.metrics.SetCachedPlayers(float64(size))
	return nil
}

func (c *cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *cache) DirtyCount() int {
	return c.dirty.Len()
}

func (c *cache) Shutdown(ctx context.Context) error {
	outcome := c.FlushAll(ctx)
	if !outcome.OK() {
		return fmt.Errorf("cache: shutdown flush left %d records unpersisted", len(outcome.Failed))
	}
	log.Info("Statistics cache shut down", "flushed", outcome.Flushed)
	return nil
}
