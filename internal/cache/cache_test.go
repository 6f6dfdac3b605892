package cache_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordkyn/skystats/internal/cache"
	"github.com/nordkyn/skystats/internal/gateway"
	"github.com/nordkyn/skystats/internal/metrics"
	"github.com/nordkyn/skystats/internal/stats"
)

func setupCache(t *testing.T) (cache.StatsCache, *gateway.MockGateway) {
	t.Helper()
	gw := gateway.NewMock()
	c := cache.New(gw, metrics.NewMock(), time.Second)
	return c, gw
}

func TestGetOrLoadNewPlayer(t *testing.T) {
	c, gw := setupCache(t)
	ctx := context.Background()
	id := uuid.New()

	before := time.Now().UTC()
	rec, err := c.GetOrLoad(ctx, id, "Alice")
	require.NoError(t, err)

	assert.Equal(t, id, rec.PlayerID)
	assert.Equal(t, "Alice", rec.Name)
	assert.Zero(t, rec.Wins)
	assert.Zero(t, rec.GamesPlayed)
	assert.Equal(t, 0, rec.DisplayBestPlacement())
	assert.False(t, rec.FirstSeen.Before(before.Add(-time.Second)))
	assert.Len(t, gw.LoadCalls, 1)

	// A brand-new record is dirty until persisted.
	assert.Equal(t, 1, c.DirtyCount())
}

func TestGetOrLoadExistingPlayer(t *testing.T) {
	c, gw := setupCache(t)
	ctx := context.Background()
	id := uuid.New()

	stored := stats.NewRecord(id, "Alice")
	stored.Wins = 12
	gw.LoadFunc = func(ctx context.Context, playerID uuid.UUID) (*stats.StatRecord, bool, error) {
		return stored.Clone(), true, nil
	}

	rec, err := c.GetOrLoad(ctx, id, "Alice")
	require.NoError(t, err)
	assert.Equal(t, 12, rec.Wins)
	// Loaded unchanged, so nothing to flush.
	assert.Equal(t, 0, c.DirtyCount())

	// Second call hits the cache.
	_, err = c.GetOrLoad(ctx, id, "Alice")
	require.NoError(t, err)
	assert.Len(t, gw.LoadCalls, 1)
}

func TestGetOrLoadUpdatesDisplayName(t *testing.T) {
	c, gw := setupCache(t)
	ctx := context.Background()
	id := uuid.New()

	stored := stats.NewRecord(id, "OldName")
	gw.LoadFunc = func(ctx context.Context, playerID uuid.UUID) (*stats.StatRecord, bool, error) {
		return stored.Clone(), true, nil
	}

	rec, err := c.GetOrLoad(ctx, id, "NewName")
	require.NoError(t, err)
	assert.Equal(t, "NewName", rec.Name)
	assert.Equal(t, 1, c.DirtyCount())
}

func TestGetOrLoadUnavailable(t *testing.T) {
	c, gw := setupCache(t)
	ctx := context.Background()
	id := uuid.New()

	gw.LoadFunc = func(ctx context.Context, playerID uuid.UUID) (*stats.StatRecord, bool, error) {
		return nil, false, errors.New("connection refused")
	}

	rec, err := c.GetOrLoad(ctx, id, "Alice")
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, cache.ErrUnavailable)

	// The failed load must not have created a blank record.
	_, ok := c.Peek(id)
	assert.False(t, ok)
}

func TestGetOrLoadConcurrentSingleLoad(t *testing.T) {
	c, gw := setupCache(t)
	ctx := context.Background()
	id := uuid.New()

	release := make(chan struct{})
	gw.LoadFunc = func(ctx context.Context, playerID uuid.UUID) (*stats.StatRecord, bool, error) {
		<-release
		return nil, false, nil
	}

	const callers = 16
	var wg sync.WaitGroup
	results := make([]*stats.StatRecord, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, err := c.GetOrLoad(ctx, id, "Alice")
			require.NoError(t, err)
			results[i] = rec
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	// All callers observed the single winner's record.
	assert.Len(t, gw.LoadCalls, 1)
	for _, rec := range results {
		assert.Equal(t, id, rec.PlayerID)
		assert.Equal(t, results[0].FirstSeen, rec.FirstSeen)
	}
	assert.Equal(t, 1, c.Size())
}

func TestMutatorOnUncachedPlayerIsNoop(t *testing.T) {
	c, gw := setupCache(t)

	c.RecordKill(uuid.New())
	c.ApplyGameResult(uuid.New(), stats.GameResult{Placement: 1})

	assert.Equal(t, 0, c.Size())
	assert.Equal(t, 0, c.DirtyCount())
	assert.Empty(t, gw.UpsertCalls)
}

func TestConcurrentKillsNoLostUpdates(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := c.GetOrLoad(ctx, id, "Alice")
	require.NoError(t, err)

	const kills = 200
	var wg sync.WaitGroup
	for i := 0; i < kills; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordKill(id)
		}()
	}
	wg.Wait()

	rec, ok := c.Peek(id)
	require.True(t, ok)
	assert.Equal(t, kills, rec.Kills)
}

func TestApplyGameResult(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := c.GetOrLoad(ctx, id, "Alice")
	require.NoError(t, err)

	c.ApplyGameResult(id, stats.GameResult{
		Placement: 1,
		Kills:     3,
		Duration:  4 * time.Minute,
	})

	rec, ok := c.Peek(id)
	require.True(t, ok)
	assert.Equal(t, 1, rec.Wins)
	assert.Equal(t, 3, rec.Kills)
	assert.Equal(t, 1, rec.CurrentWinStreak)
	assert.Equal(t, int64(240), rec.TimePlayedSeconds)
}

func TestFlushAllClearsDirty(t *testing.T) {
	c, gw := setupCache(t)
	ctx := context.Background()

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, id := range ids {
		_, err := c.GetOrLoad(ctx, id, "P")
		require.NoError(t, err)
		c.RecordKill(id)
	}
	require.Equal(t, 3, c.DirtyCount())

	outcome := c.FlushAll(ctx)
	assert.True(t, outcome.OK())
	assert.Equal(t, 3, outcome.Flushed)
	assert.Equal(t, 0, c.DirtyCount())
	require.Len(t, gw.BatchUpsertCalls, 1)
}

func TestFlushAllFailedRecordsStayDirty(t *testing.T) {
	c, gw := setupCache(t)
	ctx := context.Background()

	good, bad := uuid.New(), uuid.New()
	for _, id := range []uuid.UUID{good, bad} {
		_, err := c.GetOrLoad(ctx, id, "P")
		require.NoError(t, err)
		c.RecordKill(id)
	}

	gw.BatchUpsertFunc = func(ctx context.Context, recs []*stats.StatRecord) gateway.BatchResult {
		result := gateway.BatchResult{Failed: make(map[uuid.UUID]error)}
		for _, rec := range recs {
			if rec.PlayerID == bad {
				result.Failed[rec.PlayerID] = errors.New("disk full")
				continue
			}
			result.Succeeded = append(result.Succeeded, rec.PlayerID)
		}
		return result
	}

	outcome := c.FlushAll(ctx)
	assert.False(t, outcome.OK())
	assert.Equal(t, 1, outcome.Flushed)
	assert.Contains(t, outcome.Failed, bad)

	// Only the failed identity remains dirty for the next cycle.
	assert.Equal(t, 1, c.DirtyCount())
}

func TestMutationDuringFlushStaysDirty(t *testing.T) {
	c, gw := setupCache(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := c.GetOrLoad(ctx, id, "Alice")
	require.NoError(t, err)
	c.RecordKill(id)

	entered := make(chan struct{})
	release := make(chan struct{})
	gw.BatchUpsertFunc = func(ctx context.Context, recs []*stats.StatRecord) gateway.BatchResult {
		close(entered)
		<-release
		result := gateway.BatchResult{Failed: make(map[uuid.UUID]error)}
		for _, rec := range recs {
			result.Succeeded = append(result.Succeeded, rec.PlayerID)
		}
		return result
	}

	done := make(chan cache.FlushOutcome, 1)
	go func() {
		done <- c.FlushAll(ctx)
	}()

	<-entered
	// Mutation lands while the batch write is in flight.
	c.RecordKill(id)
	close(release)
	outcome := <-done

	assert.True(t, outcome.OK())
	// The in-flight snapshot did not cover the new kill; it stays dirty.
	assert.Equal(t, 1, c.DirtyCount())

	rec, ok := c.Peek(id)
	require.True(t, ok)
	assert.Equal(t, 2, rec.Kills)
}

func TestFlushOne(t *testing.T) {
	c, gw := setupCache(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := c.GetOrLoad(ctx, id, "Alice")
	require.NoError(t, err)
	c.RecordKill(id)
	require.Equal(t, 1, c.DirtyCount())

	require.NoError(t, c.FlushOne(ctx, id))
	assert.Equal(t, 0, c.DirtyCount())
	require.Len(t, gw.UpsertCalls, 1)
	assert.Equal(t, 1, gw.UpsertCalls[0].Kills)
}

func TestFlushOneFailureKeepsDirty(t *testing.T) {
	c, gw := setupCache(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := c.GetOrLoad(ctx, id, "Alice")
	require.NoError(t, err)
	c.RecordKill(id)

	gw.UpsertFunc = func(ctx context.Context, rec *stats.StatRecord) error {
		return errors.New("timeout")
	}

	err = c.FlushOne(ctx, id)
	assert.Error(t, err)
	assert.Equal(t, 1, c.DirtyCount())

	rec, ok := c.Peek(id)
	require.True(t, ok)
	assert.Equal(t, 1, rec.Kills)
}

func TestEvictFlushesFirst(t *testing.T) {
	c, gw := setupCache(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := c.GetOrLoad(ctx, id, "Alice")
	require.NoError(t, err)
	c.RecordKill(id)

	require.NoError(t, c.Evict(ctx, id))

	// The last mutation was persisted before the record went away.
	require.Len(t, gw.UpsertCalls, 1)
	assert.Equal(t, 1, gw.UpsertCalls[0].Kills)

	_, ok := c.Peek(id)
	assert.False(t, ok)
	assert.Equal(t, 0, c.DirtyCount())
}

func TestEvictKeepsRecordOnFlushFailure(t *testing.T) {
	c, gw := setupCache(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := c.GetOrLoad(ctx, id, "Alice")
	require.NoError(t, err)
	c.RecordKill(id)

	gw.UpsertFunc = func(ctx context.Context, rec *stats.StatRecord) error {
		return errors.New("store down")
	}

	err = c.Evict(ctx, id)
	assert.Error(t, err)

	// Still cached, still dirty; nothing was lost.
	_, ok := c.Peek(id)
	assert.True(t, ok)
	assert.Equal(t, 1, c.DirtyCount())
}

func TestEvictCleanRecordSkipsFlush(t *testing.T) {
	c, gw := setupCache(t)
	ctx := context.Background()
	id := uuid.New()

	stored := stats.NewRecord(id, "Alice")
	gw.LoadFunc = func(ctx context.Context, playerID uuid.UUID) (*stats.StatRecord, bool, error) {
		return stored.Clone(), true, nil
	}

	_, err := c.GetOrLoad(ctx, id, "Alice")
	require.NoError(t, err)
	require.Equal(t, 0, c.DirtyCount())

	require.NoError(t, c.Evict(ctx, id))
	assert.Empty(t, gw.UpsertCalls)
	assert.Equal(t, 0, c.Size())
}

func TestPeekDoesNotLoad(t *testing.T) {
	c, gw := setupCache(t)

	_, ok := c.Peek(uuid.New())
	assert.False(t, ok)
	assert.Empty(t, gw.LoadCalls)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()
	id := uuid.New()

	rec, err := c.GetOrLoad(ctx, id, "Alice")
	require.NoError(t, err)

	rec.Kills = 999

	cached, ok := c.Peek(id)
	require.True(t, ok)
	assert.Zero(t, cached.Kills)
}

func TestShutdownFlushesEverything(t *testing.T) {
	c, gw := setupCache(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		id := uuid.New()
		_, err := c.GetOrLoad(ctx, id, "P")
		require.NoError(t, err)
		c.RecordKill(id)
	}

	require.NoError(t, c.Shutdown(ctx))
	assert.Equal(t, 0, c.DirtyCount())
	require.Len(t, gw.BatchUpsertCalls, 1)
	assert.Len(t, gw.BatchUpsertCalls[0], 5)
}
