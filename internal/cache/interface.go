package cache

import (
	"context"

	"github.com/google/uuid"

	"github.com/nordkyn/skystats/internal/stats"
)

// StatsCache is the single source of truth for a player's statistics while the
// player is active. All gameplay reads and writes go through here; nothing
// else talks to the store for live records.
//
// Mutators never block on I/O and never fail: they update the in-memory record
// and mark it dirty for the next flush. Only explicit flush and load
// operations surface persistence outcomes.
type StatsCache interface {
	// GetOrLoad returns the cached record, loading or creating it on a miss.
	// Concurrent calls for the same player are collapsed into one load. A
	// store failure or timeout returns an error wrapping ErrUnavailable; it
	// never silently hands back a blank record for a possibly existing player.
	GetOrLoad(ctx context.Context, playerID uuid.UUID, name string) (*stats.StatRecord, error)
	// Peek is a cache-only read; it never touches the store.
	Peek(playerID uuid.UUID) (*stats.StatRecord, bool)

	ApplyGameResult(playerID uuid.UUID, res stats.GameResult)
	RecordKill(playerID uuid.UUID)
	RecordDeath(playerID uuid.UUID)
	RecordDamageDealt(playerID uuid.UUID, amount float64)
	RecordDamageTaken(playerID uuid.UUID, amount float64)
	RecordChestOpened(playerID uuid.UUID)

	// FlushOne persists a single player's record immediately.
	FlushOne(ctx context.Context, playerID uuid.UUID) error
	// FlushAll persists every dirty record in one batch. Records that fail
	// stay dirty for the next cycle.
	FlushAll(ctx context.Context) FlushOutcome
	// Evict removes a player from the cache, flushing first if dirty. A
	// failed flush keeps the record cached so no data is lost.
	Evict(ctx context.Context, playerID uuid.UUID) error

	// Size is the number of cached records; DirtyCount the number pending flush.
	Size() int
	DirtyCount() int

	// Shutdown performs one final flush. The cache must not be used afterwards.
	Shutdown(ctx context.Context) error
}
