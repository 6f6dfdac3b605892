package gateway

import (
	"context"

	"github.com/google/uuid"

	"github.com/nordkyn/skystats/internal/stats"
)

// StatsGateway is the only component that issues SQL for player statistics.
// It translates records to and from rows: an opaque binary payload plus the
// denormalized sort columns, always written together.
type StatsGateway interface {
	// Upsert inserts or overwrites one record by player identity. Idempotent.
	Upsert(ctx context.Context, rec *stats.StatRecord) error
	// BatchUpsert applies the Upsert contract to every record in one round
	// trip and reports exactly which identities failed.
	BatchUpsert(ctx context.Context, recs []*stats.StatRecord) BatchResult
	// Load is a point lookup. A missing row is (nil, false, nil), not an error.
	Load(ctx context.Context, playerID uuid.UUID) (*stats.StatRecord, bool, error)
	// LoadRanked returns the top limit records ordered by the given key,
	// decoding only the rows returned. Corrupt rows are logged and skipped.
	LoadRanked(ctx context.Context, key SortKey, limit int) ([]*stats.StatRecord, error)
	// Count returns the number of distinct players stored.
	Count(ctx context.Context) (int64, error)
}
