package gateway

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
)

// Querier is the pooled SQL executor the gateway depends on. *sql.DB satisfies
// it; connection pooling, retry and backoff are its concern, not ours.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// store handles all database operations for player statistics.
type store struct {
	db      Querier
	dialect Dialect
	mu      sync.RWMutex
}

// SortKey names a denormalized column leaderboards can order by.
type SortKey string

const (
	SortWins          SortKey = "wins"
	SortKills         SortKey = "kills"
	SortGamesPlayed   SortKey = "games_played"
	SortBestPlacement SortKey = "best_placement"
)

// Valid reports whether the key names a known sort column.
func (k SortKey) Valid() bool {
	switch k {
	case SortWins, SortKills, SortGamesPlayed, SortBestPlacement:
		return true
	}
	return false
}

// Ascending reports the sort direction; only placement sorts smallest-first.
func (k SortKey) Ascending() bool { return k == SortBestPlacement }

// Column is the SQL column name for the key.
func (k SortKey) Column() string { return string(k) }

// BatchResult reports the per-record outcome of a BatchUpsert.
type BatchResult struct {
	Succeeded []uuid.UUID
	Failed    map[uuid.UUID]error
}

// OK reports whether every record in the batch persisted.
func (r BatchResult) OK() bool { return len(r.Failed) == 0 }

// FailedIDs lists the identities that did not persist.
func (r BatchResult) FailedIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Failed))
	for id := range r.Failed {
		ids = append(ids, id)
	}
	return ids
}
