package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nordkyn/skystats/internal/codec"
	"github.com/nordkyn/skystats/internal/stats"
)

// ErrInvalidSortKey is returned by LoadRanked for an unknown sort key.
var ErrInvalidSortKey = errors.New("gateway: invalid sort key")

// New creates a StatsGateway over the given pooled executor and dialect.
func New(db Querier, dialect Dialect) StatsGateway {
	return &store{
		db:      db,
		dialect: dialect,
	}
}

// EnsureSchema creates the player_stats table when no migrations directory is
// in play (in-memory databases, embedded quick starts).
func EnsureSchema(ctx context.Context, db Querier, dialect Dialect) error {
	if _, err := db.ExecContext(ctx, dialect.CreateTableStatement()); err != nil {
		return fmt.Errorf("gateway: create table: %w", err)
	}
	return nil
}

func (s *store) Upsert(ctx context.Context, rec *stats.StatRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := codec.Encode(rec)
	if err != nil {
		return fmt.Errorf("gateway: encode record %s: %w", rec.PlayerID, err)
	}

	now := time.Now().Unix()
	_, err = s.db.ExecContext(ctx, s.dialect.UpsertStatement(),
		rec.PlayerID.String(), rec.Name, payload,
		rec.Wins, rec.Kills, rec.GamesPlayed, rec.BestPlacement,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("gateway: upsert record %s: %w", rec.PlayerID, err)
	}
	return nil
}

// BatchUpsert writes all records in a single transaction. Records that fail to
// encode or execute are reported individually and do not block the rest; a
// failed commit fails the whole batch.
func (s *store) BatchUpsert(ctx context.Context, recs []*stats.StatRecord) BatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := BatchResult{Failed: make(map[uuid.UUID]error)}
	if len(recs) == 0 {
		return result
	}

	type encoded struct {
		rec     *stats.StatRecord
		payload []byte
	}
	valid := make([]encoded, 0, len(recs))
	for _, rec := range recs {
		payload, err := codec.Encode(rec)
		if err != nil {
			log.Error("Failed to encode record for batch upsert", "error", err, "playerID", rec.PlayerID)
			result.Failed[rec.PlayerID] = err
			continue
		}
		valid = append(valid, encoded{rec: rec, payload: payload})
	}
	if len(valid) == 0 {
		return result
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("Failed to begin batch upsert transaction", "error", err)
		for _, e := range valid {
			result.Failed[e.rec.PlayerID] = err
		}
		return result
	}

	stmt, err := tx.PrepareContext(ctx, s.dialect.UpsertStatement())
	if err != nil {
		tx.Rollback()
		log.Error("Failed to prepare batch upsert statement", "error", err)
		for _, e := range valid {
			result.Failed[e.rec.PlayerID] = err
		}
		return result
	}
	defer stmt.Close()

	now := time.Now().Unix()
	var written []uuid.UUID
	for _, e := range valid {
		_, err := stmt.ExecContext(ctx,
			e.rec.PlayerID.String(), e.rec.Name, e.payload,
			e.rec.Wins, e.rec.Kills, e.rec.GamesPlayed, e.rec.BestPlacement,
			now, now,
		)
		if err != nil {
			log.Error("Failed to upsert record in batch", "error", err, "playerID", e.rec.PlayerID)
			result.Failed[e.rec.PlayerID] = err
			continue
		}
		written = append(written, e.rec.PlayerID)
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit batch upsert", "error", err, "records", len(written))
		for _, id := range written {
			result.Failed[id] = err
		}
		return result
	}

	result.Succeeded = written
	return result
}

func (s *store) Load(ctx context.Context, playerID uuid.UUID) (*stats.StatRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload []byte
	row := s.db.QueryRowContext(ctx, s.dialect.LoadStatement(), playerID.String())
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("gateway: load record %s: %w", playerID, err)
	}

	rec, err := codec.Decode(payload)
	if err != nil {
		// A payload we cannot read is a permanent failure for this record.
		// Surfacing it (instead of treating it as absent) keeps a returning
		// player's history from being silently replaced with a blank record.
		if errors.Is(err, codec.ErrVersionMismatch) {
			log.Error("Payload version mismatch on load", "error", err, "playerID", playerID)
		} else {
			log.Error("Corrupt payload on load", "error", err, "playerID", playerID)
		}
		return nil, false, fmt.Errorf("gateway: decode record %s: %w", playerID, err)
	}
	return rec, true, nil
}

func (s *store) LoadRanked(ctx context.Context, key SortKey, limit int) ([]*stats.StatRecord, error) {
	if !key.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSortKey, key)
	}
	if limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query := s.dialect.RankedStatement(key.Column(), key.Ascending())
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("gateway: ranked query by %s: %w", key, err)
	}
	defer rows.Close()

	var recs []*stats.StatRecord
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			log.Error("Failed to scan ranked row", "error", err)
			continue
		}
		rec, err := codec.Decode(payload)
		if err != nil {
			// One corrupt row must not sink the whole leaderboard.
			log.Error("Skipping corrupt record in ranked query", "error", err, "playerID", id)
			continue
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("gateway: ranked rows by %s: %w", key, err)
	}
	return recs, nil
}

func (s *store) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	if err := s.db.QueryRowContext(ctx, s.dialect.CountStatement()).Scan(&count); err != nil {
		return 0, fmt.Errorf("gateway: count records: %w", err)
	}
	return count, nil
}
