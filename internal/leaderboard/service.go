// Package leaderboard builds ordered views over the persisted statistics. It
// bypasses the cache entirely and reads the denormalized sort columns, so only
// the rows actually returned are ever decoded.
package leaderboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/nordkyn/skystats/internal/gateway"
	"github.com/nordkyn/skystats/internal/stats"
)

// Service answers named leaderboard queries.
type Service interface {
	// Top returns the best limit players for a category, ranked and
	// display-ready.
	Top(ctx context.Context, category Category, limit int) ([]Entry, error)
}

// New creates a leaderboard service over the gateway.
func New(gw gateway.StatsGateway) Service {
	return &service{gw: gw}
}

// Top ranks players. Denormalized categories (wins, kills, games, placement)
// are true global orderings. Computed categories (kd, winrate) are
// approximated: the page is fetched by a proxy column (kills and wins
// respectively) and re-sorted in memory, so the ordering is only exact within
// the fetched page, not a global guarantee.
func (s *service) Top(ctx context.Context, category Category, limit int) ([]Entry, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("leaderboard: unknown category %q", category)
	}
	if limit <= 0 {
		return nil, nil
	}

	var key gateway.SortKey
	switch category {
	case CategoryWins, CategoryWinRate:
		key = gateway.SortWins
	case CategoryKills, CategoryKD:
		key = gateway.SortKills
	case CategoryGames:
		key = gateway.SortGamesPlayed
	case CategoryPlacement:
		key = gateway.SortBestPlacement
	}

	recs, err := s.gw.LoadRanked(ctx, key, limit)
	if err != nil {
		log.Error("Leaderboard query failed", "error", err, "category", category)
		return nil, fmt.Errorf("leaderboard: query %s: %w", category, err)
	}

	switch category {
	case CategoryKD:
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].KDRatio() > recs[j].KDRatio()
		})
	case CategoryWinRate:
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].WinRate() > recs[j].WinRate()
		})
	}

	entries := make([]Entry, 0, len(recs))
	for i, rec := range recs {
		entries = append(entries, Entry{
			Rank:          i + 1,
			PlayerID:      rec.PlayerID,
			Name:          rec.Name,
			Value:         categoryValue(category, rec),
			Wins:          rec.Wins,
			Kills:         rec.Kills,
			GamesPlayed:   rec.GamesPlayed,
			BestPlacement: rec.DisplayBestPlacement(),
			KDRatio:       rec.KDRatio(),
			WinRate:       rec.WinRate(),
		})
	}
	return entries, nil
}

func categoryValue(category Category, rec *stats.StatRecord) float64 {
	switch category {
	case CategoryWins:
		return float64(rec.Wins)
	case CategoryKills:
		return float64(rec.Kills)
	case CategoryGames:
		return float64(rec.GamesPlayed)
	case CategoryPlacement:
		return float64(rec.DisplayBestPlacement())
	case CategoryKD:
		return rec.KDRatio()
	case CategoryWinRate:
		return rec.WinRate()
	}
	return 0
}
