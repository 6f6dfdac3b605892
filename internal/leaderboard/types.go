package leaderboard

import (
	"github.com/google/uuid"

	"github.com/nordkyn/skystats/internal/gateway"
)

// Category names a ranked view over all players.
type Category string

const (
	CategoryWins      Category = "wins"
	CategoryKills     Category = "kills"
	CategoryGames     Category = "games"
	CategoryPlacement Category = "placement"
	// Computed categories are not backed by a denormalized column; see
	// Service.Top for how they are approximated.
	CategoryKD      Category = "kd"
	CategoryWinRate Category = "winrate"
)

// Valid reports whether the category is known.
func (c Category) Valid() bool {
	switch c {
	case CategoryWins, CategoryKills, CategoryGames, CategoryPlacement, CategoryKD, CategoryWinRate:
		return true
	}
	return false
}

// Entry is one display-ready leaderboard row.
type Entry struct {
	Rank          int       `json:"rank"`
	PlayerID      uuid.UUID `json:"player_id"`
	Name          string    `json:"name"`
	Value         float64   `json:"value"`
	Wins          int       `json:"wins"`
	Kills         int       `json:"kills"`
	GamesPlayed   int       `json:"games_played"`
	BestPlacement int       `json:"best_placement"`
	KDRatio       float64   `json:"kd_ratio"`
	WinRate       float64   `json:"win_rate"`
}

type service struct {
	gw gateway.StatsGateway
}
