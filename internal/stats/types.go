package stats

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// NoPlacement is the initial best placement before a player has completed a
// single game. It compares worse than any real placement and is never shown
// to callers; DisplayBestPlacement translates it to 0.
const NoPlacement = math.MaxInt32

// StatRecord is the canonical in-memory statistics record for one player.
// The player ID is the identity and never changes; the name is a display
// attribute refreshed on load. All mutation goes through the cache so the
// struct itself carries no locking.
type StatRecord struct {
	PlayerID uuid.UUID `msgpack:"id" json:"player_id"`
	Name     string    `msgpack:"name" json:"name"`

	Wins        int `msgpack:"wins" json:"wins"`
	Losses      int `msgpack:"losses" json:"losses"`
	Kills       int `msgpack:"kills" json:"kills"`
	Deaths      int `msgpack:"deaths" json:"deaths"`
	GamesPlayed int `msgpack:"games_played" json:"games_played"`

	TimePlayedSeconds int64 `msgpack:"time_played" json:"time_played_seconds"`

	BestPlacement    int `msgpack:"best_placement" json:"-"`
	CurrentWinStreak int `msgpack:"win_streak" json:"current_win_streak"`
	BestWinStreak    int `msgpack:"best_win_streak" json:"best_win_streak"`
	Top3Finishes     int `msgpack:"top3" json:"top3_finishes"`

	DamageDealt  float64 `msgpack:"damage_dealt" json:"damage_dealt"`
	DamageTaken  float64 `msgpack:"damage_taken" json:"damage_taken"`
	ChestsOpened int     `msgpack:"chests_opened" json:"chests_opened"`

	FirstSeen   time.Time `msgpack:"first_seen" json:"first_seen"`
	LastPlayed  time.Time `msgpack:"last_played" json:"last_played,omitempty"`
	LastUpdated time.Time `msgpack:"last_updated" json:"last_updated"`
}

// GameResult carries everything a completed game contributes to a record.
type GameResult struct {
	Placement    int           `json:"placement"`
	Kills        int           `json:"kills"`
	DamageDealt  float64       `json:"damage_dealt"`
	DamageTaken  float64       `json:"damage_taken"`
	ChestsOpened int           `json:"chests_opened"`
	Duration     time.Duration `json:"-"`
}

// Won reports whether the result is a victory.
func (r GameResult) Won() bool { return r.Placement == 1 }
