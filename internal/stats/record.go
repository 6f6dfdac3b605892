package stats

import (
	"time"

	"github.com/google/uuid"
)

// NewRecord creates a fresh all-zero record for a player seen for the first time.
func NewRecord(playerID uuid.UUID, name string) *StatRecord {
	now := time.Now().UTC()
	return &StatRecord{
		PlayerID:      playerID,
		Name:          name,
		BestPlacement: NoPlacement,
		FirstSeen:     now,
		LastUpdated:   now,
	}
}

// touch bumps LastUpdated, keeping it monotonically non-decreasing even if the
// wall clock steps backwards.
func (r *StatRecord) touch() {
	now := time.Now().UTC()
	if now.After(r.LastUpdated) {
		r.LastUpdated = now
	}
}

// ApplyGameResult folds a completed game into the record: games played, time
// played, win/loss and streak bookkeeping, placement, kills, damage and chests.
func (r *StatRecord) ApplyGameResult(res GameResult) {
	r.GamesPlayed++
	r.TimePlayedSeconds += int64(res.Duration.Seconds())
	r.Kills += res.Kills
	r.DamageDealt += res.DamageDealt
	r.DamageTaken += res.DamageTaken
	r.ChestsOpened += res.ChestsOpened

	if res.Placement > 0 && res.Placement < r.BestPlacement {
		r.BestPlacement = res.Placement
	}
	if res.Placement > 0 && res.Placement <= 3 {
		r.Top3Finishes++
	}

	if res.Won() {
		r.Wins++
		r.CurrentWinStreak++
		if r.CurrentWinStreak > r.BestWinStreak {
			r.BestWinStreak = r.CurrentWinStreak
		}
	} else {
		r.Losses++
		r.CurrentWinStreak = 0
	}

	r.LastPlayed = time.Now().UTC()
	r.touch()
}

// AddKill records a single elimination outside full result recording.
func (r *StatRecord) AddKill() {
	r.Kills++
	r.touch()
}

// AddDeath records a single death.
func (r *StatRecord) AddDeath() {
	r.Deaths++
	r.touch()
}

// AddDamageDealt accumulates damage dealt. Negative amounts are ignored.
func (r *StatRecord) AddDamageDealt(amount float64) {
	if amount < 0 {
		return
	}
	r.DamageDealt += amount
	r.touch()
}

// AddDamageTaken accumulates damage taken. Negative amounts are ignored.
func (r *StatRecord) AddDamageTaken(amount float64) {
	if amount < 0 {
		return
	}
	r.DamageTaken += amount
	r.touch()
}

// AddChestOpened records one opened chest.
func (r *StatRecord) AddChestOpened() {
	r.ChestsOpened++
	r.touch()
}

// Clone returns a deep copy. Records handed out by the cache are always
// clones so callers cannot bypass the cache's synchronization.
func (r *StatRecord) Clone() *StatRecord {
	cp := *r
	return &cp
}

// DisplayBestPlacement translates the internal sentinel to 0 ("no games yet").
func (r *StatRecord) DisplayBestPlacement() int {
	if r.BestPlacement == NoPlacement {
		return 0
	}
	return r.BestPlacement
}

// KDRatio is kills/deaths, or the raw kill count when the player never died.
func (r *StatRecord) KDRatio() float64 {
	if r.Deaths == 0 {
		return float64(r.Kills)
	}
	return float64(r.Kills) / float64(r.Deaths)
}

// WinRate is the percentage of games won, 0 when no games were played.
func (r *StatRecord) WinRate() float64 {
	if r.GamesPlayed == 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.GamesPlayed) * 100
}

// Top3Rate is the percentage of games finished in the top three.
func (r *StatRecord) Top3Rate() float64 {
	if r.GamesPlayed == 0 {
		return 0
	}
	return float64(r.Top3Finishes) / float64(r.GamesPlayed) * 100
}

// AvgKillsPerGame is the mean kill count per completed game.
func (r *StatRecord) AvgKillsPerGame() float64 {
	if r.GamesPlayed == 0 {
		return 0
	}
	return float64(r.Kills) / float64(r.GamesPlayed)
}

// AvgGameSeconds is the mean game length in seconds.
func (r *StatRecord) AvgGameSeconds() float64 {
	if r.GamesPlayed == 0 {
		return 0
	}
	return float64(r.TimePlayedSeconds) / float64(r.GamesPlayed)
}
