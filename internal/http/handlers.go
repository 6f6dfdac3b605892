package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nordkyn/skystats/internal/cache"
	"github.com/nordkyn/skystats/internal/leaderboard"
	"github.com/nordkyn/skystats/internal/stats"
)

// playerView is the display-ready shape of a record: derived metrics computed,
// placement sentinel translated.
type playerView struct {
	stats.StatRecord
	BestPlacement   int     `json:"best_placement"`
	KDRatio         float64 `json:"kd_ratio"`
	WinRate         float64 `json:"win_rate"`
	Top3Rate        float64 `json:"top3_rate"`
	AvgKillsPerGame float64 `json:"avg_kills_per_game"`
	AvgGameSeconds  float64 `json:"avg_game_seconds"`
}

func newPlayerView(rec *stats.StatRecord) playerView {
	return playerView{
		StatRecord:      *rec,
		BestPlacement:   rec.DisplayBestPlacement(),
		KDRatio:         rec.KDRatio(),
		WinRate:         rec.WinRate(),
		Top3Rate:        rec.Top3Rate(),
		AvgKillsPerGame: rec.AvgKillsPerGame(),
		AvgGameSeconds:  rec.AvgGameSeconds(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

func playerIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := r.URL.Query().Get("playerID")
	if raw == "" {
		return uuid.Nil, errors.New("missing playerID parameter")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid playerID %q: %w", raw, err)
	}
	return id, nil
}

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// PlayerHandler serves a single player's statistics. It peeks the cache first
// and falls back to a read-only store lookup; a display read never populates
// the cache.
func (s *Server) PlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := playerIDFromRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if rec, ok := s.Cache.Peek(id); ok {
			writeJSON(w, http.StatusOK, newPlayerView(rec))
			return
		}

		rec, found, err := s.Gateway.Load(r.Context(), id)
		if err != nil {
			log.Error("Failed to load player for display", "error", err, "playerID", id)
			http.Error(w, "Failed to load player", http.StatusInternalServerError)
			return
		}
		if !found {
			http.Error(w, "Player not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, newPlayerView(rec))
	}
}

// LeaderboardHandler serves a ranked category. A failed query answers an
// empty list rather than an error; the display layer never sees raw failures.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := leaderboard.Category(r.URL.Query().Get("category"))
		if category == "" {
			category = leaderboard.CategoryWins
		}
		if !category.Valid() {
			http.Error(w, fmt.Sprintf("unknown category %q", category), http.StatusBadRequest)
			return
		}

		limit := 10
		if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
			parsed, err := strconv.Atoi(rawLimit)
			if err != nil || parsed <= 0 {
				http.Error(w, "invalid limit parameter", http.StatusBadRequest)
				return
			}
			limit = parsed
		}
		if limit > 100 {
			limit = 100
		}

		entries, err := s.Leaderboard.Top(r.Context(), category, limit)
		if err != nil {
			log.Error("Leaderboard request failed, serving empty result", "error", err, "category", category)
			writeJSON(w, http.StatusOK, []leaderboard.Entry{})
			return
		}
		if entries == nil {
			entries = []leaderboard.Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func (s *Server) CountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := s.Gateway.Count(r.Context())
		if err != nil {
			log.Error("Failed to count players", "error", err)
			http.Error(w, "Failed to count players", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"players": count})
	}
}

func (s *Server) FlushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Received request to flush dirty statistics")
		outcome := s.Cache.FlushAll(r.Context())
		status := http.StatusOK
		if !outcome.OK() {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, map[string]any{
			"attempted": outcome.Attempted,
			"flushed":   outcome.Flushed,
			"failed":    len(outcome.Failed),
		})
	}
}

// PlayerJoinHandler loads (or creates) a player's record when they join.
func (s *Server) PlayerJoinHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := playerIDFromRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		name := r.URL.Query().Get("name")

		rec, err := s.Cache.GetOrLoad(r.Context(), id, name)
		if err != nil {
			if errors.Is(err, cache.ErrUnavailable) {
				http.Error(w, "Statistics temporarily unavailable", http.StatusServiceUnavailable)
				return
			}
			http.Error(w, "Failed to load player", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, newPlayerView(rec))
	}
}

type gameResultRequest struct {
	PlayerID        uuid.UUID `json:"player_id"`
	Placement       int       `json:"placement"`
	Kills           int       `json:"kills"`
	DamageDealt     float64   `json:"damage_dealt"`
	DamageTaken     float64   `json:"damage_taken"`
	ChestsOpened    int       `json:"chests_opened"`
	DurationSeconds int64     `json:"duration_seconds"`
}

// GameResultHandler records a completed game. The mutation is in-memory only;
// persistence happens on the next flush cycle.
func (s *Server) GameResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req gameResultRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.PlayerID == uuid.Nil {
			http.Error(w, "missing player_id", http.StatusBadRequest)
			return
		}

		s.Cache.ApplyGameResult(req.PlayerID, stats.GameResult{
			Placement:    req.Placement,
			Kills:        req.Kills,
			DamageDealt:  req.DamageDealt,
			DamageTaken:  req.DamageTaken,
			ChestsOpened: req.ChestsOpened,
			Duration:     time.Duration(req.DurationSeconds) * time.Second,
		})
		w.WriteHeader(http.StatusAccepted)
	}
}

func (s *Server) KillHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := playerIDFromRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.Cache.RecordKill(id)
		w.WriteHeader(http.StatusAccepted)
	}
}

func (s *Server) DeathHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := playerIDFromRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.Cache.RecordDeath(id)
		w.WriteHeader(http.StatusAccepted)
	}
}

// DamageHandler records damage; direction=dealt|taken.
func (s *Server) DamageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := playerIDFromRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
		if err != nil || amount < 0 {
			http.Error(w, "invalid amount parameter", http.StatusBadRequest)
			return
		}

		switch r.URL.Query().Get("direction") {
		case "dealt":
			s.Cache.RecordDamageDealt(id, amount)
		case "taken":
			s.Cache.RecordDamageTaken(id, amount)
		default:
			http.Error(w, "direction must be 'dealt' or 'taken'", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func (s *Server) ChestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := playerIDFromRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.Cache.RecordChestOpened(id)
		w.WriteHeader(http.StatusAccepted)
	}
}

// EvictHandler removes a disconnected player from the cache, flushing first.
func (s *Server) EvictHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := playerIDFromRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.Cache.Evict(r.Context(), id); err != nil {
			log.Error("Failed to evict player", "error", err, "playerID", id)
			http.Error(w, "Failed to evict player", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Evicted player %s", id)
	}
}
