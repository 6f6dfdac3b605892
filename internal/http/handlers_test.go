package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordkyn/skystats/internal/cache"
	"github.com/nordkyn/skystats/internal/config"
	"github.com/nordkyn/skystats/internal/database"
	"github.com/nordkyn/skystats/internal/gateway"
	"github.com/nordkyn/skystats/internal/leaderboard"
	"github.com/nordkyn/skystats/internal/metrics"
)

// setupTestServer wires the full stack over an in-memory database.
func setupTestServer(t *testing.T) (*Server, gateway.StatsGateway, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)

	gw := gateway.New(db, gateway.SQLiteDialect{})
	statsCache := cache.New(gw, metricsSvc, time.Second)
	lb := leaderboard.New(gw)

	server := NewServer(statsCache, gw, lb, metricsSvc, metricsHandler, config.Config{})
	return server, gw, dbTeardown
}

func doRequest(t *testing.T, server *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	return rr
}

func TestHealthCheck(t *testing.T) {
	server, _, teardown := setupTestServer(t)
	defer teardown()

	rr := doRequest(t, server, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK!", rr.Body.String())
}

func TestPlayerJoinCreatesRecord(t *testing.T) {
	server, _, teardown := setupTestServer(t)
	defer teardown()

	id := uuid.New()
	rr := doRequest(t, server, http.MethodPost, "/record/join?playerID="+id.String()+"&name=Alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var view map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, "Alice", view["name"])
	assert.EqualValues(t, 0, view["wins"])
	assert.EqualValues(t, 0, view["best_placement"])
}

func TestPlayerJoinRejectsBadID(t *testing.T) {
	server, _, teardown := setupTestServer(t)
	defer teardown()

	rr := doRequest(t, server, http.MethodPost, "/record/join?playerID=not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGameResultAndPlayerView(t *testing.T) {
	server, _, teardown := setupTestServer(t)
	defer teardown()

	id := uuid.New()
	rr := doRequest(t, server, http.MethodPost, "/record/join?playerID="+id.String()+"&name=Alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	payload, err := json.Marshal(map[string]any{
		"player_id":        id,
		"placement":        1,
		"kills":            4,
		"duration_seconds": 300,
	})
	require.NoError(t, err)
	rr = doRequest(t, server, http.MethodPost, "/record/result", bytes.NewReader(payload))
	require.Equal(t, http.StatusAccepted, rr.Code)

	rr = doRequest(t, server, http.MethodGet, "/player?playerID="+id.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var view map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.EqualValues(t, 1, view["wins"])
	assert.EqualValues(t, 4, view["kills"])
	assert.EqualValues(t, 1, view["best_placement"])
	assert.EqualValues(t, 1, view["current_win_streak"])
}

func TestPlayerNotFound(t *testing.T) {
	server, _, teardown := setupTestServer(t)
	defer teardown()

	rr := doRequest(t, server, http.MethodGet, "/player?playerID="+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestNarrowRecorders(t *testing.T) {
	server, _, teardown := setupTestServer(t)
	defer teardown()

	id := uuid.New()
	doRequest(t, server, http.MethodPost, "/record/join?playerID="+id.String()+"&name=Alice", nil)

	assert.Equal(t, http.StatusAccepted, doRequest(t, server, http.MethodPost, "/record/kill?playerID="+id.String(), nil).Code)
	assert.Equal(t, http.StatusAccepted, doRequest(t, server, http.MethodPost, "/record/death?playerID="+id.String(), nil).Code)
	assert.Equal(t, http.StatusAccepted, doRequest(t, server, http.MethodPost, "/record/damage?playerID="+id.String()+"&amount=42.5&direction=dealt", nil).Code)
	assert.Equal(t, http.StatusAccepted, doRequest(t, server, http.MethodPost, "/record/chest?playerID="+id.String(), nil).Code)

	rr := doRequest(t, server, http.MethodGet, "/player?playerID="+id.String(), nil)
	var view map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.EqualValues(t, 1, view["kills"])
	assert.EqualValues(t, 1, view["deaths"])
	assert.InDelta(t, 42.5, view["damage_dealt"].(float64), 0.001)
	assert.EqualValues(t, 1, view["chests_opened"])
}

func TestDamageRequiresDirection(t *testing.T) {
	server, _, teardown := setupTestServer(t)
	defer teardown()

	id := uuid.New()
	rr := doRequest(t, server, http.MethodPost, "/record/damage?playerID="+id.String()+"&amount=10", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFlushAndCount(t *testing.T) {
	server, gw, teardown := setupTestServer(t)
	defer teardown()

	for i := 0; i < 3; i++ {
		id := uuid.New()
		doRequest(t, server, http.MethodPost, fmt.Sprintf("/record/join?playerID=%s&name=P%d", id, i), nil)
		doRequest(t, server, http.MethodPost, "/record/kill?playerID="+id.String(), nil)
	}

	rr := doRequest(t, server, http.MethodPost, "/flush", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var outcome map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &outcome))
	assert.EqualValues(t, 3, outcome["flushed"])
	assert.EqualValues(t, 0, outcome["failed"])

	count, err := gw.Count(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	rr = doRequest(t, server, http.MethodGet, "/count", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var countBody map[string]int64
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &countBody))
	assert.Equal(t, int64(3), countBody["players"])
}

func TestEvictPersistsLastMutation(t *testing.T) {
	server, gw, teardown := setupTestServer(t)
	defer teardown()

	id := uuid.New()
	doRequest(t, server, http.MethodPost, "/record/join?playerID="+id.String()+"&name=Alice", nil)
	doRequest(t, server, http.MethodPost, "/record/kill?playerID="+id.String(), nil)

	rr := doRequest(t, server, http.MethodPost, "/evict?playerID="+id.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rec, found, err := gw.Load(httptest.NewRequest(http.MethodGet, "/", nil).Context(), id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, rec.Kills)
}

func TestLeaderboardEndpoint(t *testing.T) {
	server, _, teardown := setupTestServer(t)
	defer teardown()

	wins := []int{10, 5, 20}
	for i, w := range wins {
		id := uuid.New()
		doRequest(t, server, http.MethodPost, fmt.Sprintf("/record/join?playerID=%s&name=P%d", id, i), nil)
		for g := 0; g < w; g++ {
			payload, _ := json.Marshal(map[string]any{"player_id": id, "placement": 1})
			doRequest(t, server, http.MethodPost, "/record/result", bytes.NewReader(payload))
		}
	}
	doRequest(t, server, http.MethodPost, "/flush", nil)

	rr := doRequest(t, server, http.MethodGet, "/leaderboard?category=wins&limit=3", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var entries []leaderboard.Entry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, 20, entries[0].Wins)
	assert.Equal(t, 10, entries[1].Wins)
	assert.Equal(t, 5, entries[2].Wins)
}

func TestLeaderboardUnknownCategory(t *testing.T) {
	server, _, teardown := setupTestServer(t)
	defer teardown()

	rr := doRequest(t, server, http.MethodGet, "/leaderboard?category=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLeaderboardEmptyStore(t *testing.T) {
	server, _, teardown := setupTestServer(t)
	defer teardown()

	rr := doRequest(t, server, http.MethodGet, "/leaderboard", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	server, _, teardown := setupTestServer(t)
	defer teardown()

	rr := doRequest(t, server, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
