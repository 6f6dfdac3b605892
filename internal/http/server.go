package http

import (
	"net/http"

	"github.com/nordkyn/skystats/internal/cache"
	"github.com/nordkyn/skystats/internal/config"
	"github.com/nordkyn/skystats/internal/gateway"
	"github.com/nordkyn/skystats/internal/leaderboard"
	"github.com/nordkyn/skystats/internal/metrics"
)

func NewServer(statsCache cache.StatsCache, gw gateway.StatsGateway, lb leaderboard.Service, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config) *Server {
	server := &Server{
		Cache:          statsCache,
		Gateway:        gw,
		Leaderboard:    lb,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper so more
	// middlewares (auth, rate limiting) slot in without touching handlers.
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/player", Chain(s.PlayerHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/count", Chain(s.CountHandler(), paramsMiddleware))
	s.Router.Handle("/flush", Chain(s.FlushHandler(), paramsMiddleware))
	s.Router.Handle("/record/join", Chain(s.PlayerJoinHandler(), paramsMiddleware))
	s.Router.Handle("/record/result", Chain(s.GameResultHandler(), paramsMiddleware))
	s.Router.Handle("/record/kill", Chain(s.KillHandler(), paramsMiddleware))
	s.Router.Handle("/record/death", Chain(s.DeathHandler(), paramsMiddleware))
	s.Router.Handle("/record/damage", Chain(s.DamageHandler(), paramsMiddleware))
	s.Router.Handle("/record/chest", Chain(s.ChestHandler(), paramsMiddleware))
	s.Router.Handle("/evict", Chain(s.EvictHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
