package http

import (
	"net/http"

	"github.com/nordkyn/skystats/internal/cache"
	"github.com/nordkyn/skystats/internal/config"
	"github.com/nordkyn/skystats/internal/gateway"
	"github.com/nordkyn/skystats/internal/leaderboard"
	"github.com/nordkyn/skystats/internal/metrics"
)

type Server struct {
	Cache          cache.StatsCache
	Gateway        gateway.StatsGateway
	Leaderboard    leaderboard.Service
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Router         *http.ServeMux
}
