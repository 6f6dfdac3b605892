package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nordkyn/skystats/internal/cache"
	"github.com/nordkyn/skystats/internal/config"
	"github.com/nordkyn/skystats/internal/database"
	"github.com/nordkyn/skystats/internal/flush"
	"github.com/nordkyn/skystats/internal/gateway"
	server "github.com/nordkyn/skystats/internal/http"
	"github.com/nordkyn/skystats/internal/leaderboard"
	"github.com/nordkyn/skystats/internal/metrics"
)

func main() {
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()

	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	statsGateway := gateway.New(db, gateway.SQLiteDialect{})
	statsCache := cache.New(statsGateway, metricsSvc, cfg.LoadTimeout)
	leaderboardSvc := leaderboard.New(statsGateway)

	scheduler, err := flush.New(statsCache, metricsSvc, cfg.FlushInterval)
	if err != nil {
		log.Fatalf("Failed to create flush scheduler: %s", err)
	}
	scheduler.Start()

	s := server.NewServer(
		statsCache,
		statsGateway,
		leaderboardSvc,
		metricsSvc,
		metricsHandler,
		cfg,
	)

	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Final flush before anything else goes away; this is the last chance
		// to persist dirty records.
		if err := scheduler.Stop(ctx); err != nil {
			log.Error("Final flush failed", "error", err)
		}

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
