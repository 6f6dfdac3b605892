package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/nordkyn/skystats/internal/database"
	"github.com/nordkyn/skystats/internal/gateway"
	"github.com/nordkyn/skystats/internal/stats"
)

const seedCount = 50

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME":        "skystats.db",
		"MIGRATIONS_DIR": "./migrations",
	}
	for key := range config {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], os.Getenv("TURSO_PRIMARY_URL"), os.Getenv("TURSO_AUTH_TOKEN"), cfg["MIGRATIONS_DIR"])
	if err != nil {
		log.Fatalf("Failed to open database: %s", err)
	}
	defer teardown()

	gw := gateway.New(db, gateway.SQLiteDialect{})

	recs := make([]*stats.StatRecord, 0, seedCount)
	for i := 0; i < seedCount; i++ {
		recs = append(recs, randomRecord(i))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result := gw.BatchUpsert(ctx, recs)
	if !result.OK() {
		log.Error("Some seed records failed to persist", "failed", len(result.Failed))
		os.Exit(1)
	}
	log.Info("Seeded player records", "count", len(result.Succeeded))
}

func randomRecord(i int) *stats.StatRecord {
	rec := stats.NewRecord(uuid.New(), fmt.Sprintf("Seeder Player %d", i+1))
	games := rand.Intn(200) + 1
	for g := 0; g < games; g++ {
		placement := rand.Intn(12) + 1
		rec.ApplyGameResult(stats.GameResult{
			Placement:    placement,
			Kills:        rand.Intn(8),
			DamageDealt:  rand.Float64() * 500,
			DamageTaken:  rand.Float64() * 500,
			ChestsOpened: rand.Intn(10),
			Duration:     time.Duration(rand.Intn(600)+120) * time.Second,
		})
		for d := rand.Intn(2); d > 0; d-- {
			rec.AddDeath()
		}
	}
	return rec
}
