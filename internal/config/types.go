package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	FlushInterval time.Duration
	LoadTimeout   time.Duration
	Turso         TursoConfig
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
