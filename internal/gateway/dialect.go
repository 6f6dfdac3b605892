package gateway

import "fmt"

// Dialect supplies the SQL text for one backend. A dialect is chosen once at
// construction time; nothing in the gateway branches on a database type at
// call time.
type Dialect interface {
	Name() string
	CreateTableStatement() string
	UpsertStatement() string
	LoadStatement() string
	RankedStatement(column string, ascending bool) string
	CountStatement() string
}

// SQLiteDialect covers both local SQLite and libsql/Turso remotes, which share
// statement syntax.
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string { return "sqlite" }

func (SQLiteDialect) CreateTableStatement() string {
	return `
	CREATE TABLE IF NOT EXISTS player_stats (
		player_id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		payload BLOB NOT NULL,
		wins INTEGER NOT NULL DEFAULT 0,
		kills INTEGER NOT NULL DEFAULT 0,
		games_played INTEGER NOT NULL DEFAULT 0,
		best_placement INTEGER NOT NULL DEFAULT 2147483647,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);`
}

// UpsertStatement writes the payload and the denormalized sort columns in a
// single statement so they can never drift apart.
func (SQLiteDialect) UpsertStatement() string {
	return `
	INSERT INTO player_stats (player_id, name, payload, wins, kills, games_played, best_placement, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(player_id) DO UPDATE SET
		name = excluded.name,
		payload = excluded.payload,
		wins = excluded.wins,
		kills = excluded.kills,
		games_played = excluded.games_played,
		best_placement = excluded.best_placement,
		updated_at = excluded.updated_at;`
}

func (SQLiteDialect) LoadStatement() string {
	return `SELECT payload FROM player_stats WHERE player_id = ?`
}

func (SQLiteDialect) RankedStatement(column string, ascending bool) string {
	direction := "DESC"
	if ascending {
		direction = "ASC"
	}
	// player_id as secondary sort key keeps ties deterministic.
	return fmt.Sprintf(
		`SELECT player_id, payload FROM player_stats ORDER BY %s %s, player_id ASC LIMIT ?`,
		column, direction,
	)
}

func (SQLiteDialect) CountStatement() string {
	return `SELECT COUNT(*) FROM player_stats`
}

// PostgresDialect targets a Postgres backend behind the same schema.
type PostgresDialect struct{}

func (PostgresDialect) Name() string { return "postgres" }

func (PostgresDialect) CreateTableStatement() string {
	return `
	CREATE TABLE IF NOT EXISTS player_stats (
		player_id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		payload BYTEA NOT NULL,
		wins BIGINT NOT NULL DEFAULT 0,
		kills BIGINT NOT NULL DEFAULT 0,
		games_played BIGINT NOT NULL DEFAULT 0,
		best_placement BIGINT NOT NULL DEFAULT 2147483647,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	);`
}

func (PostgresDialect) UpsertStatement() string {
	return `
	INSERT INTO player_stats (player_id, name, payload, wins, kills, games_played, best_placement, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (player_id) DO UPDATE SET
		name = EXCLUDED.name,
		payload = EXCLUDED.payload,
		wins = EXCLUDED.wins,
		kills = EXCLUDED.kills,
		games_played = EXCLUDED.games_played,
		best_placement = EXCLUDED.best_placement,
		updated_at = EXCLUDED.updated_at;`
}

func (PostgresDialect) LoadStatement() string {
	return `SELECT payload FROM player_stats WHERE player_id = $1`
}

func (PostgresDialect) RankedStatement(column string, ascending bool) string {
	direction := "DESC"
	if ascending {
		direction = "ASC"
	}
	return fmt.Sprintf(
		`SELECT player_id, payload FROM player_stats ORDER BY %s %s, player_id ASC LIMIT $1`,
		column, direction,
	)
}

func (PostgresDialect) CountStatement() string {
	return `SELECT COUNT(*) FROM player_stats`
}
