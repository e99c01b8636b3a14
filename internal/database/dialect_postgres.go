package database

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// PostgresDialect implements Dialect for PostgreSQL
type PostgresDialect struct{}

// NewPostgresDialect creates a new PostgreSQL dialect
func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

func (d *PostgresDialect) DSN(config DialectConfig) string {
	return config.URL
}

func (d *PostgresDialect) RewriteQuery(query string) string {
	// PostgreSQL uses $1, $2, etc. instead of ?
	return rewritePlaceholdersToNumbered(query)
}

func (d *PostgresDialect) ConfigureConnection(db *sql.DB) error {
	// Configure connection pool for PostgreSQL
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	// PostgreSQL has foreign keys enabled by default, no pragma needed
	return nil
}

func (d *PostgresDialect) MigrationsSubdir() string {
	return "postgres"
}

func (d *PostgresDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGSERIAL PRIMARY KEY,
			filename TEXT UNIQUE NOT NULL,
			executed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
	`
}

func (d *PostgresDialect) BoolValue(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func (d *PostgresDialect) UpsertAttemptQuery() string {
	return `
		INSERT INTO game_attempts (id, session_id, word_id, is_correct, response_time_ms, attempted_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id, word_id) DO UPDATE SET
			is_correct = excluded.is_correct,
			response_time_ms = excluded.response_time_ms,
			attempted_at = excluded.attempted_at
	`
}

func (d *PostgresDialect) UpsertStreakDayQuery() string {
	return `
		INSERT INTO user_streaks (id, user_id, date, games_completed)
		VALUES (?, ?, ?, 1)
		ON CONFLICT (user_id, date) DO UPDATE SET
			games_completed = user_streaks.games_completed + 1
	`
}
