package database

import (
	"path/filepath"
	"testing"
)

// TestMigrationsCreateSchema runs the real migration files against a
// throwaway sqlite database and checks the schema landed.
func TestMigrationsCreateSchema(t *testing.T) {
	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	tables := []string{
		"users", "decks", "words",
		"game_sessions", "game_session_words", "game_attempts",
		"student_teacher_associations", "user_streaks",
		"password_reset_tokens",
	}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}

	// Running again must be a no-op, not a duplicate-table failure
	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Errorf("re-running migrations failed: %v", err)
	}
}

func TestAttemptUpsertOverwrites(t *testing.T) {
	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	if _, err := db.Exec("INSERT INTO users (id, username, password_hash) VALUES ('u1', 'alice', 'x')"); err != nil {
		t.Fatalf("inserting user: %v", err)
	}
	if _, err := db.Exec("INSERT INTO game_sessions (id, user_id) VALUES ('s1', 'u1')"); err != nil {
		t.Fatalf("inserting session: %v", err)
	}

	upsert := db.Dialect.UpsertAttemptQuery()
	if _, err := db.Exec(upsert, "a1", "s1", "w1", false, 900, "2025-06-10 10:00:00"); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := db.Exec(upsert, "a2", "s1", "w1", true, 400, "2025-06-10 10:01:00"); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count, responseMs int
	var correct bool
	if err := db.QueryRow("SELECT COUNT(*) FROM game_attempts WHERE session_id = 's1'").Scan(&count); err != nil {
		t.Fatalf("counting attempts: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 attempt row, got %d", count)
	}
	if err := db.QueryRow("SELECT is_correct, response_time_ms FROM game_attempts WHERE session_id = 's1'").Scan(&correct, &responseMs); err != nil {
		t.Fatalf("reading attempt: %v", err)
	}
	if !correct || responseMs != 400 {
		t.Errorf("attempt row not overwritten: correct=%v responseMs=%d", correct, responseMs)
	}
}

func TestStreakUpsertIncrementsGamesCompleted(t *testing.T) {
	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	if _, err := db.Exec("INSERT INTO users (id, username, password_hash) VALUES ('u1', 'alice', 'x')"); err != nil {
		t.Fatalf("inserting user: %v", err)
	}

	upsert := db.Dialect.UpsertStreakDayQuery()
	if _, err := db.Exec(upsert, "d1", "u1", "2025-06-10 00:00:00"); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := db.Exec(upsert, "d2", "u1", "2025-06-10 00:00:00"); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var rows, games int
	if err := db.QueryRow("SELECT COUNT(*) FROM user_streaks WHERE user_id = 'u1'").Scan(&rows); err != nil {
		t.Fatalf("counting streak rows: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 streak row for the day, got %d", rows)
	}
	if err := db.QueryRow("SELECT games_completed FROM user_streaks WHERE user_id = 'u1'").Scan(&games); err != nil {
		t.Fatalf("reading streak row: %v", err)
	}
	if games != 2 {
		t.Errorf("expected games_completed = 2, got %d", games)
	}
}
