package database

import (
	"strings"
	"testing"
)

func TestRewritePlaceholdersToNumbered(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"no placeholders", "SELECT 1", "SELECT 1"},
		{"single placeholder", "SELECT * FROM users WHERE id = ?", "SELECT * FROM users WHERE id = $1"},
		{"multiple placeholders", "INSERT INTO decks (id, name) VALUES (?, ?)", "INSERT INTO decks (id, name) VALUES ($1, $2)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rewritePlaceholdersToNumbered(tt.query)
			if got != tt.want {
				t.Errorf("rewritePlaceholdersToNumbered() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDialectQueryRewriting(t *testing.T) {
	query := "SELECT id FROM users WHERE username = ? AND role = ?"

	if got := NewSQLiteDialect().RewriteQuery(query); got != query {
		t.Errorf("sqlite must not rewrite placeholders, got %q", got)
	}
	if got := NewMySQLDialect().RewriteQuery(query); got != query {
		t.Errorf("mysql must not rewrite placeholders, got %q", got)
	}
	want := "SELECT id FROM users WHERE username = $1 AND role = $2"
	if got := NewPostgresDialect().RewriteQuery(query); got != want {
		t.Errorf("postgres rewrite = %q, want %q", got, want)
	}
}

func TestDialectUpsertQueries(t *testing.T) {
	dialects := map[string]Dialect{
		"sqlite":   NewSQLiteDialect(),
		"postgres": NewPostgresDialect(),
		"mysql":    NewMySQLDialect(),
	}

	for name, d := range dialects {
		t.Run(name, func(t *testing.T) {
			attempt := d.UpsertAttemptQuery()
			if !strings.Contains(attempt, "game_attempts") {
				t.Errorf("attempt upsert does not target game_attempts: %q", attempt)
			}
			streak := d.UpsertStreakDayQuery()
			if !strings.Contains(streak, "user_streaks") {
				t.Errorf("streak upsert does not target user_streaks: %q", streak)
			}
			if !strings.Contains(streak, "games_completed") {
				t.Errorf("streak upsert must increment games_completed: %q", streak)
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	content := `-- leading comment
CREATE TABLE a (
    id TEXT PRIMARY KEY
);

-- another comment
CREATE INDEX idx_a ON a(id);
`

	statements := splitStatements(content)
	if len(statements) != 2 {
		t.Fatalf("expected 2 statements, got %d: %v", len(statements), statements)
	}
	if !strings.Contains(statements[0], "CREATE TABLE") {
		t.Errorf("first statement = %q", statements[0])
	}
	if !strings.Contains(statements[1], "CREATE INDEX") {
		t.Errorf("second statement = %q", statements[1])
	}
}
