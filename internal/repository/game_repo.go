package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"tonequest/internal/database"
	"tonequest/internal/models"
)

// GameRepository handles game session and attempt database operations
type GameRepository struct {
	db *database.DB
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *database.DB) *GameRepository {
	return &GameRepository{db: db}
}

// CreateSession persists a new session together with its word roster,
// atomically. The roster order is the order of wordIDs.
func (r *GameRepository) CreateSession(userID, deckID string, wordIDs []string, startedAt time.Time) (*models.GameSession, error) {
	id := uuid.New().String()

	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO game_sessions (id, user_id, deck_id, score, started_at, ended_at)
		VALUES (?, ?, ?, NULL, ?, NULL)
	`
	if _, err := tx.Exec(query, id, userID, deckID, startedAt); err != nil {
		return nil, err
	}

	rosterQuery := `
		INSERT INTO game_session_words (session_id, word_id, position)
		VALUES (?, ?, ?)
	`
	for i, wordID := range wordIDs {
		if _, err := tx.Exec(rosterQuery, id, wordID, i); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetSession(id)
}

// GetSession retrieves a session with its ordered roster, nil when absent
func (r *GameRepository) GetSession(id string) (*models.GameSession, error) {
	query := `
		SELECT id, user_id, deck_id, score, started_at, ended_at
		FROM game_sessions
		WHERE id = ?
	`

	session := &models.GameSession{}
	var deckID sql.NullString
	var score sql.NullInt64
	var endedAt sql.NullTime

	err := r.db.QueryRow(query, id).Scan(
		&session.ID,
		&session.UserID,
		&deckID,
		&score,
		&session.StartedAt,
		&endedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if deckID.Valid {
		session.DeckID = deckID.String
	}
	if score.Valid {
		v := int(score.Int64)
		session.Score = &v
	}
	if endedAt.Valid {
		session.EndedAt = &endedAt.Time
	}

	wordIDs, err := r.getRoster(id)
	if err != nil {
		return nil, err
	}
	session.WordIDs = wordIDs

	return session, nil
}

func (r *GameRepository) getRoster(sessionID string) ([]string, error) {
	query := `
		SELECT word_id
		FROM game_session_words
		WHERE session_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wordIDs []string
	for rows.Next() {
		var wordID string
		if err := rows.Scan(&wordID); err != nil {
			return nil, err
		}
		wordIDs = append(wordIDs, wordID)
	}

	return wordIDs, rows.Err()
}

// EndSession performs the one-way terminal transition: score and ended_at
// are set together, only if the session is still open. Returns false when
// the session was already ended (or does not exist); the caller
// distinguishes the two by fetching the session first.
func (r *GameRepository) EndSession(sessionID string, score int, endedAt time.Time) (bool, error) {
	query := `
		UPDATE game_sessions
		SET score = ?, ended_at = ?
		WHERE id = ? AND ended_at IS NULL
	`

	result, err := r.db.Exec(query, score, endedAt, sessionID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpsertAttempt records a pronunciation attempt for (session, word).
// A resubmission overwrites the previous verdict, time and timestamp;
// last write wins.
func (r *GameRepository) UpsertAttempt(sessionID, wordID string, isCorrect bool, responseTimeMs int, attemptedAt time.Time) error {
	query := r.db.Dialect.UpsertAttemptQuery()
	_, err := r.db.Exec(query, uuid.New().String(), sessionID, wordID, isCorrect, responseTimeMs, attemptedAt)
	return err
}

// ListAttempts retrieves all attempts for a session
func (r *GameRepository) ListAttempts(sessionID string) ([]models.GameAttempt, error) {
	query := `
		SELECT id, session_id, word_id, is_correct, response_time_ms, attempted_at
		FROM game_attempts
		WHERE session_id = ?
		ORDER BY attempted_at ASC
	`

	rows, err := r.db.Query(query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAttempts(rows)
}

// ListCompletedSessions retrieves ended sessions for a set of users,
// optionally restricted to one deck, ordered by completion time.
func (r *GameRepository) ListCompletedSessions(userIDs []string, deckID string) ([]models.GameSession, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, user_id, deck_id, score, started_at, ended_at
		FROM game_sessions
		WHERE user_id IN (` + placeholders(len(userIDs)) + `)
		  AND ended_at IS NOT NULL
	`
	args := stringArgs(userIDs)
	if deckID != "" {
		query += " AND deck_id = ?"
		args = append(args, deckID)
	}
	query += " ORDER BY ended_at ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.GameSession
	for rows.Next() {
		var session models.GameSession
		var sessDeckID sql.NullString
		var score sql.NullInt64
		var endedAt sql.NullTime

		err := rows.Scan(
			&session.ID,
			&session.UserID,
			&sessDeckID,
			&score,
			&session.StartedAt,
			&endedAt,
		)
		if err != nil {
			return nil, err
		}

		if sessDeckID.Valid {
			session.DeckID = sessDeckID.String
		}
		if score.Valid {
			v := int(score.Int64)
			session.Score = &v
		}
		if endedAt.Valid {
			session.EndedAt = &endedAt.Time
		}

		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// ListAttemptsForUsers retrieves attempts belonging to COMPLETED sessions
// of the given users, optionally restricted to one deck. Attempts from
// abandoned (never-ended) sessions are excluded so they cannot skew
// error rankings.
func (r *GameRepository) ListAttemptsForUsers(userIDs []string, deckID string) ([]models.GameAttempt, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT a.id, a.session_id, a.word_id, a.is_correct, a.response_time_ms, a.attempted_at
		FROM game_attempts a
		JOIN game_sessions s ON s.id = a.session_id
		WHERE s.user_id IN (` + placeholders(len(userIDs)) + `)
		  AND s.ended_at IS NOT NULL
	`
	args := stringArgs(userIDs)
	if deckID != "" {
		query += " AND s.deck_id = ?"
		args = append(args, deckID)
	}
	query += " ORDER BY a.attempted_at ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAttempts(rows)
}

func scanAttempts(rows *sql.Rows) ([]models.GameAttempt, error) {
	var attempts []models.GameAttempt
	for rows.Next() {
		var attempt models.GameAttempt
		err := rows.Scan(
			&attempt.ID,
			&attempt.SessionID,
			&attempt.WordID,
			&attempt.IsCorrect,
			&attempt.ResponseTimeMs,
			&attempt.AttemptedAt,
		)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}
