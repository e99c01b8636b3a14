package repository

import (
	"time"

	"github.com/google/uuid"

	"tonequest/internal/database"
)

// StreakRepository handles per-day completion records used for streaks
type StreakRepository struct {
	db *database.DB
}

// NewStreakRepository creates a new streak repository
func NewStreakRepository(db *database.DB) *StreakRepository {
	return &StreakRepository{db: db}
}

// RecordCompletion marks one completed game for (user, date). The first
// completion of a day inserts a row; later completions the same day only
// increment the games_completed counter.
func (r *StreakRepository) RecordCompletion(userID string, date time.Time) error {
	query := r.db.Dialect.UpsertStreakDayQuery()
	_, err := r.db.Exec(query, uuid.New().String(), userID, midnightUTC(date))
	return err
}

// GetCompletionDates retrieves the distinct calendar dates on which the
// user completed at least one game, newest first.
func (r *StreakRepository) GetCompletionDates(userID string) ([]time.Time, error) {
	query := `
		SELECT date
		FROM user_streaks
		WHERE user_id = ?
		ORDER BY date DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, err
		}
		dates = append(dates, midnightUTC(date))
	}

	return dates, rows.Err()
}

// midnightUTC truncates a timestamp to its UTC calendar date, the same
// convention the streak computation uses for "today"
func midnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
