package models

import "time"

// GameSession represents one play-through of a deck.
// Score and EndedAt are set together, exactly once, when the game ends.
type GameSession struct {
	ID        string
	UserID    string
	DeckID    string // empty after the parent deck is deleted
	WordIDs   []string
	Score     *int
	StartedAt time.Time
	EndedAt   *time.Time
}

// IsEnded reports whether the session has reached its terminal state
func (s *GameSession) IsEnded() bool {
	return s.EndedAt != nil
}

// GameAttempt records the latest pronunciation judgment for a
// (session, word) pair. Resubmissions overwrite in place.
type GameAttempt struct {
	ID             string
	SessionID      string
	WordID         string
	IsCorrect      bool
	ResponseTimeMs int
	AttemptedAt    time.Time
}

// SessionWord is one roster entry annotated with its attempt outcome,
// if any. IsCorrect and ResponseTimeMs are nil until the word has been
// attempted.
type SessionWord struct {
	WordID         string
	Text           string
	Jyutping       string
	IsCorrect      *bool
	ResponseTimeMs *int
}

// SessionView is the full session state returned to the player
type SessionView struct {
	Session GameSession
	Words   []SessionWord
}

// AttemptResult is the outcome of a single pronunciation submission
type AttemptResult struct {
	IsCorrect        bool
	Feedback         string
	RecognizedText   string
	ExpectedText     string
	ExpectedJyutping string
}
