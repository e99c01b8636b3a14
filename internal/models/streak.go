package models

import "time"

// StreakDay marks one calendar day on which a user completed at least
// one game. GamesCompleted counts completions that day; extra games on
// the same day never extend the streak.
type StreakDay struct {
	ID             string
	UserID         string
	Date           time.Time // calendar date, time part zero
	GamesCompleted int
}

// Streak summarizes a user's consecutive-day completion runs
type Streak struct {
	Current int
	Longest int
}

// ScoreByDate is the average score of completed sessions on one day
type ScoreByDate struct {
	Date  time.Time
	Score int
}

// WrongWord ranks a word by how often it was pronounced incorrectly
type WrongWord struct {
	WordID        string
	Text          string
	Jyutping      string
	WrongCount    int
	TotalAttempts int
	Ratio         float64
}

// Statistics is the per-user (or aggregate) summary over completed sessions
type Statistics struct {
	TotalGames    int
	AverageScore  float64
	BestScore     int
	CurrentStreak int
	LongestStreak int
	ScoresByDate  []ScoreByDate
	TopWrongWords []WrongWord
}

// StudentSummary is one row in a teacher's or admin's student listing
type StudentSummary struct {
	ID         string
	Username   string
	Streak     int
	TotalScore int
}
