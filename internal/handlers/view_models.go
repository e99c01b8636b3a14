package handlers

import (
	"time"

	"tonequest/internal/models"
)

// JSON shapes returned by the API. Kept separate from the domain models
// so storage fields like password hashes never leak into responses.

type userView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func newUserView(u *models.User) userView {
	return userView{
		ID:        u.ID,
		Username:  u.Username,
		Role:      string(u.Role),
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

type tokenView struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

type deckView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newDeckView(d models.Deck) deckView {
	return deckView{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
	}
}

type wordView struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Jyutping string `json:"jyutping"`
	DeckID   string `json:"deckId"`
}

func newWordView(w models.Word) wordView {
	return wordView{
		ID:       w.ID,
		Text:     w.Text,
		Jyutping: w.Jyutping,
		DeckID:   w.DeckID,
	}
}

type deckWithWordsView struct {
	deckView
	Words []wordView `json:"words"`
}

func newDeckWithWordsView(d *models.DeckWithWords) deckWithWordsView {
	words := make([]wordView, len(d.Words))
	for i, w := range d.Words {
		words[i] = newWordView(w)
	}
	return deckWithWordsView{deckView: newDeckView(d.Deck), Words: words}
}

type sessionWordView struct {
	WordID         string `json:"wordId"`
	Text           string `json:"text"`
	Jyutping       string `json:"jyutping"`
	IsCorrect      *bool  `json:"isCorrect"`
	ResponseTimeMs *int   `json:"responseTimeMs"`
}

type sessionView struct {
	ID        string            `json:"id"`
	DeckID    string            `json:"deckId,omitempty"`
	Score     *int              `json:"score"`
	StartedAt time.Time         `json:"startedAt"`
	EndedAt   *time.Time        `json:"endedAt"`
	Words     []sessionWordView `json:"words"`
}

func newSessionView(v *models.SessionView) sessionView {
	words := make([]sessionWordView, len(v.Words))
	for i, w := range v.Words {
		words[i] = sessionWordView{
			WordID:         w.WordID,
			Text:           w.Text,
			Jyutping:       w.Jyutping,
			IsCorrect:      w.IsCorrect,
			ResponseTimeMs: w.ResponseTimeMs,
		}
	}
	return sessionView{
		ID:        v.Session.ID,
		DeckID:    v.Session.DeckID,
		Score:     v.Session.Score,
		StartedAt: v.Session.StartedAt,
		EndedAt:   v.Session.EndedAt,
		Words:     words,
	}
}

type attemptResultView struct {
	IsCorrect        bool   `json:"isCorrect"`
	Feedback         string `json:"feedback"`
	RecognizedText   string `json:"recognizedText,omitempty"`
	ExpectedText     string `json:"expectedText"`
	ExpectedJyutping string `json:"expectedJyutping"`
}

func newAttemptResultView(r *models.AttemptResult) attemptResultView {
	return attemptResultView{
		IsCorrect:        r.IsCorrect,
		Feedback:         r.Feedback,
		RecognizedText:   r.RecognizedText,
		ExpectedText:     r.ExpectedText,
		ExpectedJyutping: r.ExpectedJyutping,
	}
}

type scoreByDateView struct {
	Date  string `json:"date"`
	Score int    `json:"score"`
}

type wrongWordView struct {
	WordID        string  `json:"wordId"`
	Text          string  `json:"text"`
	Jyutping      string  `json:"jyutping"`
	WrongCount    int     `json:"wrongCount"`
	TotalAttempts int     `json:"totalAttempts"`
	Ratio         float64 `json:"ratio"`
}

func newWrongWordView(ww models.WrongWord) wrongWordView {
	return wrongWordView{
		WordID:        ww.WordID,
		Text:          ww.Text,
		Jyutping:      ww.Jyutping,
		WrongCount:    ww.WrongCount,
		TotalAttempts: ww.TotalAttempts,
		Ratio:         ww.Ratio,
	}
}

type statisticsView struct {
	TotalGames    int               `json:"totalGames"`
	AverageScore  float64           `json:"averageScore"`
	BestScore     int               `json:"bestScore"`
	CurrentStreak int               `json:"currentStreak"`
	LongestStreak int               `json:"longestStreak"`
	ScoresByDate  []scoreByDateView `json:"scoresByDate"`
	TopWrongWords []wrongWordView   `json:"topWrongWords"`
}

func newStatisticsView(s *models.Statistics) statisticsView {
	scores := make([]scoreByDateView, len(s.ScoresByDate))
	for i, sd := range s.ScoresByDate {
		scores[i] = scoreByDateView{
			Date:  sd.Date.Format("2006-01-02"),
			Score: sd.Score,
		}
	}
	wrong := make([]wrongWordView, len(s.TopWrongWords))
	for i, ww := range s.TopWrongWords {
		wrong[i] = newWrongWordView(ww)
	}
	return statisticsView{
		TotalGames:    s.TotalGames,
		AverageScore:  s.AverageScore,
		BestScore:     s.BestScore,
		CurrentStreak: s.CurrentStreak,
		LongestStreak: s.LongestStreak,
		ScoresByDate:  scores,
		TopWrongWords: wrong,
	}
}

type studentSummaryView struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Streak     int    `json:"streak"`
	TotalScore int    `json:"totalScore"`
}

func newStudentSummaryView(s models.StudentSummary) studentSummaryView {
	return studentSummaryView{
		ID:         s.ID,
		Username:   s.Username,
		Streak:     s.Streak,
		TotalScore: s.TotalScore,
	}
}

type importResultView struct {
	TotalRows int      `json:"totalRows"`
	Imported  int      `json:"imported"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors,omitempty"`
}
