package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"tonequest/internal/judge"
	"tonequest/internal/models"
	"tonequest/internal/repository"
)

// GameService runs the pronunciation game: session lifecycle, attempt
// judging and scoring.
type GameService struct {
	gameRepo   *repository.GameRepository
	deckRepo   *repository.DeckRepository
	streakRepo *repository.StreakRepository
	judge      judge.Judge
	logger     *zap.Logger
	now        func() time.Time
}

func NewGameService(gameRepo *repository.GameRepository, deckRepo *repository.DeckRepository, streakRepo *repository.StreakRepository, j judge.Judge, logger *zap.Logger) *GameService {
	return &GameService{
		gameRepo:   gameRepo,
		deckRepo:   deckRepo,
		streakRepo: streakRepo,
		judge:      j,
		logger:     logger,
		now:        time.Now,
	}
}

// StartGame creates a session for the user over the given deck. The
// roster is a random permutation of every word in the deck, fixed for
// the lifetime of the session.
func (s *GameService) StartGame(userID, deckID string) (*models.SessionView, error) {
	deck, err := s.deckRepo.GetDeck(deckID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, ErrDeckNotFound
	}

	words, err := s.deckRepo.ListWords(deckID)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrEmptyDeck
	}

	wordIDs := make([]string, len(words))
	for i, w := range words {
		wordIDs[i] = w.ID
	}
	rand.Shuffle(len(wordIDs), func(i, j int) {
		wordIDs[i], wordIDs[j] = wordIDs[j], wordIDs[i]
	})

	session, err := s.gameRepo.CreateSession(userID, deckID, wordIDs, s.now())
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	s.logger.Info("game started",
		zap.String("session_id", session.ID),
		zap.String("user_id", userID),
		zap.String("deck_id", deckID),
		zap.Int("words", len(wordIDs)))

	return s.buildView(session)
}

// GetSession returns the session state for its owner
func (s *GameService) GetSession(userID, sessionID string) (*models.SessionView, error) {
	session, err := s.loadOwnedSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.buildView(session)
}

// SubmitPronunciation judges one pronunciation attempt for a roster
// word and records the verdict. Resubmitting the same word replaces the
// previous attempt. A judge failure still counts as an incorrect
// attempt so one bad recording cannot wedge a game.
func (s *GameService) SubmitPronunciation(ctx context.Context, userID, sessionID, wordID string, in judge.Input, responseTimeMs int) (*models.AttemptResult, error) {
	session, err := s.loadOwnedSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsEnded() {
		return nil, ErrSessionEnded
	}
	if !rosterContains(session.WordIDs, wordID) {
		return nil, ErrWordNotInSession
	}

	word, err := s.deckRepo.GetWord(wordID)
	if err != nil {
		return nil, err
	}
	if word == nil {
		return nil, ErrWordNotFound
	}

	result := &models.AttemptResult{
		ExpectedText:     word.Text,
		ExpectedJyutping: word.Jyutping,
	}

	verdict, err := s.judge.Evaluate(ctx, in, word.Text, word.Jyutping)
	if err != nil {
		if !errors.Is(err, judge.ErrEvaluation) {
			return nil, err
		}
		s.logger.Warn("pronunciation judging failed, recording as incorrect",
			zap.String("session_id", sessionID),
			zap.String("word_id", wordID),
			zap.Error(err))
		result.IsCorrect = false
		result.Feedback = "We could not make out the recording, please try again."
	} else {
		result.IsCorrect = verdict.Correct
		result.Feedback = verdict.Feedback
		result.RecognizedText = verdict.Recognized
	}

	if responseTimeMs < 0 {
		responseTimeMs = 0
	}
	if err := s.gameRepo.UpsertAttempt(sessionID, wordID, result.IsCorrect, responseTimeMs, s.now()); err != nil {
		return nil, fmt.Errorf("recording attempt: %w", err)
	}

	return result, nil
}

// EndGame finalizes a session: computes the score, marks the session
// ended and records the completion for the streak. Ending is one-way;
// a second call fails.
func (s *GameService) EndGame(userID, sessionID string) (*models.SessionView, error) {
	session, err := s.loadOwnedSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsEnded() {
		return nil, ErrSessionEnded
	}

	attempts, err := s.gameRepo.ListAttempts(sessionID)
	if err != nil {
		return nil, err
	}

	score := ComputeScore(attempts)
	endedAt := s.now()

	ended, err := s.gameRepo.EndSession(sessionID, score, endedAt)
	if err != nil {
		return nil, fmt.Errorf("ending session: %w", err)
	}
	if !ended {
		// Lost the race with a concurrent end call
		return nil, ErrSessionEnded
	}

	if err := s.streakRepo.RecordCompletion(userID, endedAt); err != nil {
		return nil, fmt.Errorf("recording streak completion: %w", err)
	}

	s.logger.Info("game ended",
		zap.String("session_id", sessionID),
		zap.String("user_id", userID),
		zap.Int("score", score))

	session.Score = &score
	session.EndedAt = &endedAt
	return s.buildView(session)
}

// ComputeScore derives a session score from its attempts:
// 100 points per correct word, minus a penalty of one point per 100ms
// of average response time, floored at zero. No attempts scores zero.
func ComputeScore(attempts []models.GameAttempt) int {
	if len(attempts) == 0 {
		return 0
	}

	correct := 0
	totalResponseMs := 0
	for _, a := range attempts {
		if a.IsCorrect {
			correct++
		}
		totalResponseMs += a.ResponseTimeMs
	}

	avgResponseMs := float64(totalResponseMs) / float64(len(attempts))
	score := int(float64(correct)*100 - avgResponseMs/100)
	if score < 0 {
		score = 0
	}
	return score
}

func (s *GameService) loadOwnedSession(userID, sessionID string) (*models.GameSession, error) {
	session, err := s.gameRepo.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.UserID != userID {
		return nil, ErrForbidden
	}
	return session, nil
}

// buildView joins the roster with word details and attempt outcomes, in
// roster order. Words deleted since the game started keep their slot
// with empty text.
func (s *GameService) buildView(session *models.GameSession) (*models.SessionView, error) {
	wordMap, err := s.deckRepo.GetWordsByIDs(session.WordIDs)
	if err != nil {
		return nil, err
	}

	attempts, err := s.gameRepo.ListAttempts(session.ID)
	if err != nil {
		return nil, err
	}
	attemptMap := make(map[string]models.GameAttempt, len(attempts))
	for _, a := range attempts {
		attemptMap[a.WordID] = a
	}

	words := make([]models.SessionWord, len(session.WordIDs))
	for i, wordID := range session.WordIDs {
		sw := models.SessionWord{WordID: wordID}
		if w, ok := wordMap[wordID]; ok {
			sw.Text = w.Text
			sw.Jyutping = w.Jyutping
		}
		if a, ok := attemptMap[wordID]; ok {
			correct := a.IsCorrect
			responseMs := a.ResponseTimeMs
			sw.IsCorrect = &correct
			sw.ResponseTimeMs = &responseMs
		}
		words[i] = sw
	}

	return &models.SessionView{Session: *session, Words: words}, nil
}

func rosterContains(wordIDs []string, wordID string) bool {
	for _, id := range wordIDs {
		if id == wordID {
			return true
		}
	}
	return false
}
