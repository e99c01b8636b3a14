package service

import (
	"fmt"
	"sort"
	"time"

	"tonequest/internal/models"
	"tonequest/internal/repository"
)

const topWrongWordsLimit = 20

// StatisticsService aggregates performance data over completed game
// sessions. Sessions that were started but never ended contribute
// nothing.
type StatisticsService struct {
	gameRepo   *repository.GameRepository
	deckRepo   *repository.DeckRepository
	streakRepo *repository.StreakRepository
	userRepo   *repository.UserRepository
	assocRepo  *repository.AssociationRepository
	now        func() time.Time
}

func NewStatisticsService(gameRepo *repository.GameRepository, deckRepo *repository.DeckRepository, streakRepo *repository.StreakRepository, userRepo *repository.UserRepository, assocRepo *repository.AssociationRepository) *StatisticsService {
	return &StatisticsService{
		gameRepo:   gameRepo,
		deckRepo:   deckRepo,
		streakRepo: streakRepo,
		userRepo:   userRepo,
		assocRepo:  assocRepo,
		now:        time.Now,
	}
}

// Authorize checks whether viewer may read target's statistics.
// Everyone may read their own; teachers may read their associated
// students; admins may read anyone.
func (s *StatisticsService) Authorize(viewer *models.User, targetUserID string) error {
	if viewer.ID == targetUserID || viewer.Role == models.RoleAdmin {
		return nil
	}
	if viewer.Role == models.RoleTeacher {
		ok, err := s.assocRepo.HasAssociation(targetUserID, viewer.ID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return ErrForbidden
}

// GetStatistics builds the statistics summary for one user, optionally
// restricted to a single deck
func (s *StatisticsService) GetStatistics(userID, deckID string) (*models.Statistics, error) {
	sessions, err := s.gameRepo.ListCompletedSessions([]string{userID}, deckID)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	stats := &models.Statistics{}

	totalScore := 0
	dayScores := make(map[time.Time][]int)
	for _, sess := range sessions {
		if sess.Score == nil || sess.EndedAt == nil {
			continue
		}
		stats.TotalGames++
		totalScore += *sess.Score
		if *sess.Score > stats.BestScore {
			stats.BestScore = *sess.Score
		}
		day := truncateToDay(*sess.EndedAt)
		dayScores[day] = append(dayScores[day], *sess.Score)
	}
	if stats.TotalGames > 0 {
		stats.AverageScore = float64(totalScore) / float64(stats.TotalGames)
	}

	for day, scores := range dayScores {
		sum := 0
		for _, sc := range scores {
			sum += sc
		}
		stats.ScoresByDate = append(stats.ScoresByDate, models.ScoreByDate{
			Date:  day,
			Score: sum / len(scores),
		})
	}
	sort.Slice(stats.ScoresByDate, func(i, j int) bool {
		return stats.ScoresByDate[i].Date.Before(stats.ScoresByDate[j].Date)
	})

	dates, err := s.streakRepo.GetCompletionDates(userID)
	if err != nil {
		return nil, fmt.Errorf("loading streak days: %w", err)
	}
	streak := ComputeStreaks(dates, s.now())
	stats.CurrentStreak = streak.Current
	stats.LongestStreak = streak.Longest

	wrong, err := s.WordErrorRatios([]string{userID}, deckID)
	if err != nil {
		return nil, err
	}
	stats.TopWrongWords = wrong

	return stats, nil
}

// WordErrorRatios ranks every attempted word by how often the given
// users got it wrong, over completed sessions only. Words never missed
// rank last with ratio 0. Ties on ratio break on total attempts, then
// word id, so the ordering is stable.
func (s *StatisticsService) WordErrorRatios(userIDs []string, deckID string) ([]models.WrongWord, error) {
	attempts, err := s.gameRepo.ListAttemptsForUsers(userIDs, deckID)
	if err != nil {
		return nil, fmt.Errorf("listing attempts: %w", err)
	}
	if len(attempts) == 0 {
		return nil, nil
	}

	type tally struct {
		wrong int
		total int
	}
	tallies := make(map[string]*tally)
	for _, a := range attempts {
		t, ok := tallies[a.WordID]
		if !ok {
			t = &tally{}
			tallies[a.WordID] = t
		}
		t.total++
		if !a.IsCorrect {
			t.wrong++
		}
	}

	wordIDs := make([]string, 0, len(tallies))
	for id := range tallies {
		wordIDs = append(wordIDs, id)
	}

	words, err := s.deckRepo.GetWordsByIDs(wordIDs)
	if err != nil {
		return nil, fmt.Errorf("loading words: %w", err)
	}

	ranked := make([]models.WrongWord, 0, len(wordIDs))
	for _, id := range wordIDs {
		t := tallies[id]
		ww := models.WrongWord{
			WordID:        id,
			WrongCount:    t.wrong,
			TotalAttempts: t.total,
			Ratio:         float64(t.wrong) / float64(t.total),
		}
		if w, ok := words[id]; ok {
			ww.Text = w.Text
			ww.Jyutping = w.Jyutping
		}
		ranked = append(ranked, ww)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Ratio != ranked[j].Ratio {
			return ranked[i].Ratio > ranked[j].Ratio
		}
		if ranked[i].TotalAttempts != ranked[j].TotalAttempts {
			return ranked[i].TotalAttempts > ranked[j].TotalAttempts
		}
		return ranked[i].WordID < ranked[j].WordID
	})

	if len(ranked) > topWrongWordsLimit {
		ranked = ranked[:topWrongWordsLimit]
	}
	return ranked, nil
}

// ScopedWordErrorRatios ranks wrong words over the user scope the
// viewer is entitled to: students see their own, teachers their
// associated students, admins every student.
func (s *StatisticsService) ScopedWordErrorRatios(viewer *models.User, deckID string) ([]models.WrongWord, error) {
	var userIDs []string

	switch viewer.Role {
	case models.RoleAdmin:
		students, err := s.userRepo.ListUsersByRole(models.RoleStudent)
		if err != nil {
			return nil, err
		}
		for _, u := range students {
			userIDs = append(userIDs, u.ID)
		}
	case models.RoleTeacher:
		ids, err := s.assocRepo.ListStudentIDsByTeacher(viewer.ID)
		if err != nil {
			return nil, err
		}
		userIDs = ids
	default:
		userIDs = []string{viewer.ID}
	}

	if len(userIDs) == 0 {
		return nil, nil
	}
	return s.WordErrorRatios(userIDs, deckID)
}

// ListStudents returns summaries for a teacher's students. Admins get
// every student.
func (s *StatisticsService) ListStudents(viewer *models.User) ([]models.StudentSummary, error) {
	var students []models.User

	switch viewer.Role {
	case models.RoleAdmin:
		all, err := s.userRepo.ListUsersByRole(models.RoleStudent)
		if err != nil {
			return nil, err
		}
		students = all
	case models.RoleTeacher:
		ids, err := s.assocRepo.ListStudentIDsByTeacher(viewer.ID)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			u, err := s.userRepo.GetUserByID(id)
			if err != nil {
				return nil, err
			}
			if u != nil {
				students = append(students, *u)
			}
		}
	default:
		return nil, ErrForbidden
	}

	summaries := make([]models.StudentSummary, 0, len(students))
	for _, student := range students {
		sessions, err := s.gameRepo.ListCompletedSessions([]string{student.ID}, "")
		if err != nil {
			return nil, err
		}
		totalScore := 0
		for _, sess := range sessions {
			if sess.Score != nil {
				totalScore += *sess.Score
			}
		}

		dates, err := s.streakRepo.GetCompletionDates(student.ID)
		if err != nil {
			return nil, err
		}
		streak := ComputeStreaks(dates, s.now())

		summaries = append(summaries, models.StudentSummary{
			ID:         student.ID,
			Username:   student.Username,
			Streak:     streak.Current,
			TotalScore: totalScore,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Username < summaries[j].Username
	})
	return summaries, nil
}
