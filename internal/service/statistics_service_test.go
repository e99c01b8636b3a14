package service

import (
	"context"
	"errors"
	"testing"

	"tonequest/internal/judge"
	"tonequest/internal/models"
)

func (env *testEnv) newStatsService() *StatisticsService {
	return NewStatisticsService(env.gameRepo, env.deckRepo, env.streakRepo, env.userRepo, env.assocRepo)
}

// playGame runs a full session for user, answering each roster word
// with the verdict from corrects (missing entries default to correct),
// and ends it unless abandon is set
func (env *testEnv) playGame(t *testing.T, user *models.User, deckID string, corrects map[string]bool, abandon bool) {
	t.Helper()

	j := judge.Func(func(ctx context.Context, in judge.Input, expectedText, expectedJyutping string) (judge.Result, error) {
		correct, ok := corrects[expectedText]
		if !ok {
			correct = true
		}
		return judge.Result{Correct: correct, Recognized: in.Recognized}, nil
	})
	games := env.newGameService(t, j)

	view, err := games.StartGame(user.ID, deckID)
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	ctx := context.Background()
	for _, w := range view.Words {
		if _, err := games.SubmitPronunciation(ctx, user.ID, view.Session.ID, w.WordID, judge.Input{Recognized: w.Text}, 400); err != nil {
			t.Fatalf("submission failed: %v", err)
		}
	}
	if !abandon {
		if _, err := games.EndGame(user.ID, view.Session.ID); err != nil {
			t.Fatalf("EndGame failed: %v", err)
		}
	}
}

func TestGetStatisticsSummary(t *testing.T) {
	env := newTestEnv(t)
	stats := env.newStatsService()
	user := env.createUser(t, "player", models.RoleStudent)
	deck := env.createDeck(t, "一", "二")

	// First game all correct, second game gets one word wrong
	env.playGame(t, user, deck.ID, nil, false)
	env.playGame(t, user, deck.ID, map[string]bool{"一": false}, false)

	summary, err := stats.GetStatistics(user.ID, "")
	if err != nil {
		t.Fatalf("GetStatistics failed: %v", err)
	}

	if summary.TotalGames != 2 {
		t.Errorf("expected 2 games, got %d", summary.TotalGames)
	}
	// Both games: 2 words at 400ms avg. Game one 200-4=196, game two 100-4=96.
	if summary.BestScore != 196 {
		t.Errorf("expected best score 196, got %d", summary.BestScore)
	}
	if summary.AverageScore != 146 {
		t.Errorf("expected average score 146, got %v", summary.AverageScore)
	}
	if summary.CurrentStreak != 1 || summary.LongestStreak != 1 {
		t.Errorf("expected streak 1/1, got %d/%d", summary.CurrentStreak, summary.LongestStreak)
	}
	if len(summary.ScoresByDate) != 1 || summary.ScoresByDate[0].Score != 146 {
		t.Errorf("unexpected scores by date: %+v", summary.ScoresByDate)
	}

	// Every attempted word ranks; the never-missed word trails at ratio 0
	if len(summary.TopWrongWords) != 2 {
		t.Fatalf("expected 2 ranked words, got %d", len(summary.TopWrongWords))
	}
	ww := summary.TopWrongWords[0]
	if ww.Text != "一" || ww.WrongCount != 1 || ww.TotalAttempts != 2 || ww.Ratio != 0.5 {
		t.Errorf("unexpected wrong word entry: %+v", ww)
	}
	last := summary.TopWrongWords[1]
	if last.Text != "二" || last.WrongCount != 0 || last.TotalAttempts != 2 || last.Ratio != 0 {
		t.Errorf("unexpected trailing entry: %+v", last)
	}
}

func TestWrongWordRankingExcludesAbandonedSessions(t *testing.T) {
	env := newTestEnv(t)
	stats := env.newStatsService()
	user := env.createUser(t, "player", models.RoleStudent)
	deck := env.createDeck(t, "一")

	// The only incorrect attempts live in a session that never ended
	env.playGame(t, user, deck.ID, map[string]bool{"一": false}, true)

	summary, err := stats.GetStatistics(user.ID, "")
	if err != nil {
		t.Fatalf("GetStatistics failed: %v", err)
	}
	if summary.TotalGames != 0 {
		t.Errorf("abandoned session counted as a game: %d", summary.TotalGames)
	}
	if len(summary.TopWrongWords) != 0 {
		t.Errorf("abandoned session contaminated wrong-word ranking: %+v", summary.TopWrongWords)
	}
}

func TestWrongWordRankingTieBreaks(t *testing.T) {
	env := newTestEnv(t)
	stats := env.newStatsService()
	user := env.createUser(t, "player", models.RoleStudent)
	deck := env.createDeck(t, "一", "二")

	// Both words wrong once each game; word ratios equal, attempt
	// counts equal, so ordering falls back to word id
	env.playGame(t, user, deck.ID, map[string]bool{"一": false, "二": false}, false)

	wrong, err := stats.WordErrorRatios([]string{user.ID}, "")
	if err != nil {
		t.Fatalf("WordErrorRatios failed: %v", err)
	}
	if len(wrong) != 2 {
		t.Fatalf("expected 2 ranked words, got %d", len(wrong))
	}
	if wrong[0].WordID >= wrong[1].WordID {
		t.Errorf("equal ratios and attempts must order by word id: %q then %q", wrong[0].WordID, wrong[1].WordID)
	}
}

func TestStatisticsAuthorization(t *testing.T) {
	env := newTestEnv(t)
	stats := env.newStatsService()

	student := env.createUser(t, "student", models.RoleStudent)
	outsider := env.createUser(t, "outsider", models.RoleStudent)
	teacher := env.createUser(t, "teacher", models.RoleTeacher)
	admin := env.createUser(t, "admin", models.RoleAdmin)

	if err := env.assocRepo.CreateAssociation(student.ID, teacher.ID); err != nil {
		t.Fatalf("CreateAssociation failed: %v", err)
	}

	tests := []struct {
		name    string
		viewer  *models.User
		target  string
		wantErr error
	}{
		{"self access", student, student.ID, nil},
		{"admin reads anyone", admin, outsider.ID, nil},
		{"teacher reads associated student", teacher, student.ID, nil},
		{"teacher blocked from unassociated student", teacher, outsider.ID, ErrForbidden},
		{"student blocked from other student", student, outsider.ID, ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := stats.Authorize(tt.viewer, tt.target)
			if tt.wantErr == nil && err != nil {
				t.Errorf("expected access, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestListStudentsScopedToTeacher(t *testing.T) {
	env := newTestEnv(t)
	stats := env.newStatsService()

	mine := env.createUser(t, "mine", models.RoleStudent)
	other := env.createUser(t, "other", models.RoleStudent)
	teacher := env.createUser(t, "teacher", models.RoleTeacher)

	if err := env.assocRepo.CreateAssociation(mine.ID, teacher.ID); err != nil {
		t.Fatalf("CreateAssociation failed: %v", err)
	}

	deck := env.createDeck(t, "一")
	env.playGame(t, mine, deck.ID, nil, false)
	env.playGame(t, other, deck.ID, nil, false)

	students, err := stats.ListStudents(teacher)
	if err != nil {
		t.Fatalf("ListStudents failed: %v", err)
	}
	if len(students) != 1 || students[0].ID != mine.ID {
		t.Fatalf("teacher listing must contain only associated students: %+v", students)
	}
	if students[0].TotalScore == 0 {
		t.Error("expected associated student's score in summary")
	}
	if students[0].Streak != 1 {
		t.Errorf("expected streak 1, got %d", students[0].Streak)
	}
}

func TestScopedWordErrorRatiosFollowsViewerRole(t *testing.T) {
	env := newTestEnv(t)
	stats := env.newStatsService()

	mine := env.createUser(t, "mine", models.RoleStudent)
	other := env.createUser(t, "other", models.RoleStudent)
	teacher := env.createUser(t, "teacher", models.RoleTeacher)
	admin := env.createUser(t, "admin", models.RoleAdmin)

	if err := env.assocRepo.CreateAssociation(mine.ID, teacher.ID); err != nil {
		t.Fatalf("CreateAssociation failed: %v", err)
	}

	deck := env.createDeck(t, "一", "二")
	// Associated student misses 一, the other student misses 二.
	env.playGame(t, mine, deck.ID, map[string]bool{"一": false}, false)
	env.playGame(t, other, deck.ID, map[string]bool{"二": false}, false)

	// Teacher scope sees only the associated student: 一 missed once
	// (ratio 1), 二 never missed (ratio 0, last).
	teacherRanked, err := stats.ScopedWordErrorRatios(teacher, "")
	if err != nil {
		t.Fatalf("ScopedWordErrorRatios failed: %v", err)
	}
	if len(teacherRanked) != 2 || teacherRanked[0].Text != "一" || teacherRanked[0].Ratio != 1 {
		t.Fatalf("teacher scope must cover associated students only: %+v", teacherRanked)
	}
	if teacherRanked[1].Text != "二" || teacherRanked[1].Ratio != 0 {
		t.Fatalf("never-missed word must trail at ratio 0: %+v", teacherRanked)
	}

	// Admin scope pools both students: each word missed once in two attempts
	adminRanked, err := stats.ScopedWordErrorRatios(admin, "")
	if err != nil {
		t.Fatalf("ScopedWordErrorRatios failed: %v", err)
	}
	if len(adminRanked) != 2 {
		t.Fatalf("admin scope must cover all students, got %+v", adminRanked)
	}
	for _, ww := range adminRanked {
		if ww.Ratio != 0.5 || ww.TotalAttempts != 2 {
			t.Errorf("expected pooled ratio 0.5 over 2 attempts: %+v", ww)
		}
	}

	selfRanked, err := stats.ScopedWordErrorRatios(mine, "")
	if err != nil {
		t.Fatalf("ScopedWordErrorRatios failed: %v", err)
	}
	if len(selfRanked) != 2 || selfRanked[0].Text != "一" {
		t.Fatalf("student scope must cover only their own attempts: %+v", selfRanked)
	}
}
