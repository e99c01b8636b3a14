package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"tonequest/internal/service"
)

// StatsHandler serves statistics and student listings
type StatsHandler struct {
	stats  *service.StatisticsService
	logger *zap.Logger
}

func NewStatsHandler(stats *service.StatisticsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, logger: logger}
}

// MyStatistics handles GET /api/statistics. An optional deckId query
// parameter restricts the summary to one deck.
func (h *StatsHandler) MyStatistics(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	stats, err := h.stats.GetStatistics(user.ID, r.URL.Query().Get("deckId"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newStatisticsView(stats))
}

// UserStatistics handles GET /api/users/{id}/statistics for teachers
// viewing their students and admins viewing anyone
func (h *StatsHandler) UserStatistics(w http.ResponseWriter, r *http.Request) {
	viewer := UserFromContext(r.Context())
	targetID := r.PathValue("id")

	if err := h.stats.Authorize(viewer, targetID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	stats, err := h.stats.GetStatistics(targetID, r.URL.Query().Get("deckId"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newStatisticsView(stats))
}

// WordErrorRatios handles GET /api/words/error-ratios. The scope
// follows the caller's role: students get their own ranking, teachers
// their students', admins everyone's.
func (h *StatsHandler) WordErrorRatios(w http.ResponseWriter, r *http.Request) {
	viewer := UserFromContext(r.Context())
	ranked, err := h.stats.ScopedWordErrorRatios(viewer, r.URL.Query().Get("deckId"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	views := make([]wrongWordView, len(ranked))
	for i, ww := range ranked {
		views[i] = newWrongWordView(ww)
	}
	respondJSON(w, http.StatusOK, views)
}

// ListStudents handles GET /api/students
func (h *StatsHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	viewer := UserFromContext(r.Context())
	students, err := h.stats.ListStudents(viewer)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	views := make([]studentSummaryView, len(students))
	for i, s := range students {
		views[i] = newStudentSummaryView(s)
	}
	respondJSON(w, http.StatusOK, views)
}
