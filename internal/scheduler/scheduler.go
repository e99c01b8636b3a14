// Package scheduler runs recurring maintenance jobs.
package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"tonequest/internal/repository"
)

// Scheduler owns the background job runner
type Scheduler struct {
	scheduler *gocron.Scheduler
	userRepo  *repository.UserRepository
	logger    *zap.Logger
}

// New creates a scheduler with all maintenance jobs registered
func New(userRepo *repository.UserRepository, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		userRepo:  userRepo,
		logger:    logger,
	}
}

// Start registers the jobs and begins running them without blocking
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Day().At("03:00").Do(s.cleanupResetTokens)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled jobs
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// cleanupResetTokens purges used and expired password reset tokens
func (s *Scheduler) cleanupResetTokens() {
	removed, err := s.userRepo.DeleteExpiredResetTokens(time.Now())
	if err != nil {
		s.logger.Error("reset token cleanup failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Info("reset token cleanup", zap.Int64("removed", removed))
	}
}
