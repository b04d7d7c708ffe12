package scheduler

import (
	"github.com/medikart/medikart-backend/internal/app/service"
	"github.com/medikart/medikart-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// ProgressScheduler periodically removes registrations whose draft store
// was deleted out-of-band. Such rows already read as "no progress"; the
// sweep keeps them from piling up.
type ProgressScheduler struct {
	cron              *cron.Cron
	onboardingService service.OnboardingService
	schedule          string
}

func NewProgressScheduler(onboardingService service.OnboardingService, schedule string) *ProgressScheduler {
	return &ProgressScheduler{
		cron:              cron.New(),
		onboardingService: onboardingService,
		schedule:          schedule,
	}
}

func (s *ProgressScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		logger.Info("Starting drifted-registration sweep", nil)

		removed, sweepErr := s.onboardingService.CleanupDriftedProgress()
		if sweepErr != nil {
			logger.Error("Drifted-registration sweep failed", sweepErr)
			return
		}

		logger.Info("Drifted-registration sweep finished", map[string]interface{}{
			"removed": removed,
		})
	})
	if err != nil {
		logger.Error("Failed to schedule drifted-registration sweep", err)
		return err
	}

	s.cron.Start()
	logger.Info("Progress scheduler started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

func (s *ProgressScheduler) Stop() {
	logger.Info("Stopping progress scheduler...", nil)
	s.cron.Stop()
	logger.Info("Progress scheduler stopped", nil)
}
