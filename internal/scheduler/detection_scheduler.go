package scheduler

import (
	"context"

	"github.com/pngsmec/msme-registry-backend/internal/app/service"
	"github.com/pngsmec/msme-registry-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// DetectionScheduler runs the duplicate scan on a fixed schedule so the
// review queue is populated without an officer triggering it by hand.
type DetectionScheduler struct {
	cron             *cron.Cron
	duplicateService service.DuplicateService
	schedule         string
}

func NewDetectionScheduler(duplicateService service.DuplicateService, schedule string) *DetectionScheduler {
	return &DetectionScheduler{
		cron:             cron.New(),
		duplicateService: duplicateService,
		schedule:         schedule,
	}
}

func (s *DetectionScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		logger.Info("Starting scheduled duplicate detection run", map[string]interface{}{
			"schedule": s.schedule,
		})

		result, err := s.duplicateService.RunDetection(context.Background(), service.DetectionOptions{})
		if err != nil {
			logger.Error("Scheduled duplicate detection failed", err)
			return
		}

		logger.Info("Scheduled duplicate detection completed", map[string]interface{}{
			"records_scanned":  result.RecordsScanned,
			"pairs_evaluated":  result.PairsEvaluated,
			"candidates_found": result.CandidatesFound,
		})
	})
	if err != nil {
		logger.Error("Failed to add cron job for duplicate detection", err)
		return err
	}

	s.cron.Start()
	logger.Info("Duplicate detection scheduler started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

func (s *DetectionScheduler) Stop() {
	logger.Info("Stopping duplicate detection scheduler...", nil)
	s.cron.Stop()
	logger.Info("Duplicate detection scheduler stopped", nil)
}
