package services

import (
	"github.com/robfig/cron/v3"

	"github.com/zuulgate/zuul/backend/internal/logger"
)

// Scheduler runs the background maintenance jobs: nightly audit-record
// retention and, when configured, periodic rule/ignore snapshot reloads.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler builds the cron schedule. reload may be nil when interval
// reloading is disabled; retentionDays <= 0 disables pruning.
func NewScheduler(records *RecordService, retentionDays int, reload func()) *Scheduler {
	c := cron.New()

	if retentionDays > 0 {
		_, err := c.AddFunc("0 3 * * *", func() {
			deleted, err := records.DeleteBefore(retentionDays)
			if err != nil {
				logger.WithError(err).Error("prune audit records")
				return
			}
			logger.WithFields(map[string]interface{}{
				"deleted": deleted,
				"days":    retentionDays,
			}).Info("pruned audit records")
		})
		if err != nil {
			logger.WithError(err).Error("schedule retention job")
		}
	}

	if reload != nil {
		if _, err := c.AddFunc("@every 1m", reload); err != nil {
			logger.WithError(err).Error("schedule snapshot reload")
		}
	}

	return &Scheduler{cron: c}
}

// Start launches the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
