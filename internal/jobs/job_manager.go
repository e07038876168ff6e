package jobs

import (
	"fmt"

	"go.uber.org/zap"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	dealExpirationJob *DealExpirationJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	expireDealsHandler DealSweeper,
	dealExpirationSchedule string,
	logger *zap.Logger,
) *JobManager {
	return &JobManager{
		dealExpirationJob: NewDealExpirationJob(expireDealsHandler, dealExpirationSchedule, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.dealExpirationJob.Start(); err != nil {
		return fmt.Errorf("failed to start deal expiration job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.dealExpirationJob.Stop()
}
