package jobs

import (
	"fmt"
	"log/slog"

	"partialdelivery/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	handoverTimeoutJob  *HandoverTimeoutJob
	segmentStalenessJob *SegmentStalenessJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	expireHandoversHandler commands.ExpireHandoversCommandHandler,
	failStaleSegmentsHandler commands.FailStaleSegmentsCommandHandler,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		handoverTimeoutJob:  NewHandoverTimeoutJob(expireHandoversHandler, logger),
		segmentStalenessJob: NewSegmentStalenessJob(failStaleSegmentsHandler, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.handoverTimeoutJob.Start(); err != nil {
		return fmt.Errorf("failed to start handover timeout job: %w", err)
	}

	if err := jm.segmentStalenessJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.handoverTimeoutJob.Stop()
		return fmt.Errorf("failed to start segment staleness job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.handoverTimeoutJob.Stop()
	jm.segmentStalenessJob.Stop()
}
