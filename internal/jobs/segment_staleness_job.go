package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"partialdelivery/internal/core/application/usecases/commands"
)

// SegmentStalenessJob fails in-progress segments whose courier went silent.
// Runs every thirty seconds; the staleness window is measured from the last
// location report, so one missed sweep only delays the failure by the sweep
// interval.
type SegmentStalenessJob struct {
	handler commands.FailStaleSegmentsCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewSegmentStalenessJob creates the sweep job.
func NewSegmentStalenessJob(handler commands.FailStaleSegmentsCommandHandler, logger *slog.Logger) *SegmentStalenessJob {
	return &SegmentStalenessJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "segment_staleness_job"),
	}
}

// Start begins the sweep on a thirty second schedule.
func (j *SegmentStalenessJob) Start() error {
	_, err := j.cron.AddFunc("*/30 * * * * *", func() {
		ctx := context.Background()
		cmd := commands.NewFailStaleSegmentsCommand()

		failed, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			// Partial sweeps still report how far they got.
			j.logger.ErrorContext(ctx, "Segment staleness sweep failed", "failed_segments", failed, "error", err)
			return
		}
		if failed > 0 {
			j.logger.InfoContext(ctx, "Failed stale segments", "count", failed)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Segment staleness job started (running every 30 seconds)")
	return nil
}

// Stop stops the sweep.
func (j *SegmentStalenessJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Segment staleness job stopped")
}
