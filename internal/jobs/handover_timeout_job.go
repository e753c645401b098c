package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"partialdelivery/internal/core/application/usecases/commands"
)

// HandoverTimeoutJob sweeps overdue handovers. Runs every fifteen seconds;
// the confirmation window itself is enforced down to the second by the
// confirm handler, the sweep only cleans up handovers nobody is trying to
// confirm anymore.
type HandoverTimeoutJob struct {
	handler commands.ExpireHandoversCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewHandoverTimeoutJob creates the sweep job.
func NewHandoverTimeoutJob(handler commands.ExpireHandoversCommandHandler, logger *slog.Logger) *HandoverTimeoutJob {
	return &HandoverTimeoutJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "handover_timeout_job"),
	}
}

// Start begins the sweep on a fifteen second schedule.
func (j *HandoverTimeoutJob) Start() error {
	_, err := j.cron.AddFunc("*/15 * * * * *", func() {
		ctx := context.Background()
		cmd := commands.NewExpireHandoversCommand()

		abandoned, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Handover timeout sweep failed", "error", err)
			return
		}
		if abandoned > 0 {
			j.logger.InfoContext(ctx, "Abandoned overdue handovers", "count", abandoned)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Handover timeout job started (running every 15 seconds)")
	return nil
}

// Stop stops the sweep.
func (j *HandoverTimeoutJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Handover timeout job stopped")
}
