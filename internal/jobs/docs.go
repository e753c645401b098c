// Package jobs provides scheduled background tasks for the delivery system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required for partial delivery coordination.
//
// # Available Jobs
//
// 1. HandoverTimeoutJob - Runs every 15 seconds to abandon handovers whose confirmation window has elapsed
// 2. SegmentStalenessJob - Runs every 30 seconds to fail in-progress segments of couriers that stopped reporting their location
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(expireHandoversHandler, failStaleSegmentsHandler, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The timeout job uses the cron expression "*/15 * * * * *" and the staleness
// job uses "*/30 * * * * *". Both windows are generous compared to the job
// intervals, so a missed tick only delays a sweep rather than losing it.
//
// # Error Handling
//
// - Timeout job logs sweep failures and continues on the next tick
// - Staleness job logs partial failures but still reports the segments it managed to fail
// - Failed job starts will stop any already running jobs
package jobs
