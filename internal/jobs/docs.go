// Package jobs provides scheduled background tasks for the marketplace.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required by the inventory ledger.
//
// # Available Jobs
//
// 1. DealExpirationJob - Retires active deals whose end date has passed
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(expireDealsHandler, "0 * * * * *", logger)
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
// Schedules are six field cron expressions with a leading seconds field. The default,
// "0 * * * * *", sweeps once a minute; DEAL_EXPIRE_SCHEDULE overrides it. A sweep that is
// still running when the next one is due causes the next one to be skipped.
//
// # Error Handling
//
// - Sweep failures are logged and retried on the next tick
// - Failed job starts are reported by StartAll
package jobs
