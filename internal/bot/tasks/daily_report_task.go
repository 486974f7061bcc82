package tasks

import (
	"context"
	"fmt"
)

// newDailyReportTask creates the scheduled task that checks, hourly, which
// users are due their previous day's report.
func newDailyReportTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "daily_report")

	return func(ctx context.Context) error {
		log.DebugContext(ctx, "Starting daily report check...")

		if err := deps.Reporter.Run(ctx); err != nil {
			return fmt.Errorf("daily report check failed: %w", err)
		}
		return nil
	}
}
