package tasks

import (
	"context"
	"fmt"
)

// newActivityPollTask creates the scheduled task that runs the activity poll
// sweep. The sweeper itself handles per-user windows and failure isolation.
func newActivityPollTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "activity_poll")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting activity poll sweep...")

		if err := deps.Sweeper.Sweep(ctx); err != nil {
			return fmt.Errorf("activity poll sweep failed: %w", err)
		}
		return nil
	}
}
