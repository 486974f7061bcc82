// Package tasks implements the scheduled jobs of the bot: the activity poll
// sweep, the daily report check, and database maintenance.
package tasks

import (
	"log/slog"

	"github.com/pulselog/pulselog/internal/config"
	"github.com/pulselog/pulselog/internal/database"
	"github.com/pulselog/pulselog/internal/dispatch"
	"github.com/pulselog/pulselog/internal/poll"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Store    database.Store
	Sweeper  *poll.Sweeper
	Reporter *dispatch.Reporter
}
