package handlers

import (
	"log/slog"

	"github.com/pulselog/pulselog/internal/config"
	"github.com/pulselog/pulselog/internal/database"
	"github.com/pulselog/pulselog/internal/poll"
	"github.com/pulselog/pulselog/internal/session"
	"github.com/pulselog/pulselog/internal/tracker"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Store    database.Store
	Sessions *session.Tracker
	Tracker  *tracker.Service
	Sweeper  *poll.Sweeper
}
