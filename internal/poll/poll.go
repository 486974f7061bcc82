// Package poll implements the periodic activity poll sweep: deciding, per
// user, whether to send a "what are you doing?" prompt right now.
package poll

import (
	"context"
	"log/slog"
	"time"

	"github.com/pulselog/pulselog/internal/database"
	"github.com/pulselog/pulselog/internal/localtime"
	"github.com/pulselog/pulselog/internal/session"
)

// Store is the subset of the data access layer the sweeper needs.
type Store interface {
	ListUserIDsWithTimezone(ctx context.Context) ([]int64, error)
	GetUserSettings(ctx context.Context, userID int64) (*database.UserSettings, error)
}

// Messenger delivers the prompt text to a user.
type Messenger interface {
	SendText(ctx context.Context, userID int64, text string) error
}

// Window is a local daily hour range, inclusive of both boundary hours.
type Window struct {
	StartHour int
	EndHour   int
}

// Contains reports whether the local hour falls inside the window.
func (w Window) Contains(hour int) bool {
	return w.StartHour <= hour && hour <= w.EndHour
}

// valid reports whether the window is usable: hours in range and start
// strictly before end.
func (w Window) valid() bool {
	return 0 <= w.StartHour && w.StartHour < w.EndHour && w.EndHour <= 23
}

// Sweeper runs the activity poll over all users with a timezone configured.
// It is driven on a fixed cadence by the scheduler and on demand by /asknow.
type Sweeper struct {
	store         Store
	sessions      *session.Tracker
	messenger     Messenger
	logger        *slog.Logger
	prompt        string
	defaultWindow Window
	sendDelay     time.Duration
	now           func() time.Time
}

// NewSweeper creates a poll sweeper. now is injectable for tests; nil means
// time.Now.
func NewSweeper(
	store Store,
	sessions *session.Tracker,
	messenger Messenger,
	logger *slog.Logger,
	prompt string,
	defaultWindow Window,
	sendDelay time.Duration,
	now func() time.Time,
) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Sweeper{
		store:         store,
		sessions:      sessions,
		messenger:     messenger,
		logger:        logger.With("component", "poll_sweeper"),
		prompt:        prompt,
		defaultWindow: defaultWindow,
		sendDelay:     sendDelay,
		now:           now,
	}
}

// Sweep asks every eligible user what they are doing. A user is eligible when
// their local hour is inside their poll window, their conversation is idle,
// and no earlier prompt is still outstanding. Per-user failures reset that
// user's pending state and never abort the sweep; only context cancellation
// stops it early.
func (s *Sweeper) Sweep(ctx context.Context) error {
	userIDs, err := s.store.ListUserIDsWithTimezone(ctx)
	if err != nil {
		return err
	}
	if len(userIDs) == 0 {
		s.logger.InfoContext(ctx, "No users with timezone configured, nothing to poll")
		return nil
	}

	nowUTC := s.now().UTC()
	prompted := 0

	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.pollUser(ctx, userID, nowUTC) {
			prompted++
			// Brief pause between sends to respect downstream rate limits.
			if !sleepCtx(ctx, s.sendDelay) {
				return ctx.Err()
			}
		}
	}

	s.logger.InfoContext(ctx, "Finished activity poll sweep", "users", len(userIDs), "prompted", prompted)
	return nil
}

// pollUser handles a single user and reports whether a prompt was sent.
func (s *Sweeper) pollUser(ctx context.Context, userID int64, nowUTC time.Time) bool {
	log := s.logger.With("user_id", userID)

	settings, err := s.store.GetUserSettings(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load user settings, skipping user", "error", err)
		return false
	}
	if settings == nil {
		log.WarnContext(ctx, "User disappeared between listing and lookup, skipping")
		return false
	}

	window := Window{StartHour: settings.PollStartHour, EndHour: settings.PollEndHour}
	if !window.valid() {
		log.WarnContext(ctx, "Invalid poll window stored, using default",
			"start", window.StartHour, "end", window.EndHour)
		window = s.defaultWindow
	}

	loc := localtime.Location(settings.Timezone.String)
	localHour := nowUTC.In(loc).Hour()
	if !window.Contains(localHour) {
		log.DebugContext(ctx, "Local hour outside poll window, skipping",
			"local_hour", localHour, "window_start", window.StartHour, "window_end", window.EndHour)
		return false
	}

	// Claim the conversation before the send so an interleaved sweep cannot
	// double-prompt. BeginPrompt refuses when a prompt is still outstanding
	// or any conversation is pending.
	if !s.sessions.BeginPrompt(userID) {
		log.WarnContext(ctx, "Previous prompt still unanswered, not re-prompting")
		return false
	}

	if err := s.messenger.SendText(ctx, userID, s.prompt); err != nil {
		// Delivery refused (user blocked the bot, network trouble). Release
		// the claimed state so the next sweep can try again.
		s.sessions.Reset(userID)
		log.WarnContext(ctx, "Failed to deliver activity prompt, state reset", "error", err)
		return false
	}

	log.InfoContext(ctx, "Activity prompt sent", "local_time", localtime.FormatClock(nowUTC, loc))
	return true
}

// sleepCtx waits for d or until the context is cancelled. It returns false on
// cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
