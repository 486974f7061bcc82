// Package dispatch implements the daily report sweep: an hourly check that
// delivers each user's report for the completed previous day exactly once, at
// their configured local hour.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pulselog/pulselog/internal/database"
	"github.com/pulselog/pulselog/internal/localtime"
	"github.com/pulselog/pulselog/internal/report"
)

// Store is the subset of the data access layer the reporter needs.
type Store interface {
	ListUserIDsWithTimezone(ctx context.Context) ([]int64, error)
	GetUserSettings(ctx context.Context, userID int64) (*database.UserSettings, error)
	ActivitiesInRange(ctx context.Context, userID int64, from, to time.Time) ([]database.Activity, error)
	UpdateLastReportDate(ctx context.Context, userID int64, date string) (bool, error)
}

// Messenger delivers reports and notices to a user.
type Messenger interface {
	SendText(ctx context.Context, userID int64, text string) error
	SendDocument(ctx context.Context, userID int64, filename, caption string, content []byte) error
}

// Reporter runs the hourly daily-report check over all users with a timezone
// configured.
type Reporter struct {
	store       Store
	messenger   Messenger
	logger      *slog.Logger
	defaultHour int
	noRecords   string // format string taking the report date
	caption     string // format string taking the report date
	sendDelay   time.Duration
	now         func() time.Time
}

// NewReporter creates a daily report dispatcher. now is injectable for tests;
// nil means time.Now.
func NewReporter(
	store Store,
	messenger Messenger,
	logger *slog.Logger,
	defaultHour int,
	noRecords, caption string,
	sendDelay time.Duration,
	now func() time.Time,
) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Reporter{
		store:       store,
		messenger:   messenger,
		logger:      logger.With("component", "daily_report"),
		defaultHour: defaultHour,
		noRecords:   noRecords,
		caption:     caption,
		sendDelay:   sendDelay,
		now:         now,
	}
}

// Run checks every user and delivers yesterday's report to those whose local
// hour matches their configured report hour and whose watermark shows the
// date has not been delivered yet. The watermark advances only after a
// successful delivery, so a failed send is retried at the next matching hour.
// Per-user failures never abort the sweep.
func (r *Reporter) Run(ctx context.Context) error {
	userIDs, err := r.store.ListUserIDsWithTimezone(ctx)
	if err != nil {
		return err
	}

	nowUTC := r.now().UTC()
	sent := 0

	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if r.checkUser(ctx, userID, nowUTC) {
			sent++
			if !sleepCtx(ctx, r.sendDelay) {
				return ctx.Err()
			}
		}
	}

	if sent > 0 {
		r.logger.InfoContext(ctx, "Finished daily report sweep", "users", len(userIDs), "sent", sent)
	}
	return nil
}

// checkUser evaluates a single user and reports whether a report was
// delivered.
func (r *Reporter) checkUser(ctx context.Context, userID int64, nowUTC time.Time) bool {
	log := r.logger.With("user_id", userID)

	settings, err := r.store.GetUserSettings(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load user settings, skipping user", "error", err)
		return false
	}
	if settings == nil {
		return false
	}

	reportHour := settings.ReportHour
	if reportHour < 0 || reportHour > 23 {
		log.WarnContext(ctx, "Invalid report hour stored, using default", "report_hour", reportHour)
		reportHour = r.defaultHour
	}

	loc := localtime.Location(settings.Timezone.String)
	nowLocal := nowUTC.In(loc)

	// Hour equality, not a range: under the hourly cadence each user is
	// considered once per day. A cycle missed to downtime is not caught up
	// until the next day's matching hour.
	if nowLocal.Hour() != reportHour {
		return false
	}

	targetDate := localtime.DateIn(nowLocal.AddDate(0, 0, -1), loc)
	if settings.LastReportDate.String == targetDate {
		// Already delivered; the hourly job firing repeatedly inside the
		// matching hour must not send twice.
		log.DebugContext(ctx, "Report already sent", "date", targetDate)
		return false
	}

	if err := r.deliver(ctx, userID, targetDate, loc); err != nil {
		log.WarnContext(ctx, "Failed to deliver daily report, watermark not advanced",
			"date", targetDate, "error", err)
		return false
	}

	if _, err := r.store.UpdateLastReportDate(ctx, userID, targetDate); err != nil {
		log.ErrorContext(ctx, "Failed to advance report watermark", "date", targetDate, "error", err)
		return false
	}

	log.InfoContext(ctx, "Daily report delivered", "date", targetDate)
	return true
}

// deliver builds and sends the report document for one user-day, or the
// no-records notice when the day is empty.
func (r *Reporter) deliver(ctx context.Context, userID int64, date string, loc *time.Location) error {
	from, to, err := localtime.DayBoundsUTC(date, loc)
	if err != nil {
		return err
	}

	activities, err := r.store.ActivitiesInRange(ctx, userID, from, to)
	if err != nil {
		return err
	}

	samples := make([]report.Sample, 0, len(activities))
	for _, a := range activities {
		samples = append(samples, report.Sample{At: a.RecordedAt, Value: a.Description})
	}

	blocks, err := report.Compress(samples)
	if errors.Is(err, report.ErrNoData) {
		// An empty day still answers the check: the notice goes out and the
		// watermark advances with it.
		return r.messenger.SendText(ctx, userID, fmt.Sprintf(r.noRecords, date))
	}
	if err != nil {
		return err
	}

	doc := report.BuildDocument(date, blocks, loc)
	return r.messenger.SendDocument(ctx, userID, report.Filename(date),
		fmt.Sprintf(r.caption, date), []byte(doc))
}

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
