package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations. Methods accept
// context.Context for cancellation and timeouts. Update methods returning a
// bool report whether a row was affected; false without an error means the
// target row does not exist (or is owned by someone else).
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// EnsureUser inserts the user with default settings if not yet known.
	EnsureUser(ctx context.Context, userID int64, username, firstName string) error

	// GetUserSettings retrieves a user's settings. Returns nil, nil if the
	// user is unknown.
	GetUserSettings(ctx context.Context, userID int64) (*UserSettings, error)

	// ListUserIDsWithTimezone returns the ids of all users with a timezone
	// configured; only those users are polled and reported to.
	ListUserIDsWithTimezone(ctx context.Context) ([]int64, error)

	// UpdateUserTimezone sets the user's IANA timezone name.
	UpdateUserTimezone(ctx context.Context, userID int64, timezone string) (bool, error)

	// UpdateUserPollWindow sets the local hours between which activity
	// prompts may be sent. Hours are assumed validated by the caller.
	UpdateUserPollWindow(ctx context.Context, userID int64, startHour, endHour int) (bool, error)

	// UpdateUserReportHour sets the local hour for daily report delivery.
	UpdateUserReportHour(ctx context.Context, userID int64, hour int) (bool, error)

	// UpdateLastReportDate advances the daily report watermark.
	UpdateLastReportDate(ctx context.Context, userID int64, date string) (bool, error)

	// SaveActivity inserts an activity and returns its id.
	SaveActivity(ctx context.Context, userID int64, description string, recordedAt time.Time) (int64, error)

	// UpdateActivityDescription overwrites the description of an activity
	// owned by the given user.
	UpdateActivityDescription(ctx context.Context, activityID, userID int64, description string) (bool, error)

	// ActivitiesInRange returns a user's activities with recorded_at in
	// [from, to), ordered by recorded_at ascending.
	ActivitiesInRange(ctx context.Context, userID int64, from, to time.Time) ([]Activity, error)

	// TagSamplesInRange returns one TagSample per activity in [from, to),
	// ordered by recorded_at ascending.
	TagSamplesInRange(ctx context.Context, userID int64, from, to time.Time) ([]TagSample, error)

	// FindTagID looks up a tag by name, case-insensitively. The bool reports
	// whether the tag exists.
	FindTagID(ctx context.Context, userID int64, name string) (int64, bool, error)

	// CreateTag registers a tag for the user and returns its id.
	CreateTag(ctx context.Context, userID int64, name string) (int64, error)

	// DeleteTag removes a tag; its activity links cascade away with it.
	DeleteTag(ctx context.Context, userID int64, name string) (bool, error)

	// ListTags returns the user's tags ordered by name.
	ListTags(ctx context.Context, userID int64) ([]Tag, error)

	// LinkActivityTag attaches a tag to an activity. Linking twice is a no-op.
	LinkActivityTag(ctx context.Context, activityID, tagID int64) error

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) EnsureUser(ctx context.Context, userID int64, username, firstName string) error {
	query := `
        INSERT OR IGNORE INTO users (id, username, first_name, created_at)
        VALUES (?, ?, ?, ?);
    `
	result, err := s.db.ExecContext(ctx, query, userID, toNullString(username), firstName, time.Now().UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Error ensuring user", "user_id", userID, "error", err)
		return fmt.Errorf("failed to ensure user %d: %w", userID, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows > 0 {
		s.logger.InfoContext(ctx, "Registered new user", "user_id", userID, "username", username)
	}
	return nil
}

func (s *sqlxStore) GetUserSettings(ctx context.Context, userID int64) (*UserSettings, error) {
	query := `
        SELECT id, username, first_name, created_at, timezone, last_report_date,
               poll_start_hour, poll_end_hour, report_hour
        FROM users
        WHERE id = ?;
    `
	var settings UserSettings
	if err := s.db.GetContext(ctx, &settings, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.ErrorContext(ctx, "Error getting user settings", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get settings for user %d: %w", userID, err)
	}
	return &settings, nil
}

func (s *sqlxStore) ListUserIDsWithTimezone(ctx context.Context) ([]int64, error) {
	query := `SELECT id FROM users WHERE timezone IS NOT NULL AND timezone != '' ORDER BY id;`

	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, query); err != nil {
		s.logger.ErrorContext(ctx, "Error listing users with timezone", "error", err)
		return nil, fmt.Errorf("failed to list users with timezone: %w", err)
	}
	return ids, nil
}

func (s *sqlxStore) UpdateUserTimezone(ctx context.Context, userID int64, timezone string) (bool, error) {
	return s.updateUserField(ctx, userID, "timezone",
		`UPDATE users SET timezone = ? WHERE id = ?;`, timezone)
}

func (s *sqlxStore) UpdateUserPollWindow(ctx context.Context, userID int64, startHour, endHour int) (bool, error) {
	query := `UPDATE users SET poll_start_hour = ?, poll_end_hour = ? WHERE id = ?;`

	result, err := s.db.ExecContext(ctx, query, startHour, endHour, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating poll window", "user_id", userID, "error", err)
		return false, fmt.Errorf("failed to update poll window for user %d: %w", userID, err)
	}
	return affectedRow(result), nil
}

func (s *sqlxStore) UpdateUserReportHour(ctx context.Context, userID int64, hour int) (bool, error) {
	return s.updateUserField(ctx, userID, "report_hour",
		`UPDATE users SET report_hour = ? WHERE id = ?;`, hour)
}

func (s *sqlxStore) UpdateLastReportDate(ctx context.Context, userID int64, date string) (bool, error) {
	return s.updateUserField(ctx, userID, "last_report_date",
		`UPDATE users SET last_report_date = ? WHERE id = ?;`, date)
}

func (s *sqlxStore) updateUserField(ctx context.Context, userID int64, field, query string, value any) (bool, error) {
	result, err := s.db.ExecContext(ctx, query, value, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating user setting", "user_id", userID, "field", field, "error", err)
		return false, fmt.Errorf("failed to update %s for user %d: %w", field, userID, err)
	}
	updated := affectedRow(result)
	if !updated {
		s.logger.WarnContext(ctx, "User setting update affected no rows", "user_id", userID, "field", field)
	}
	return updated, nil
}

func (s *sqlxStore) SaveActivity(ctx context.Context, userID int64, description string, recordedAt time.Time) (int64, error) {
	if description == "" {
		return 0, fmt.Errorf("activity must have a non-empty description")
	}
	if recordedAt.IsZero() {
		return 0, fmt.Errorf("activity must have a non-zero timestamp")
	}

	query := `INSERT INTO activities (user_id, description, recorded_at) VALUES (?, ?, ?);`

	result, err := s.db.ExecContext(ctx, query, userID, description, recordedAt.UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving activity", "user_id", userID, "error", err)
		return 0, fmt.Errorf("failed to save activity for user %d: %w", userID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve id of saved activity: %w", err)
	}
	s.logger.DebugContext(ctx, "Activity saved", "user_id", userID, "activity_id", id)
	return id, nil
}

func (s *sqlxStore) UpdateActivityDescription(ctx context.Context, activityID, userID int64, description string) (bool, error) {
	query := `UPDATE activities SET description = ? WHERE id = ? AND user_id = ?;`

	result, err := s.db.ExecContext(ctx, query, description, activityID, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating activity description",
			"activity_id", activityID, "user_id", userID, "error", err)
		return false, fmt.Errorf("failed to update activity %d for user %d: %w", activityID, userID, err)
	}
	updated := affectedRow(result)
	if !updated {
		// Wrong activity id, or an activity owned by another user.
		s.logger.WarnContext(ctx, "Activity update affected no rows", "activity_id", activityID, "user_id", userID)
	}
	return updated, nil
}

func (s *sqlxStore) ActivitiesInRange(ctx context.Context, userID int64, from, to time.Time) ([]Activity, error) {
	query := `
        SELECT id, user_id, description, recorded_at
        FROM activities
        WHERE user_id = ? AND recorded_at >= ? AND recorded_at < ?
        ORDER BY recorded_at ASC;
    `
	var activities []Activity
	if err := s.db.SelectContext(ctx, &activities, query, userID, from.UTC(), to.UTC()); err != nil {
		s.logger.ErrorContext(ctx, "Error listing activities", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list activities for user %d: %w", userID, err)
	}
	return activities, nil
}

func (s *sqlxStore) TagSamplesInRange(ctx context.Context, userID int64, from, to time.Time) ([]TagSample, error) {
	query := `
        SELECT a.recorded_at AS recorded_at,
               COALESCE(GROUP_CONCAT(t.name, ','), '') AS tag_names
        FROM activities a
        LEFT JOIN activity_tags at ON at.activity_id = a.id
        LEFT JOIN tags t ON t.id = at.tag_id
        WHERE a.user_id = ? AND a.recorded_at >= ? AND a.recorded_at < ?
        GROUP BY a.id
        ORDER BY a.recorded_at ASC;
    `
	var samples []TagSample
	if err := s.db.SelectContext(ctx, &samples, query, userID, from.UTC(), to.UTC()); err != nil {
		s.logger.ErrorContext(ctx, "Error listing tag samples", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list tag samples for user %d: %w", userID, err)
	}
	return samples, nil
}

func (s *sqlxStore) FindTagID(ctx context.Context, userID int64, name string) (int64, bool, error) {
	// The name column is COLLATE NOCASE, so equality here is case-insensitive.
	query := `SELECT id FROM tags WHERE user_id = ? AND name = ?;`

	var id int64
	if err := s.db.GetContext(ctx, &id, query, userID, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		s.logger.ErrorContext(ctx, "Error finding tag", "user_id", userID, "tag", name, "error", err)
		return 0, false, fmt.Errorf("failed to find tag %q for user %d: %w", name, userID, err)
	}
	return id, true, nil
}

func (s *sqlxStore) CreateTag(ctx context.Context, userID int64, name string) (int64, error) {
	query := `INSERT INTO tags (user_id, name) VALUES (?, ?);`

	result, err := s.db.ExecContext(ctx, query, userID, name)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error creating tag", "user_id", userID, "tag", name, "error", err)
		return 0, fmt.Errorf("failed to create tag %q for user %d: %w", name, userID, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve id of created tag: %w", err)
	}
	s.logger.InfoContext(ctx, "Tag created", "user_id", userID, "tag", name, "tag_id", id)
	return id, nil
}

func (s *sqlxStore) DeleteTag(ctx context.Context, userID int64, name string) (bool, error) {
	query := `DELETE FROM tags WHERE user_id = ? AND name = ?;`

	result, err := s.db.ExecContext(ctx, query, userID, name)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting tag", "user_id", userID, "tag", name, "error", err)
		return false, fmt.Errorf("failed to delete tag %q for user %d: %w", name, userID, err)
	}
	return affectedRow(result), nil
}

func (s *sqlxStore) ListTags(ctx context.Context, userID int64) ([]Tag, error) {
	query := `SELECT id, user_id, name FROM tags WHERE user_id = ? ORDER BY name;`

	var tags []Tag
	if err := s.db.SelectContext(ctx, &tags, query, userID); err != nil {
		s.logger.ErrorContext(ctx, "Error listing tags", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list tags for user %d: %w", userID, err)
	}
	return tags, nil
}

func (s *sqlxStore) LinkActivityTag(ctx context.Context, activityID, tagID int64) error {
	query := `INSERT OR IGNORE INTO activity_tags (activity_id, tag_id) VALUES (?, ?);`

	if _, err := s.db.ExecContext(ctx, query, activityID, tagID); err != nil {
		s.logger.ErrorContext(ctx, "Error linking tag to activity",
			"activity_id", activityID, "tag_id", tagID, "error", err)
		return fmt.Errorf("failed to link tag %d to activity %d: %w", tagID, activityID, err)
	}
	return nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Running SQL maintenance (VACUUM, ANALYZE)...")

	if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
		return fmt.Errorf("failed to VACUUM database: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "ANALYZE;"); err != nil {
		return fmt.Errorf("failed to ANALYZE database: %w", err)
	}

	s.logger.InfoContext(ctx, "SQL maintenance completed.")
	return nil
}

func affectedRow(result sql.Result) bool {
	rows, err := result.RowsAffected()
	return err == nil && rows > 0
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
