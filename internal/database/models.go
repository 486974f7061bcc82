package database

import (
	"database/sql"
	"time"
)

// UserSettings holds a user's identity and scheduling preferences. Timezone
// and LastReportDate are nullable: NULL timezone means the user is not polled
// and UTC is used for display; NULL LastReportDate means no daily report has
// ever been delivered.
type UserSettings struct {
	UserID         int64          `db:"id"`
	Username       sql.NullString `db:"username"`
	FirstName      string         `db:"first_name"`
	CreatedAt      time.Time      `db:"created_at"`
	Timezone       sql.NullString `db:"timezone"`
	LastReportDate sql.NullString `db:"last_report_date"`
	PollStartHour  int            `db:"poll_start_hour"`
	PollEndHour    int            `db:"poll_end_hour"`
	ReportHour     int            `db:"report_hour"`
}

// Activity is one logged activity sample. RecordedAt is the UTC instant the
// reply was received, not any time implied by the text.
type Activity struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	Description string    `db:"description"`
	RecordedAt  time.Time `db:"recorded_at"`
}

// Tag is a user-scoped label. Names are unique per user, case-insensitively.
type Tag struct {
	ID     int64  `db:"id"`
	UserID int64  `db:"user_id"`
	Name   string `db:"name"`
}

// TagSample is one activity's tag set for tag reports: the comma-joined names
// of its linked tags, empty when the activity has none.
type TagSample struct {
	RecordedAt time.Time `db:"recorded_at"`
	TagNames   string    `db:"tag_names"`
}
