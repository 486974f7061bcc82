// Package localtime resolves stored IANA timezone names and computes local
// calendar-day boundaries for users in arbitrary timezones.
package localtime

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates ("YYYY-MM-DD").
const DateLayout = "2006-01-02"

// Location resolves an IANA timezone name. An empty or unknown name falls
// back to UTC so a bad stored setting never breaks time handling.
func Location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DayBoundsUTC returns the UTC half-open interval [from, to) covering the
// given local calendar date in loc. DST transitions make some local days
// shorter or longer than 24 hours; the bounds follow the local calendar,
// not a fixed duration.
func DayBoundsUTC(date string, loc *time.Location) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return day.UTC(), day.AddDate(0, 0, 1).UTC(), nil
}

// DateIn formats the calendar date of t as observed in loc.
func DateIn(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// FormatClock formats the wall-clock time of t as observed in loc.
func FormatClock(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("15:04")
}
