package dispatch_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pulselog/pulselog/internal/database"
	"github.com/pulselog/pulselog/internal/dispatch"
)

type fakeStore struct {
	users      map[int64]*database.UserSettings
	order      []int64
	activities map[int64][]database.Activity

	watermarks map[int64]string
	markErr    error
}

func (f *fakeStore) ListUserIDsWithTimezone(context.Context) ([]int64, error) {
	return f.order, nil
}

func (f *fakeStore) GetUserSettings(_ context.Context, userID int64) (*database.UserSettings, error) {
	return f.users[userID], nil
}

func (f *fakeStore) ActivitiesInRange(_ context.Context, userID int64, from, to time.Time) ([]database.Activity, error) {
	var out []database.Activity
	for _, a := range f.activities[userID] {
		if !a.RecordedAt.Before(from) && a.RecordedAt.Before(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateLastReportDate(_ context.Context, userID int64, date string) (bool, error) {
	if f.markErr != nil {
		return false, f.markErr
	}
	if f.watermarks == nil {
		f.watermarks = make(map[int64]string)
	}
	f.watermarks[userID] = date
	if u, ok := f.users[userID]; ok {
		u.LastReportDate = sql.NullString{String: date, Valid: true}
	}
	return true, nil
}

type sentDoc struct {
	userID   int64
	filename string
	content  string
}

type fakeMessenger struct {
	texts   []string
	docs    []sentDoc
	sendErr error
}

func (f *fakeMessenger) SendText(_ context.Context, _ int64, text string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeMessenger) SendDocument(_ context.Context, userID int64, filename, _ string, content []byte) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.docs = append(f.docs, sentDoc{userID, filename, string(content)})
	return nil
}

func reportUser(id int64, zone string, hour int) *database.UserSettings {
	return &database.UserSettings{
		UserID:     id,
		Timezone:   sql.NullString{String: zone, Valid: true},
		ReportHour: hour,
	}
}

func newReporter(store *fakeStore, m *fakeMessenger, now func() time.Time) *dispatch.Reporter {
	return dispatch.NewReporter(store, m, nil, 8,
		"no records for %s", "report for %s", 0, now)
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRun_DeliversYesterdayAtLocalReportHour(t *testing.T) {
	t.Parallel()

	// 03:05 UTC on Aug 24 is 08:05 in Yekaterinburg (UTC+5). Yesterday there
	// is Aug 23, whose local day spans [19:00 Aug 22, 19:00 Aug 23) UTC.
	store := &fakeStore{
		users: map[int64]*database.UserSettings{1: reportUser(1, "Asia/Yekaterinburg", 8)},
		order: []int64{1},
		activities: map[int64][]database.Activity{1: {
			{UserID: 1, Description: "breakfast", RecordedAt: time.Date(2026, 8, 23, 3, 0, 0, 0, time.UTC)},
			{UserID: 1, Description: "coding", RecordedAt: time.Date(2026, 8, 23, 4, 0, 0, 0, time.UTC)},
			{UserID: 1, Description: "coding", RecordedAt: time.Date(2026, 8, 23, 5, 0, 0, 0, time.UTC)},
			// Recorded after the local day ended; must not appear.
			{UserID: 1, Description: "late", RecordedAt: time.Date(2026, 8, 23, 19, 0, 0, 0, time.UTC)},
		}},
	}
	m := &fakeMessenger{}
	r := newReporter(store, m, fixedNow(time.Date(2026, 8, 24, 3, 5, 0, 0, time.UTC)))

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(m.docs) != 1 {
		t.Fatalf("documents sent = %d, want 1", len(m.docs))
	}
	doc := m.docs[0]
	if doc.filename != "activity_report_2026-08-23.txt" {
		t.Errorf("filename = %q", doc.filename)
	}
	if !strings.HasPrefix(doc.content, "The Activity Log: 2026-08-23\n") {
		t.Errorf("document header = %q", doc.content)
	}
	// Local clock times, ascending, each end matching the next start.
	for _, line := range []string{
		"08:00 - 09:00 - breakfast",
		"09:00 - --:-- - coding",
	} {
		if !strings.Contains(doc.content, line) {
			t.Errorf("document missing line %q:\n%s", line, doc.content)
		}
	}
	if strings.Contains(doc.content, "late") {
		t.Errorf("document leaked activity outside the local day:\n%s", doc.content)
	}

	if store.watermarks[1] != "2026-08-23" {
		t.Errorf("watermark = %q, want 2026-08-23", store.watermarks[1])
	}
}

func TestRun_AtMostOncePerDate(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		users: map[int64]*database.UserSettings{1: reportUser(1, "UTC", 8)},
		order: []int64{1},
		activities: map[int64][]database.Activity{1: {
			{UserID: 1, Description: "x", RecordedAt: time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)},
		}},
	}
	m := &fakeMessenger{}
	r := newReporter(store, m, fixedNow(time.Date(2026, 8, 24, 8, 5, 0, 0, time.UTC)))

	// The hourly job fires twice inside the matching hour.
	for i := 0; i < 2; i++ {
		if err := r.Run(context.Background()); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	}
	if len(m.docs) != 1 {
		t.Errorf("documents sent = %d, want 1", len(m.docs))
	}
}

func TestRun_HourMismatchIsNoop(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		users: map[int64]*database.UserSettings{1: reportUser(1, "UTC", 8)},
		order: []int64{1},
	}
	m := &fakeMessenger{}
	r := newReporter(store, m, fixedNow(time.Date(2026, 8, 24, 9, 5, 0, 0, time.UTC)))

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(m.docs)+len(m.texts) != 0 {
		t.Errorf("sent %d docs and %d texts outside the report hour, want none", len(m.docs), len(m.texts))
	}
	if store.watermarks[1] != "" {
		t.Errorf("watermark advanced outside the report hour: %q", store.watermarks[1])
	}
}

func TestRun_DeliveryFailureKeepsWatermark(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		users: map[int64]*database.UserSettings{1: reportUser(1, "UTC", 8)},
		order: []int64{1},
		activities: map[int64][]database.Activity{1: {
			{UserID: 1, Description: "x", RecordedAt: time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)},
		}},
	}
	m := &fakeMessenger{sendErr: errors.New("network down")}
	now := fixedNow(time.Date(2026, 8, 24, 8, 5, 0, 0, time.UTC))
	r := newReporter(store, m, now)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if store.watermarks[1] != "" {
		t.Errorf("watermark advanced after failed delivery: %q", store.watermarks[1])
	}

	// The next run inside a matching hour retries and succeeds.
	m.sendErr = nil
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(m.docs) != 1 {
		t.Errorf("documents sent after retry = %d, want 1", len(m.docs))
	}
	if store.watermarks[1] != "2026-08-23" {
		t.Errorf("watermark after retry = %q, want 2026-08-23", store.watermarks[1])
	}
}

func TestRun_EmptyDaySendsNoticeAndAdvances(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		users: map[int64]*database.UserSettings{1: reportUser(1, "UTC", 8)},
		order: []int64{1},
	}
	m := &fakeMessenger{}
	r := newReporter(store, m, fixedNow(time.Date(2026, 8, 24, 8, 5, 0, 0, time.UTC)))

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(m.docs) != 0 {
		t.Errorf("documents sent for empty day = %d, want 0", len(m.docs))
	}
	if len(m.texts) != 1 || m.texts[0] != "no records for 2026-08-23" {
		t.Errorf("texts = %v, want the no-records notice", m.texts)
	}
	if store.watermarks[1] != "2026-08-23" {
		t.Errorf("watermark = %q, want 2026-08-23", store.watermarks[1])
	}
}

func TestRun_SkipsAlreadyDeliveredDate(t *testing.T) {
	t.Parallel()

	u := reportUser(1, "UTC", 8)
	u.LastReportDate = sql.NullString{String: "2026-08-23", Valid: true}
	store := &fakeStore{
		users: map[int64]*database.UserSettings{1: u},
		order: []int64{1},
		activities: map[int64][]database.Activity{1: {
			{UserID: 1, Description: "x", RecordedAt: time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)},
		}},
	}
	m := &fakeMessenger{}
	r := newReporter(store, m, fixedNow(time.Date(2026, 8, 24, 8, 5, 0, 0, time.UTC)))

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(m.docs)+len(m.texts) != 0 {
		t.Errorf("sent for an already delivered date: %d docs, %d texts", len(m.docs), len(m.texts))
	}
}
