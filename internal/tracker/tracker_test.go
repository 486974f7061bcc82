package tracker_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pulselog/pulselog/internal/session"
	"github.com/pulselog/pulselog/internal/tracker"
)

type savedActivity struct {
	userID      int64
	description string
	recordedAt  time.Time
}

type appliedEdit struct {
	activityID  int64
	userID      int64
	description string
}

// fakeStore implements tracker.Store with canned tag registrations and call
// recording.
type fakeStore struct {
	knownTags map[string]int64 // lowercase name -> id

	saved   []savedActivity
	edits   []appliedEdit
	links   map[int64][]int64 // activity id -> tag ids
	nextID  int64
	saveErr error
	editOK  bool
	editErr error
	linkErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		knownTags: make(map[string]int64),
		links:     make(map[int64][]int64),
		nextID:    100,
		editOK:    true,
	}
}

func (f *fakeStore) SaveActivity(_ context.Context, userID int64, description string, recordedAt time.Time) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	f.nextID++
	f.saved = append(f.saved, savedActivity{userID, description, recordedAt})
	return f.nextID, nil
}

func (f *fakeStore) UpdateActivityDescription(_ context.Context, activityID, userID int64, description string) (bool, error) {
	f.edits = append(f.edits, appliedEdit{activityID, userID, description})
	return f.editOK, f.editErr
}

func (f *fakeStore) FindTagID(_ context.Context, _ int64, name string) (int64, bool, error) {
	id, ok := f.knownTags[strings.ToLower(name)]
	return id, ok, nil
}

func (f *fakeStore) LinkActivityTag(_ context.Context, activityID, tagID int64) error {
	if f.linkErr != nil {
		return f.linkErr
	}
	f.links[activityID] = append(f.links[activityID], tagID)
	return nil
}

func TestHandleReply_RecordsWithTags(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.knownTags["focus"] = 1
	sessions := session.NewTracker()
	sessions.BeginPrompt(10)

	at := time.Date(2026, 8, 24, 9, 30, 0, 0, time.UTC)
	svc := tracker.NewService(store, sessions, nil, func() time.Time { return at })

	res := svc.HandleReply(context.Background(), 10, "Deep work on parser #focus #Unknown")

	if res.Kind != tracker.KindRecorded || !res.Saved {
		t.Fatalf("result = %+v, want recorded and saved", res)
	}
	if !reflect.DeepEqual(res.LinkedTags, []string{"focus"}) {
		t.Errorf("LinkedTags = %v, want [focus]", res.LinkedTags)
	}
	if !reflect.DeepEqual(res.IgnoredTags, []string{"Unknown"}) {
		t.Errorf("IgnoredTags = %v, want [Unknown]", res.IgnoredTags)
	}

	if len(store.saved) != 1 {
		t.Fatalf("saved activities = %d, want 1", len(store.saved))
	}
	got := store.saved[0]
	if got.userID != 10 || got.description != "Deep work on parser #focus #Unknown" || !got.recordedAt.Equal(at) {
		t.Errorf("saved = %+v", got)
	}
	if linked := store.links[store.nextID]; !reflect.DeepEqual(linked, []int64{1}) {
		t.Errorf("linked tag ids = %v, want [1]", linked)
	}

	// The prompt was consumed; the same message again is ignored.
	res = svc.HandleReply(context.Background(), 10, "Deep work on parser #focus")
	if res.Kind != tracker.KindIgnored {
		t.Errorf("duplicate reply Kind = %v, want KindIgnored", res.Kind)
	}
	if len(store.saved) != 1 {
		t.Errorf("saved activities after duplicate = %d, want 1", len(store.saved))
	}
}

func TestHandleReply_IdleMessageIgnored(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := tracker.NewService(store, session.NewTracker(), nil, nil)

	res := svc.HandleReply(context.Background(), 10, "just chatting")
	if res.Kind != tracker.KindIgnored {
		t.Errorf("Kind = %v, want KindIgnored", res.Kind)
	}
	if len(store.saved) != 0 {
		t.Errorf("saved activities = %d, want 0", len(store.saved))
	}
}

func TestHandleReply_SaveFailureReported(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.saveErr = errors.New("disk full")
	sessions := session.NewTracker()
	sessions.BeginPrompt(10)
	svc := tracker.NewService(store, sessions, nil, nil)

	res := svc.HandleReply(context.Background(), 10, "something")
	if res.Kind != tracker.KindRecorded || res.Saved {
		t.Errorf("result = %+v, want recorded with Saved=false", res)
	}
	// The prompt is spent either way.
	if sessions.PromptOutstanding(10) {
		t.Error("prompt still outstanding after failed save")
	}
}

func TestHandleReply_AppliesEdit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		editOK  bool
		editErr error
		wantOK  bool
	}{
		{"edit succeeds", true, nil, true},
		{"activity not found", false, nil, false},
		{"store error", false, errors.New("locked"), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newFakeStore()
			store.editOK = tt.editOK
			store.editErr = tt.editErr
			sessions := session.NewTracker()
			sessions.BeginEdit(10, 7)
			svc := tracker.NewService(store, sessions, nil, nil)

			res := svc.HandleReply(context.Background(), 10, "new text")
			if res.Kind != tracker.KindEditApplied || res.EditOK != tt.wantOK {
				t.Errorf("result = %+v, want edit with EditOK=%v", res, tt.wantOK)
			}

			if len(store.edits) != 1 {
				t.Fatalf("edit calls = %d, want 1", len(store.edits))
			}
			want := appliedEdit{activityID: 7, userID: 10, description: "new text"}
			if store.edits[0] != want {
				t.Errorf("edit call = %+v, want %+v", store.edits[0], want)
			}

			// Success or failure, the user is idle again.
			if got := sessions.State(10).Kind; got != session.Idle {
				t.Errorf("state after edit = %v, want Idle", got)
			}
		})
	}
}

func TestExtractTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"no tags", "plain text", nil},
		{"single tag", "working #focus", []string{"focus"}},
		{"punctuation boundary", "done (#focus), next", []string{"focus"}},
		{"underscore and digits", "#deep_work2 now", []string{"deep_work2"}},
		{"case-insensitive dedupe keeps first form", "#Focus then #focus", []string{"Focus"}},
		{"multiple in order", "#b #a #b", []string{"b", "a"}},
		{"bare hash ignored", "just a # sign", nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tracker.ExtractTags(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTags(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestValidTagName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple", "focus", true},
		{"digits and underscore", "deep_work2", true},
		{"empty", "", false},
		{"leading hash", "#focus", false},
		{"spaces", "deep work", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tracker.ValidTagName(tt.input); got != tt.want {
				t.Errorf("ValidTagName(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
