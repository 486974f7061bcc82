// Package session tracks per-user conversation state for the current process
// lifetime: whether the next free-text message is expected to be a new
// activity, an edited description, or nothing at all.
package session

import "sync"

// StateKind identifies what, if anything, is expected from a user's next
// free-text message.
type StateKind int

const (
	// Idle means no reply is expected.
	Idle StateKind = iota
	// AwaitingActivity means the next message records a new activity.
	AwaitingActivity
	// AwaitingEdit means the next message replaces an activity's description.
	AwaitingEdit
)

// State is a user's current conversation state. ActivityID is set only when
// Kind is AwaitingEdit.
type State struct {
	Kind       StateKind
	ActivityID int64
}

// Tracker holds conversation state and the outstanding-prompt flag for every
// user, keyed by user id. All transitions are atomic test-and-set operations
// so two interleaved handlers can never both observe the same user as Idle.
//
// State lives only for the process lifetime; losing it across restarts is
// accepted.
type Tracker struct {
	mu          sync.Mutex
	states      map[int64]State
	outstanding map[int64]bool
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		states:      make(map[int64]State),
		outstanding: make(map[int64]bool),
	}
}

// BeginPrompt transitions a user from Idle with no outstanding prompt to
// AwaitingActivity with a prompt outstanding. It reports whether the
// transition happened; false means the user already has a pending
// conversation and must not be prompted again.
func (t *Tracker) BeginPrompt(userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.states[userID].Kind != Idle || t.outstanding[userID] {
		return false
	}
	t.states[userID] = State{Kind: AwaitingActivity}
	t.outstanding[userID] = true
	return true
}

// ConsumeActivityPrompt atomically claims a pending activity reply: if the
// user is AwaitingActivity with a prompt outstanding, both are cleared and
// true is returned. A duplicate or late message finds the state already
// consumed and gets false.
func (t *Tracker) ConsumeActivityPrompt(userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.states[userID].Kind != AwaitingActivity || !t.outstanding[userID] {
		return false
	}
	delete(t.states, userID)
	delete(t.outstanding, userID)
	return true
}

// BeginEdit puts the user into AwaitingEdit for the given activity,
// replacing any pending state. The outstanding-prompt flag is cleared: an
// unanswered activity prompt is abandoned when an edit is armed.
func (t *Tracker) BeginEdit(userID, activityID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.states[userID] = State{Kind: AwaitingEdit, ActivityID: activityID}
	delete(t.outstanding, userID)
}

// TakeAwaitingEdit atomically claims a pending edit: if the user is
// AwaitingEdit, the state is cleared and the target activity id returned.
func (t *Tracker) TakeAwaitingEdit(userID int64) (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.states[userID]
	if st.Kind != AwaitingEdit {
		return 0, false
	}
	delete(t.states, userID)
	return st.ActivityID, true
}

// Reset forces the user back to Idle and clears the outstanding-prompt flag.
// Used on /start and on per-user failure paths.
func (t *Tracker) Reset(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.states, userID)
	delete(t.outstanding, userID)
}

// Forget evicts all state for a user. Same effect as Reset; named separately
// for the deregistration path.
func (t *Tracker) Forget(userID int64) {
	t.Reset(userID)
}

// State returns the user's current conversation state.
func (t *Tracker) State(userID int64) State {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.states[userID]
}

// PromptOutstanding reports whether a prompt has been sent to the user and
// not yet consumed.
func (t *Tracker) PromptOutstanding(userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.outstanding[userID]
}
