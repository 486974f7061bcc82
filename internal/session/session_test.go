package session_test

import (
	"sync"
	"testing"

	"github.com/pulselog/pulselog/internal/session"
)

func TestBeginPrompt_RefusesWhilePending(t *testing.T) {
	t.Parallel()

	tr := session.NewTracker()

	if !tr.BeginPrompt(1) {
		t.Fatal("BeginPrompt() on idle user = false, want true")
	}
	if tr.BeginPrompt(1) {
		t.Error("BeginPrompt() with prompt outstanding = true, want false")
	}
	if got := tr.State(1).Kind; got != session.AwaitingActivity {
		t.Errorf("State().Kind = %v, want AwaitingActivity", got)
	}
	if !tr.PromptOutstanding(1) {
		t.Error("PromptOutstanding() = false, want true")
	}

	// Other users are unaffected.
	if !tr.BeginPrompt(2) {
		t.Error("BeginPrompt() for a different user = false, want true")
	}
}

func TestConsumeActivityPrompt(t *testing.T) {
	t.Parallel()

	tr := session.NewTracker()

	if tr.ConsumeActivityPrompt(1) {
		t.Error("ConsumeActivityPrompt() with no prompt = true, want false")
	}

	tr.BeginPrompt(1)
	if !tr.ConsumeActivityPrompt(1) {
		t.Fatal("ConsumeActivityPrompt() after BeginPrompt = false, want true")
	}
	if tr.ConsumeActivityPrompt(1) {
		t.Error("second ConsumeActivityPrompt() = true, want false")
	}
	if got := tr.State(1).Kind; got != session.Idle {
		t.Errorf("State().Kind after consume = %v, want Idle", got)
	}
	if tr.PromptOutstanding(1) {
		t.Error("PromptOutstanding() after consume = true, want false")
	}

	// Once consumed, the user can be prompted again.
	if !tr.BeginPrompt(1) {
		t.Error("BeginPrompt() after consume = false, want true")
	}
}

func TestBeginEdit_ReplacesPendingState(t *testing.T) {
	t.Parallel()

	tr := session.NewTracker()

	tr.BeginPrompt(1)
	tr.BeginEdit(1, 42)

	if tr.ConsumeActivityPrompt(1) {
		t.Error("ConsumeActivityPrompt() after BeginEdit = true, want false")
	}
	if tr.PromptOutstanding(1) {
		t.Error("PromptOutstanding() after BeginEdit = true, want false")
	}

	id, ok := tr.TakeAwaitingEdit(1)
	if !ok || id != 42 {
		t.Fatalf("TakeAwaitingEdit() = (%d, %v), want (42, true)", id, ok)
	}
	if _, ok := tr.TakeAwaitingEdit(1); ok {
		t.Error("second TakeAwaitingEdit() = true, want false")
	}
	if got := tr.State(1).Kind; got != session.Idle {
		t.Errorf("State().Kind after take = %v, want Idle", got)
	}
}

func TestTakeAwaitingEdit_IdleUser(t *testing.T) {
	t.Parallel()

	tr := session.NewTracker()
	if _, ok := tr.TakeAwaitingEdit(1); ok {
		t.Error("TakeAwaitingEdit() on idle user = true, want false")
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	tr := session.NewTracker()

	tr.BeginPrompt(1)
	tr.Reset(1)

	if got := tr.State(1).Kind; got != session.Idle {
		t.Errorf("State().Kind after Reset = %v, want Idle", got)
	}
	if tr.PromptOutstanding(1) {
		t.Error("PromptOutstanding() after Reset = true, want false")
	}
	if !tr.BeginPrompt(1) {
		t.Error("BeginPrompt() after Reset = false, want true")
	}

	tr.BeginEdit(1, 7)
	tr.Forget(1)
	if _, ok := tr.TakeAwaitingEdit(1); ok {
		t.Error("TakeAwaitingEdit() after Forget = true, want false")
	}
}

func TestBeginPrompt_ConcurrentSingleWinner(t *testing.T) {
	t.Parallel()

	tr := session.NewTracker()

	const attempts = 64
	var wg sync.WaitGroup
	wins := make(chan struct{}, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tr.BeginPrompt(9) {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	if got := len(wins); got != 1 {
		t.Errorf("concurrent BeginPrompt() winners = %d, want 1", got)
	}
}

func TestConsumeActivityPrompt_ConcurrentSingleWinner(t *testing.T) {
	t.Parallel()

	tr := session.NewTracker()
	tr.BeginPrompt(9)

	const attempts = 64
	var wg sync.WaitGroup
	wins := make(chan struct{}, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tr.ConsumeActivityPrompt(9) {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	if got := len(wins); got != 1 {
		t.Errorf("concurrent ConsumeActivityPrompt() winners = %d, want 1", got)
	}
}
