package session

import (
	"errors"
	"testing"
	"time"

	"github.com/factday/fivefacts/internal/trivia"
)

func guessAt(text string, correct bool, at time.Time) trivia.UserGuess {
	return trivia.UserGuess{Text: text, IsCorrect: correct, Timestamp: at}
}

func TestReconcileRepairsStaleFirstCardSnapshot(t *testing.T) {
	// The first card was closed but the checkpoint landed before the timer
	// init ran: hasSeenClue is set with no start timestamp. Historically
	// this deadlocked the session on load.
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Revealed:    []int{0},
		HasSeenClue: true,
		Timer:       TimerSnapshot{Remaining: MainRoundSeconds, State: TimerIdle},
		SavedAt:     now.Add(-time.Minute),
	}

	rec, err := Reconcile(snap, now)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if !rec.CanGuess || rec.CanReveal {
		t.Errorf("one unanswered reveal must open the guess gate: canGuess=%t canReveal=%t",
			rec.CanGuess, rec.CanReveal)
	}
	if rec.Timer.State != TimerRunning {
		t.Errorf("timer must be started, state=%v", rec.Timer.State)
	}
	if rec.Timer.StartedAt == nil || !rec.Timer.StartedAt.Equal(now) {
		t.Errorf("timer must start at load time, got %v", rec.Timer.StartedAt)
	}
	if rec.Timer.Remaining != MainRoundSeconds {
		t.Errorf("a timer that never ran must keep its full budget, got %d", rec.Timer.Remaining)
	}
}

func TestReconcileRederivesGatesFromLedger(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name      string
		revealed  []int
		guesses   []trivia.UserGuess
		canReveal bool
		canGuess  bool
	}{
		{"fresh", nil, nil, true, false},
		{"owed guess", []int{0}, nil, false, true},
		{"guess consumed", []int{0}, []trivia.UserGuess{guessAt("x", false, now)}, true, false},
		{"two ahead one answered", []int{0, 1}, []trivia.UserGuess{guessAt("x", false, now)}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Snapshot{
				Revealed: tt.revealed,
				Guesses:  tt.guesses,
				// Persisted flags are garbage on purpose; they must be
				// rederived, not trusted.
				CanReveal: !tt.canReveal,
				CanGuess:  !tt.canGuess,
			}
			rec, err := Reconcile(snap, now)
			if err != nil {
				t.Fatalf("Reconcile: %v", err)
			}
			if rec.CanReveal != tt.canReveal || rec.CanGuess != tt.canGuess {
				t.Errorf("got canReveal=%t canGuess=%t, want %t/%t",
					rec.CanReveal, rec.CanGuess, tt.canReveal, tt.canGuess)
			}
		})
	}
}

func TestReconcileRejectsImpossibleLedger(t *testing.T) {
	snap := Snapshot{
		Revealed: nil,
		Guesses:  []trivia.UserGuess{guessAt("x", false, time.Now())},
	}
	if _, err := Reconcile(snap, time.Now()); !errors.Is(err, ErrCorruptedState) {
		t.Fatalf("expected ErrCorruptedState, got %v", err)
	}
}

func TestReconcileCatchesUpRunningTimer(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	started := now.Add(-5 * time.Minute)
	saved := now.Add(-30 * time.Second)

	snap := Snapshot{
		Revealed:    []int{0},
		HasSeenClue: true,
		Timer:       TimerSnapshot{Remaining: 100, State: TimerRunning, StartedAt: &started},
		SavedAt:     saved,
	}
	rec, err := Reconcile(snap, now)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	// Elapsed counts from the checkpoint, not the original start: remaining
	// already reflects every tick before the save.
	if rec.Timer.Remaining != 70 {
		t.Errorf("expected 70 remaining, got %d", rec.Timer.Remaining)
	}
	if rec.Timer.State != TimerRunning {
		t.Errorf("expected running, got %v", rec.Timer.State)
	}
}

func TestReconcileExpiresTimerElapsedWhileAway(t *testing.T) {
	now := time.Now()
	started := now.Add(-time.Hour)
	saved := now.Add(-10 * time.Minute)

	snap := Snapshot{
		Revealed:    []int{0},
		HasSeenClue: true,
		Timer:       TimerSnapshot{Remaining: 20, State: TimerRunning, StartedAt: &started},
		SavedAt:     saved,
	}
	rec, err := Reconcile(snap, now)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if rec.Timer.State != TimerExpired || rec.Timer.Remaining != 0 {
		t.Errorf("expected expired/0, got %v/%d", rec.Timer.State, rec.Timer.Remaining)
	}
}

func TestReconcilePausedTimerIsLeftAlone(t *testing.T) {
	now := time.Now()
	saved := now.Add(-time.Hour)
	snap := Snapshot{
		Revealed:    []int{0},
		HasSeenClue: true,
		Timer:       TimerSnapshot{Remaining: 42, State: TimerPaused, StartedAt: &saved},
		SavedAt:     saved,
	}
	rec, err := Reconcile(snap, now)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if rec.Timer.Remaining != 42 || rec.Timer.State != TimerPaused {
		t.Errorf("paused timer must not be caught up, got %v/%d", rec.Timer.State, rec.Timer.Remaining)
	}
}

func TestReconcileAbandonsMidFlightFinalFive(t *testing.T) {
	now := time.Now()
	snap := Snapshot{
		Revealed:    []int{0, 1, 2, 3, 4},
		HasSeenClue: true,
		Guesses: []trivia.UserGuess{
			guessAt("a", false, now), guessAt("b", false, now), guessAt("c", false, now),
			guessAt("d", false, now), guessAt("e", false, now),
		},
		FinalFive: FinalFiveSnapshot{
			Active:   true,
			Reason:   FinalFiveReasonGuesses,
			Options:  []string{"1", "2", "3", "4", "5"},
			Revealed: 3,
			Timer:    TimerSnapshot{Remaining: 40, State: TimerRunning},
		},
	}
	rec, err := Reconcile(snap, now)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	ff := rec.FinalFive
	if ff.Active || !ff.Pending {
		t.Errorf("mid-flight round must reset to pending, active=%t pending=%t", ff.Active, ff.Pending)
	}
	if len(ff.Options) != 0 || ff.Revealed != 0 {
		t.Errorf("stale options must be discarded: %v/%d", ff.Options, ff.Revealed)
	}
	if ff.Timer.Remaining != FinalFiveSeconds {
		t.Errorf("round timer must reset to full, got %d", ff.Timer.Remaining)
	}
	if ff.Reason != FinalFiveReasonGuesses {
		t.Errorf("trigger reason must survive, got %q", ff.Reason)
	}
	if rec.CanReveal || rec.CanGuess {
		t.Error("main-round input must stay blocked")
	}
}

func TestReconcileSanitizesRevealedIndices(t *testing.T) {
	rec, err := Reconcile(Snapshot{Revealed: []int{1, 1, -3, 9, 4}}, time.Now())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(rec.Revealed) != 2 || rec.Revealed[0] != 1 || rec.Revealed[1] != 4 {
		t.Errorf("expected [1 4], got %v", rec.Revealed)
	}
}

func TestReconcileLeavesFinishedGameAlone(t *testing.T) {
	now := time.Now()
	snap := Snapshot{
		Revealed:  []int{0},
		Guesses:   []trivia.UserGuess{guessAt("curie", true, now)},
		GameOver:  true,
		Outcome:   trivia.OutcomeStandardWin,
		CanReveal: false,
		CanGuess:  false,
		Timer:     TimerSnapshot{Remaining: 120, State: TimerPaused},
		SavedAt:   now.Add(-time.Hour),
	}
	rec, err := Reconcile(snap, now)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if rec.CanReveal || rec.CanGuess {
		t.Error("finished game must keep input closed")
	}
	if rec.Timer.Remaining != 120 {
		t.Errorf("finished game timer must be untouched, got %d", rec.Timer.Remaining)
	}
}
