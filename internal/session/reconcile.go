package session

import "time"

// Reconcile repairs a persisted snapshot captured at an arbitrary, possibly
// mid-animation point in time. It is pure and deterministic given the
// snapshot and now; no network call is made. The permission flags are
// rederived from the ledger and reveal tracker — the persisted values are
// never trusted, because a checkpoint taken between the synchronous flag
// flip and the delayed reveal append can record any combination.
func Reconcile(snap Snapshot, now time.Time) (Snapshot, error) {
	snap.Revealed = sanitizeRevealed(snap.Revealed)

	wrong := 0
	for _, g := range snap.Guesses {
		if !g.IsCorrect {
			wrong++
		}
	}
	revealed := len(snap.Revealed)

	// Fewer reveals than wrong guesses is impossible: every guess is gated
	// on a preceding reveal. Refuse to trust the snapshot.
	if revealed < wrong {
		return snap, ErrCorruptedState
	}

	inFinalFive := snap.FinalFive.Active || snap.FinalFive.Pending

	if !snap.GameOver && !inFinalFive {
		if revealed > wrong {
			snap.CanGuess = true
			snap.CanReveal = false
		} else {
			snap.CanReveal = true
			snap.CanGuess = false
		}
	}

	// The stale first-card deadlock: the card was closed (hasSeenClue=true)
	// but the snapshot was taken before the timer init ran. Start it now as
	// if the close had just happened.
	startedNow := false
	if snap.HasSeenClue && snap.Timer.StartedAt == nil && !snap.GameOver && !snap.FinalFive.Active {
		ts := now
		snap.Timer.StartedAt = &ts
		snap.Timer.State = TimerRunning
		if snap.Timer.Remaining <= 0 {
			snap.Timer.Remaining = MainRoundSeconds
		}
		startedNow = true
	}

	// Catch a running timer up to the wall clock. The checkpoint timestamp
	// is the base; remaining already reflects every tick before it.
	if snap.Timer.State == TimerRunning && !startedNow {
		base := snap.SavedAt
		if base.IsZero() && snap.Timer.StartedAt != nil {
			base = *snap.Timer.StartedAt
		}
		if !base.IsZero() {
			elapsed := int(now.Sub(base) / time.Second)
			if elapsed >= snap.Timer.Remaining {
				snap.Timer.Remaining = 0
				snap.Timer.State = TimerExpired
			} else if elapsed > 0 {
				snap.Timer.Remaining -= elapsed
			}
		}
	}

	// A mid-flight Final Five round is abandoned: its option list may
	// predate guesses made after the checkpoint, so it is refetched fresh.
	if snap.FinalFive.Active && !snap.FinalFive.Completed {
		reason := snap.FinalFive.Reason
		if reason == "" {
			reason = FinalFiveReasonGuesses
		}
		snap.FinalFive = FinalFiveSnapshot{
			Pending: true,
			Reason:  reason,
			Timer:   TimerSnapshot{Remaining: FinalFiveSeconds, State: TimerIdle},
		}
		snap.CanReveal = false
		snap.CanGuess = false
	}

	return snap, nil
}
