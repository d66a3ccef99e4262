package session

import (
	"context"

	"github.com/factday/fivefacts/internal/trivia"
)

// Restore rebuilds a Machine from a persisted snapshot. Reconcile runs
// first; if it reports corruption the returned machine is a fresh session
// (the safe minimal state) alongside ErrCorruptedState so the caller can
// log the discard.
//
// After reconciliation the restore also repairs transitions the checkpoint
// interrupted: a correct guess whose victory window never elapsed is sealed
// immediately, an expired timer re-evaluates the escalation trigger, and an
// abandoned Final Five round refetches its options fresh.
func Restore(cfg Config, snap Snapshot) (*Machine, error) {
	m := newMachine(cfg)
	now := m.clock.Now()

	rec, err := Reconcile(snap, now)
	if err != nil {
		fresh := New(cfg)
		return fresh, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.Day != "" {
		m.day = rec.Day
	}
	if rec.Challenge.ID != "" {
		m.challenge = rec.Challenge
	}
	m.reveals.order = rec.Revealed
	m.ledger.guesses = rec.Guesses
	m.hasSeenClue = rec.HasSeenClue
	m.canReveal = rec.CanReveal
	m.canGuess = rec.CanGuess
	m.lastRevealed = rec.LastRevealed
	m.gameOver = rec.GameOver
	m.outcome = rec.Outcome
	m.mainTimer = restoreTimer(rec.Timer.Remaining, rec.Timer.State, rec.Timer.StartedAt)
	m.ffTimer = restoreTimer(rec.FinalFive.Timer.Remaining, rec.FinalFive.Timer.State, rec.FinalFive.Timer.StartedAt)
	m.ff = finalFive{
		pending:      rec.FinalFive.Pending,
		active:       rec.FinalFive.Active,
		reason:       rec.FinalFive.Reason,
		options:      rec.FinalFive.Options,
		revealed:     rec.FinalFive.Revealed,
		selected:     rec.FinalFive.Selected,
		selectedOnce: rec.FinalFive.SelectedOnce,
		completed:    rec.FinalFive.Completed,
		outcome:      rec.FinalFive.Outcome,
		answer:       rec.FinalFive.Answer,
	}

	if m.gameOver {
		return m, nil
	}

	switch {
	case m.ledger.correctFound():
		// Checkpoint landed inside the victory window; seal the win now.
		m.finish(trivia.OutcomeStandardWin)

	case m.ff.completed:
		// Round resolved but the terminal checkpoint never ran.
		m.finish(m.ff.outcome)

	case m.ff.pending:
		// Abandoned or pre-mount round: fetch options fresh.
		m.schedule(escalationDelay, func() {
			m.beginFinalFive(context.Background())
		})

	case m.mainTimer.State() == TimerExpired:
		// Catch-up expired the clock during reconciliation.
		m.outcome = trivia.OutcomeLossTime
		m.triggerFinalFive(FinalFiveReasonTime)
	}

	return m, nil
}
