package session

import (
	"context"
	"fmt"
	"time"

	"github.com/factday/fivefacts/internal/trivia"
)

const (
	FinalFiveReasonGuesses = "guesses"
	FinalFiveReasonTime    = "time"
)

// finalFive holds the escalation-round state. All transitions run through
// Machine methods under the session lock; the struct itself is inert.
type finalFive struct {
	pending      bool
	active       bool
	reason       string
	options      []string
	revealed     int
	selected     string
	selectedOnce bool
	completed    bool
	outcome      trivia.Outcome
	answer       string

	fetchFailed       bool
	answerFetchFailed bool
	pendingOutcome    trivia.Outcome
}

// triggerFinalFive evaluates the escalation transition. Idempotent: a second
// trigger while pending, active, or completed is a no-op. Caller holds the
// lock.
func (m *Machine) triggerFinalFive(reason string) {
	if m.ff.pending || m.ff.active || m.ff.completed || m.gameOver || m.winPending {
		return
	}
	m.ff.pending = true
	m.ff.reason = reason

	// Input is blocked immediately so a reveal started between trigger and
	// round mount cannot slip through.
	m.canReveal = false
	m.canGuess = false
	m.mainTimer.Pause()

	m.publish(Event{Type: EventFinalFivePending})
	m.checkpointLocked()

	m.schedule(escalationDelay, func() {
		m.beginFinalFive(context.Background())
	})
}

// beginFinalFive fetches the five multiple-choice options and choreographs
// their staggered reveal, then starts the round timer.
func (m *Machine) beginFinalFive(ctx context.Context) {
	m.mu.Lock()
	if m.torn || m.gameOver || m.ff.active || m.ff.completed {
		m.mu.Unlock()
		return
	}
	excluded := m.ledger.wrongTexts()
	challengeID := m.challenge.ID
	m.mu.Unlock()

	options, err := m.oracle.FinalFiveOptions(ctx, challengeID, excluded, m.language)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.torn || m.gameOver || m.ff.active || m.ff.completed {
		return
	}
	if err != nil {
		m.ff.fetchFailed = true
		m.log.Error("final five option fetch failed", "error", err)
		m.publish(Event{Type: EventRecoverableError, Message: "could not load the final five"})
		m.checkpointLocked()
		return
	}

	m.ff.fetchFailed = false
	m.ff.pending = false
	m.ff.active = true
	m.ff.options = options
	m.ff.revealed = 0
	m.publish(Event{Type: EventFinalFiveReady, Options: append([]string(nil), options...)})
	m.checkpointLocked()

	for k := 0; k < len(options); k++ {
		idx := k
		m.schedule(optionStagger*time.Duration(idx+1), func() {
			m.revealOption(idx)
		})
	}
}

func (m *Machine) revealOption(idx int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.torn || m.gameOver || !m.ff.active || m.ff.completed {
		return
	}
	if idx >= len(m.ff.options) || idx < m.ff.revealed {
		return
	}
	m.ff.revealed = idx + 1
	m.publish(Event{Type: EventOptionRevealed, Option: m.ff.options[idx]})

	// The round timer starts once the last option lands.
	if m.ff.revealed == len(m.ff.options) {
		m.ffTimer.Start(m.clock.Now())
		m.publish(Event{Type: EventTimerTick, Remaining: m.ffTimer.Remaining()})
	}
	m.checkpointLocked()
}

// RetryFinalFive retries the option fetch after a surfaced failure. Manual
// recovery action; a no-op unless the previous fetch failed.
func (m *Machine) RetryFinalFive(ctx context.Context) {
	m.mu.Lock()
	if !m.ff.fetchFailed || m.torn {
		m.mu.Unlock()
		return
	}
	m.ff.fetchFailed = false
	m.mu.Unlock()

	m.beginFinalFive(ctx)
}

// SelectFinalFiveOption submits the player's single allowed choice. The
// selection is write-once per round; repeated calls and calls before all
// options are revealed are silent no-ops per the debouncing contract.
func (m *Machine) SelectFinalFiveOption(ctx context.Context, option string) error {
	m.mu.Lock()
	if m.torn || m.gameOver || !m.ff.active || m.ff.completed || m.ff.selectedOnce ||
		m.ff.revealed < len(m.ff.options) {
		m.mu.Unlock()
		return nil
	}
	valid := false
	for _, o := range m.ff.options {
		if o == option {
			valid = true
			break
		}
	}
	if !valid {
		m.mu.Unlock()
		return nil
	}

	m.ff.selected = option
	m.ff.selectedOnce = true
	m.ffTimer.Pause()
	m.processing = true
	m.generation++
	gen := m.generation
	challengeID := m.challenge.ID
	m.publish(Event{Type: EventGuessProcessing, Guess: option})
	m.checkpointLocked()
	m.mu.Unlock()

	correct, err := m.verifyWithFloor(ctx, challengeID, option)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.torn || gen != m.generation {
		return nil
	}
	m.processing = false

	if err != nil {
		// The selection stands (write-once) but its verification can be
		// retried manually.
		m.publish(Event{Type: EventRecoverableError, Message: "could not verify your choice"})
		m.checkpointLocked()
		return fmt.Errorf("verifying final five selection: %w", err)
	}

	if correct {
		m.ff.completed = true
		m.ff.outcome = trivia.OutcomeFinalFiveWin
		m.ff.answer = option
		m.publish(Event{Type: EventFinalFiveResult, IsCorrect: true, Answer: option})
		m.finish(trivia.OutcomeFinalFiveWin)
		return nil
	}

	m.publish(Event{Type: EventFinalFiveResult, IsCorrect: false})
	m.resolveWithAnswer(trivia.OutcomeLossFinalFiveWrong)
	return nil
}

// RetrySelection re-verifies the already-made selection after a network
// failure surfaced during SelectFinalFiveOption.
func (m *Machine) RetrySelection(ctx context.Context) error {
	m.mu.Lock()
	if m.torn || m.gameOver || !m.ff.selectedOnce || m.ff.completed || m.processing {
		m.mu.Unlock()
		return nil
	}
	option := m.ff.selected
	challengeID := m.challenge.ID
	m.processing = true
	m.generation++
	gen := m.generation
	m.mu.Unlock()

	correct, err := m.verifyWithFloor(ctx, challengeID, option)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.torn || gen != m.generation {
		return nil
	}
	m.processing = false
	if err != nil {
		m.publish(Event{Type: EventRecoverableError, Message: "could not verify your choice"})
		return fmt.Errorf("verifying final five selection: %w", err)
	}
	if correct {
		m.ff.completed = true
		m.ff.outcome = trivia.OutcomeFinalFiveWin
		m.ff.answer = option
		m.publish(Event{Type: EventFinalFiveResult, IsCorrect: true, Answer: option})
		m.finish(trivia.OutcomeFinalFiveWin)
		return nil
	}
	m.publish(Event{Type: EventFinalFiveResult, IsCorrect: false})
	m.resolveWithAnswer(trivia.OutcomeLossFinalFiveWrong)
	return nil
}

// expireFinalFive handles the round timer reaching zero before a selection.
// Caller holds the lock.
func (m *Machine) expireFinalFive() {
	if m.ff.completed || m.ff.selectedOnce {
		return
	}
	m.resolveWithAnswer(trivia.OutcomeLossFinalFiveTime)
}

// resolveWithAnswer fetches the authoritative answer and completes the
// round with the given losing outcome. The fetch runs off the lock with the
// bounded retry policy; on exhaustion an error state with a manual retry
// action is surfaced instead of completing. Caller holds the lock.
func (m *Machine) resolveWithAnswer(outcome trivia.Outcome) {
	m.ff.pendingOutcome = outcome
	challengeID := m.challenge.ID
	m.schedule(0, func() {
		answer, err := m.oracle.FinalFiveAnswer(context.Background(), challengeID, m.language)

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.torn || m.ff.completed || m.gameOver {
			return
		}
		if err != nil {
			m.ff.answerFetchFailed = true
			m.log.Error("answer fetch failed", "error", err)
			m.publish(Event{Type: EventRecoverableError, Message: "could not load the answer"})
			m.checkpointLocked()
			return
		}
		m.completeWithAnswer(answer)
	})
}

// RetryAnswerFetch retries the authoritative-answer fetch after the bounded
// retries were exhausted. Manual recovery action.
func (m *Machine) RetryAnswerFetch(ctx context.Context) error {
	m.mu.Lock()
	if m.torn || !m.ff.answerFetchFailed || m.ff.completed {
		m.mu.Unlock()
		return nil
	}
	m.ff.answerFetchFailed = false
	challengeID := m.challenge.ID
	m.mu.Unlock()

	answer, err := m.oracle.FinalFiveAnswer(ctx, challengeID, m.language)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.torn || m.ff.completed {
		return nil
	}
	if err != nil {
		m.ff.answerFetchFailed = true
		m.publish(Event{Type: EventRecoverableError, Message: "could not load the answer"})
		return fmt.Errorf("fetching answer: %w", err)
	}
	m.completeWithAnswer(answer)
	return nil
}

// completeWithAnswer finalizes a losing Final Five round once the
// authoritative answer is known. Caller holds the lock.
func (m *Machine) completeWithAnswer(answer string) {
	outcome := m.ff.pendingOutcome
	if outcome == trivia.OutcomeNone {
		outcome = trivia.OutcomeLossFinalFiveWrong
	}
	m.ff.answer = answer
	m.ff.completed = true
	m.ff.outcome = outcome
	m.publish(Event{Type: EventFinalFiveResult, IsCorrect: false, Answer: answer})
	m.finish(outcome)
}
