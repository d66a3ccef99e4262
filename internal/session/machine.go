// Package session implements the daily trivia game session state machine:
// fact reveals, guess submission and verification, the countdown timers,
// the Final Five escalation round, and the reconciliation pass that repairs
// persisted snapshots on load.
//
// The GameSession aggregate is owned by Machine and mutated only through
// its methods; one mutex serializes every transition. Timers and the
// escalation round report upward rather than writing session fields
// themselves.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/factday/fivefacts/internal/oracle"
	"github.com/factday/fivefacts/internal/trivia"
)

const (
	// MainRoundSeconds is the main countdown duration.
	MainRoundSeconds = 300
	// FinalFiveSeconds is the escalation round countdown duration.
	FinalFiveSeconds = 60

	// minProcessingFloor is the minimum visible guess-processing duration.
	// The network round-trip and this floor both have to finish before a
	// result is applied, so the in-flight state never flashes by.
	minProcessingFloor = 800 * time.Millisecond
	revealSettleDelay  = 600 * time.Millisecond
	victoryWindow      = 2 * time.Second
	escalationDelay    = 1500 * time.Millisecond
	optionStagger      = 400 * time.Millisecond
)

// Config carries the collaborators a Machine needs.
type Config struct {
	Challenge  trivia.Challenge
	Language   string
	Clock      Clock
	Scheduler  Scheduler
	Oracle     oracle.Client
	Logger     *slog.Logger
	Broker     *Broker
	Checkpoint func(Snapshot)
	// OnComplete is notified exactly once when the session reaches a
	// terminal outcome (the StreakTracker hook).
	OnComplete func(outcome trivia.Outcome, data trivia.TodayGameData)
}

// Machine is the session orchestrator. It composes the reveal tracker,
// guess ledger, both timers, and the escalation round into the single
// authoritative GameSession.
type Machine struct {
	mu sync.Mutex

	clock    Clock
	sched    Scheduler
	oracle   oracle.Client
	log      *slog.Logger
	broker   *Broker
	language string

	checkpoint func(Snapshot)
	onComplete func(trivia.Outcome, trivia.TodayGameData)

	day       string
	challenge trivia.Challenge

	reveals      revealTracker
	ledger       guessLedger
	mainTimer    *Timer
	ffTimer      *Timer
	ff           finalFive
	hasSeenClue  bool
	canReveal    bool
	canGuess     bool
	lastRevealed int
	processing   bool
	winPending   bool
	gameOver     bool
	outcome      trivia.Outcome

	generation int
	torn       bool
	cancels    []func()
}

// New creates a fresh session for today's challenge.
func New(cfg Config) *Machine {
	m := newMachine(cfg)
	m.canReveal = true
	return m
}

func newMachine(cfg Config) *Machine {
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	sched := cfg.Scheduler
	if sched == nil {
		sched = SystemScheduler{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	broker := cfg.Broker
	if broker == nil {
		broker = NewBroker()
	}
	return &Machine{
		clock:        clock,
		sched:        sched,
		oracle:       cfg.Oracle,
		log:          logger,
		broker:       broker,
		language:     cfg.Language,
		checkpoint:   cfg.Checkpoint,
		onComplete:   cfg.OnComplete,
		day:          trivia.DayKey(clock.Now()),
		challenge:    cfg.Challenge,
		mainTimer:    NewTimer(MainRoundSeconds),
		ffTimer:      NewTimer(FinalFiveSeconds),
		lastRevealed: -1,
	}
}

// Events returns the broker session events are published on.
func (m *Machine) Events() *Broker { return m.broker }

// RevealFact reveals the fact at index, or re-views it if already revealed.
// Calling with reveals gated off is a silent no-op: this is the UI
// debouncing contract, not a protocol violation.
func (m *Machine) RevealFact(index int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.torn || m.gameOver || m.winPending || m.processing || m.ff.pending || m.ff.active {
		return
	}
	if index < 0 || index >= len(m.challenge.Facts) {
		return
	}

	// Re-viewing an already-revealed fact never touches the gates and
	// never re-triggers reveal side effects.
	if m.reveals.contains(index) {
		m.publish(Event{Type: EventFactRevealed, FactIndex: index})
		return
	}

	if !m.canReveal || index == m.lastRevealed {
		return
	}

	// The gate flip is synchronous, before any animation delay; the
	// tracker append waits for the visual settle.
	m.lastRevealed = index
	m.canReveal = false
	m.canGuess = true
	m.publish(Event{Type: EventFactRevealed, FactIndex: index})
	m.checkpointLocked()

	m.schedule(revealSettleDelay, func() {
		m.settleReveal(index)
	})
}

func (m *Machine) settleReveal(index int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.torn || m.gameOver {
		return
	}
	m.reveals.add(index)
	m.checkpointLocked()
}

// CloseCard closes the fact card at index. The first close ever starts the
// main timer; any close of a revealed fact moves it to the end of the
// reveal order (most recently viewed).
func (m *Machine) CloseCard(index int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.torn || m.gameOver {
		return
	}

	if m.reveals.contains(index) {
		m.reveals.touch(index)
	}

	if !m.hasSeenClue {
		m.hasSeenClue = true
		m.mainTimer.Start(m.clock.Now())
	}
	m.publish(Event{Type: EventCardClosed, FactIndex: index})
	m.checkpointLocked()
}

// Pass records a deliberate skip. It counts as a wrong guess for the
// escalation threshold and resolves synchronously with no network call.
func (m *Machine) Pass() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.guessAllowed() {
		return
	}
	m.ledger.append(trivia.SkipSentinel, false, m.clock.Now())
	m.canGuess = false
	m.canReveal = true
	m.publish(Event{Type: EventGuessResult, IsCorrect: false})
	if m.ledger.wrongCount() >= trivia.WrongGuessLimit {
		m.triggerFinalFive(FinalFiveReasonGuesses)
		return
	}
	m.checkpointLocked()
}

// SubmitGuess verifies text against the oracle and applies the result once
// both the network round-trip and the minimum processing floor have
// elapsed. Precondition violations are silent no-ops; a case-insensitive
// duplicate is rejected before any network call with ErrDuplicateGuess.
func (m *Machine) SubmitGuess(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)

	m.mu.Lock()
	if !m.guessAllowed() || text == "" {
		m.mu.Unlock()
		return nil
	}
	if m.ledger.isDuplicate(text) {
		m.mu.Unlock()
		return ErrDuplicateGuess
	}

	m.processing = true
	m.generation++
	gen := m.generation
	// Paused before anything else so a last-second tick cannot race the
	// result.
	m.mainTimer.Pause()
	challengeID := m.challenge.ID
	m.publish(Event{Type: EventGuessProcessing, Guess: text})
	m.checkpointLocked()
	m.mu.Unlock()

	correct, err := m.verifyWithFloor(ctx, challengeID, text)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.torn || gen != m.generation {
		// Torn down or superseded: the result is ignored.
		return nil
	}
	m.processing = false

	if err != nil {
		// No ledger entry on failure; the guess is never assumed either
		// way. The player gets an explicit retry.
		m.mainTimer.Resume()
		m.publish(Event{Type: EventRecoverableError, Message: "could not verify your guess"})
		m.checkpointLocked()
		return fmt.Errorf("verifying guess: %w", err)
	}

	m.ledger.append(text, correct, m.clock.Now())
	m.canGuess = false
	m.canReveal = true
	m.publish(Event{Type: EventGuessResult, Guess: text, IsCorrect: correct})

	if correct {
		// Timer stays paused; the win is sealed after the victory window.
		m.winPending = true
		m.canReveal = false
		m.checkpointLocked()
		m.schedule(victoryWindow, func() {
			m.sealStandardWin()
		})
		return nil
	}

	m.mainTimer.Resume()
	if m.ledger.wrongCount() >= trivia.WrongGuessLimit {
		m.triggerFinalFive(FinalFiveReasonGuesses)
		return nil
	}
	m.checkpointLocked()
	return nil
}

func (m *Machine) sealStandardWin() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.torn || m.gameOver {
		return
	}
	m.finish(trivia.OutcomeStandardWin)
}

// guessAllowed checks the submit preconditions. Caller holds the lock.
func (m *Machine) guessAllowed() bool {
	return !m.torn && !m.gameOver && !m.winPending && !m.processing &&
		!m.ff.pending && !m.ff.active && m.hasSeenClue && m.canGuess
}

// verifyWithFloor runs the oracle round-trip and the minimum-duration floor
// concurrently; both must complete before the result is applied.
func (m *Machine) verifyWithFloor(ctx context.Context, challengeID, text string) (bool, error) {
	floor := make(chan struct{})
	cancel := m.sched.AfterFunc(minProcessingFloor, func() { close(floor) })

	correct, err := m.oracle.VerifyGuess(ctx, challengeID, text, m.language)

	select {
	case <-floor:
	case <-ctx.Done():
		cancel()
		if err == nil {
			err = ctx.Err()
		}
	}
	return correct, err
}

// Tick advances whichever countdown is running by one second. The host
// calls it from a wall-clock ticker; tests call it directly.
func (m *Machine) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.torn || m.gameOver {
		return
	}

	if m.ff.active && !m.ff.completed {
		if m.ffTimer.Tick() {
			m.publish(Event{Type: EventTimerTick, Remaining: 0})
			m.expireFinalFive()
			m.checkpointLocked()
			return
		}
		if m.ffTimer.State() == TimerRunning {
			m.publish(Event{Type: EventTimerTick, Remaining: m.ffTimer.Remaining()})
			m.checkpointLocked()
		}
		return
	}

	if m.mainTimer.Tick() {
		// The main round is lost on time; the outcome stays provisional
		// until the Final Five resolves it one way or the other.
		m.outcome = trivia.OutcomeLossTime
		m.publish(Event{Type: EventTimerTick, Remaining: 0})
		m.triggerFinalFive(FinalFiveReasonTime)
		return
	}
	if m.mainTimer.State() == TimerRunning {
		m.publish(Event{Type: EventTimerTick, Remaining: m.mainTimer.Remaining()})
		m.checkpointLocked()
	}
}

// PauseForModal suspends the running countdown while a blocking modal
// (tutorial, settings) is open.
func (m *Machine) PauseForModal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ff.active {
		m.ffTimer.Pause()
	} else {
		m.mainTimer.Pause()
	}
}

// ResumeFromModal resumes the countdown after a blocking modal closes.
// A verification still in flight keeps the timer paused.
func (m *Machine) ResumeFromModal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processing || m.winPending || m.gameOver {
		return
	}
	if m.ff.active {
		m.ffTimer.Resume()
	} else if !m.ff.pending {
		m.mainTimer.Resume()
	}
}

// finish seals the terminal outcome exactly once. Caller holds the lock.
func (m *Machine) finish(outcome trivia.Outcome) {
	if m.gameOver {
		return
	}
	m.gameOver = true
	m.winPending = false
	m.outcome = outcome
	m.canReveal = false
	m.canGuess = false
	m.mainTimer.Pause()
	m.ffTimer.Pause()

	tries := len(m.ledger.guesses)
	if m.ff.selectedOnce {
		tries++
	}
	spent := MainRoundSeconds - m.mainTimer.Remaining()
	if m.ff.completed {
		spent += FinalFiveSeconds - m.ffTimer.Remaining()
	}
	answer := m.ff.answer
	if outcome == trivia.OutcomeStandardWin {
		for _, g := range m.ledger.guesses {
			if g.IsCorrect {
				answer = g.Text
			}
		}
	}
	data := trivia.TodayGameData{
		Outcome:        outcome,
		CorrectAnswer:  answer,
		NumberOfTries:  tries,
		TimeSpentSecs:  spent,
		CompletionDate: m.day,
	}

	m.publish(Event{Type: EventGameOver, Outcome: outcome, Answer: answer})
	m.checkpointLocked()
	m.log.Info("session finished", "outcome", outcome, "tries", tries, "time_spent", spent)

	if m.onComplete != nil {
		m.onComplete(outcome, data)
	}
}

// Teardown stops all scheduled work. In-flight verifications are not
// hard-cancelled; their results are ignored.
func (m *Machine) Teardown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.torn = true
	m.generation++
	for _, c := range m.cancels {
		c()
	}
	m.cancels = nil
}

// schedule registers a delayed continuation through the injected scheduler.
// Caller holds the lock.
func (m *Machine) schedule(d time.Duration, fn func()) {
	cancel := m.sched.AfterFunc(d, fn)
	m.cancels = append(m.cancels, cancel)
}

func (m *Machine) publish(ev Event) {
	m.broker.Publish(ev)
}

func (m *Machine) checkpointLocked() {
	if m.checkpoint != nil {
		m.checkpoint(m.snapshotLocked())
	}
}
