package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/factday/fivefacts/internal/oracle"
	"github.com/factday/fivefacts/internal/trivia"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// eagerScheduler runs every scheduled function immediately in its own
// goroutine, collapsing all animation delays. drain blocks until every
// scheduled continuation, including ones spawned by other continuations,
// has finished.
type eagerScheduler struct{ wg sync.WaitGroup }

func (s *eagerScheduler) AfterFunc(_ time.Duration, fn func()) func() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
	return func() {}
}

func (s *eagerScheduler) drain() { s.wg.Wait() }

// heldScheduler queues scheduled functions without running them, so tests
// can observe the state between a synchronous transition and its delayed
// continuation. Not usable with SubmitGuess, which blocks on a scheduled
// floor.
type heldScheduler struct {
	mu   sync.Mutex
	jobs []func()
}

func (s *heldScheduler) AfterFunc(_ time.Duration, fn func()) func() {
	s.mu.Lock()
	s.jobs = append(s.jobs, fn)
	s.mu.Unlock()
	return func() {}
}

func (s *heldScheduler) step() bool {
	s.mu.Lock()
	if len(s.jobs) == 0 {
		s.mu.Unlock()
		return false
	}
	job := s.jobs[0]
	s.jobs = s.jobs[1:]
	s.mu.Unlock()
	job()
	return true
}

func (s *heldScheduler) release() {
	for s.step() {
	}
}

type stubOracle struct {
	mu           sync.Mutex
	answer       string
	options      []string
	verifyErrs   int
	verifyCalls  int
	optionsErrs  int
	optionsCalls int
	answerErrs   int
	answerCalls  int
	lastExcluded []string
}

func (o *stubOracle) FetchChallenge(_ context.Context, _ string) (trivia.Challenge, error) {
	return trivia.Challenge{}, errors.New("not implemented")
}

func (o *stubOracle) VerifyGuess(_ context.Context, _, guess, _ string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.verifyCalls++
	if o.verifyErrs > 0 {
		o.verifyErrs--
		return false, &oracle.NetworkError{Op: "verify", Err: errors.New("connection reset")}
	}
	return strings.EqualFold(guess, o.answer), nil
}

func (o *stubOracle) FinalFiveOptions(_ context.Context, _ string, excluded []string, _ string) ([]string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.optionsCalls++
	o.lastExcluded = append([]string(nil), excluded...)
	if o.optionsErrs > 0 {
		o.optionsErrs--
		return nil, &oracle.NetworkError{Op: "options", Err: errors.New("connection reset")}
	}
	return append([]string(nil), o.options...), nil
}

func (o *stubOracle) FinalFiveAnswer(_ context.Context, _, _ string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.answerCalls++
	if o.answerErrs > 0 {
		o.answerErrs--
		return "", &oracle.NetworkError{Op: "answer", Err: errors.New("connection reset")}
	}
	return o.answer, nil
}

func testChallenge() trivia.Challenge {
	facts := make([]trivia.Fact, trivia.FactCount)
	for i := range facts {
		facts[i] = trivia.Fact{Type: "text", Content: "fact", Category: "science"}
	}
	return trivia.Challenge{
		ID:       "ch-1",
		Language: "en",
		Category: "science",
		Facts:    facts,
	}
}

func newTestMachine(t *testing.T, o oracle.Client) (*Machine, *eagerScheduler, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	sched := &eagerScheduler{}
	m := New(Config{
		Challenge: testChallenge(),
		Language:  "en",
		Clock:     clk,
		Scheduler: sched,
		Oracle:    o,
	})
	t.Cleanup(func() {
		sched.drain()
	})
	return m, sched, clk
}

// revealAndClose reveals a fact, waits for the reveal to settle, and closes
// the card, leaving the session ready for a guess.
func revealAndClose(m *Machine, s *eagerScheduler, idx int) {
	m.RevealFact(idx)
	s.drain()
	m.CloseCard(idx)
}

func TestRevealFlipsGatesBeforeSettle(t *testing.T) {
	held := &heldScheduler{}
	m := New(Config{
		Challenge: testChallenge(),
		Clock:     &fakeClock{t: time.Now()},
		Scheduler: held,
		Oracle:    &stubOracle{},
	})

	m.RevealFact(0)

	snap := m.Snapshot()
	if !snap.CanGuess || snap.CanReveal {
		t.Errorf("gates must flip synchronously: canGuess=%t canReveal=%t", snap.CanGuess, snap.CanReveal)
	}
	if len(snap.Revealed) != 0 {
		t.Errorf("reveal must not settle before the delay: %v", snap.Revealed)
	}

	// A second reveal during the animation window is debounced.
	m.RevealFact(1)
	if got := m.Snapshot().LastRevealed; got != 0 {
		t.Errorf("second reveal must be a no-op, lastRevealed=%d", got)
	}

	held.release()
	snap = m.Snapshot()
	if len(snap.Revealed) != 1 || snap.Revealed[0] != 0 {
		t.Errorf("expected revealed [0] after settle, got %v", snap.Revealed)
	}
}

func TestRevealOutOfRangeIsNoOp(t *testing.T) {
	m, sched, _ := newTestMachine(t, &stubOracle{})

	m.RevealFact(-1)
	m.RevealFact(trivia.FactCount)
	sched.drain()

	v := m.View()
	if len(v.Revealed) != 0 || !v.CanReveal {
		t.Errorf("out-of-range reveal mutated state: revealed=%v canReveal=%t", v.Revealed, v.CanReveal)
	}
}

func TestReRevealDoesNotTouchGates(t *testing.T) {
	m, sched, _ := newTestMachine(t, &stubOracle{answer: "x"})

	revealAndClose(m, sched, 0)
	m.Pass() // consumes the guess, reopens reveals
	m.RevealFact(1)
	sched.drain()

	// Re-viewing fact 0 while fact 1's guess is pending must not reopen
	// the reveal gate.
	m.RevealFact(0)
	v := m.View()
	if v.CanReveal {
		t.Error("re-reveal must not reopen the reveal gate")
	}
	if v.WrongGuesses != 1 {
		t.Errorf("expected 1 wrong guess, got %d", v.WrongGuesses)
	}
}

func TestCloseCardStartsTimerOnce(t *testing.T) {
	m, sched, clk := newTestMachine(t, &stubOracle{})

	m.RevealFact(0)
	sched.drain()

	if m.View().TimerState != TimerIdle {
		t.Fatal("timer must not start on reveal")
	}

	m.CloseCard(0)
	v := m.View()
	if !v.HasSeenClue || v.TimerState != TimerRunning {
		t.Fatalf("first close must start the timer: seen=%t state=%v", v.HasSeenClue, v.TimerState)
	}
	started := *m.Snapshot().Timer.StartedAt

	clk.advance(10 * time.Second)
	m.CloseCard(0)
	if got := *m.Snapshot().Timer.StartedAt; !got.Equal(started) {
		t.Error("second close must not restart the timer")
	}
}

func TestGuessRequiresSeenClue(t *testing.T) {
	stub := &stubOracle{answer: "x"}
	m, sched, _ := newTestMachine(t, stub)

	m.RevealFact(0)
	sched.drain()
	// Card never closed: hasSeenClue is false.
	if err := m.SubmitGuess(context.Background(), "x"); err != nil {
		t.Fatalf("precondition violation must be silent, got %v", err)
	}
	if stub.verifyCalls != 0 {
		t.Errorf("no oracle call expected, got %d", stub.verifyCalls)
	}
}

func TestCorrectGuessSealsWinAfterVictoryWindow(t *testing.T) {
	stub := &stubOracle{answer: "Marie Curie"}
	m, sched, _ := newTestMachine(t, stub)

	var (
		mu   sync.Mutex
		data trivia.TodayGameData
	)
	m.onComplete = func(_ trivia.Outcome, d trivia.TodayGameData) {
		mu.Lock()
		data = d
		mu.Unlock()
	}

	revealAndClose(m, sched, 0)
	if err := m.SubmitGuess(context.Background(), "marie curie"); err != nil {
		t.Fatalf("SubmitGuess: %v", err)
	}

	// Timer pauses immediately; the terminal outcome waits for the window.
	v := m.View()
	if v.TimerState != TimerPaused {
		t.Errorf("timer must pause on correct guess, state=%v", v.TimerState)
	}
	if v.GameOver {
		t.Error("game must not end before the victory window elapses")
	}
	if v.CanReveal || v.CanGuess {
		t.Error("input must be blocked during the victory window")
	}

	sched.drain()
	v = m.View()
	if !v.GameOver || v.Outcome != trivia.OutcomeStandardWin {
		t.Fatalf("expected standard-win, got over=%t outcome=%s", v.GameOver, v.Outcome)
	}

	mu.Lock()
	defer mu.Unlock()
	if data.NumberOfTries != 1 {
		t.Errorf("expected 1 try, got %d", data.NumberOfTries)
	}
	if data.CorrectAnswer != "marie curie" {
		t.Errorf("expected winning guess as answer, got %q", data.CorrectAnswer)
	}
	if !data.Outcome.Win() {
		t.Errorf("expected a winning outcome, got %s", data.Outcome)
	}
}

func TestDuplicateGuessRejectedBeforeNetwork(t *testing.T) {
	stub := &stubOracle{answer: "curie"}
	m, sched, _ := newTestMachine(t, stub)

	revealAndClose(m, sched, 0)
	if err := m.SubmitGuess(context.Background(), "Einstein"); err != nil {
		t.Fatalf("SubmitGuess: %v", err)
	}
	m.RevealFact(1)
	sched.drain()

	err := m.SubmitGuess(context.Background(), "  einstein ")
	if !errors.Is(err, ErrDuplicateGuess) {
		t.Fatalf("expected ErrDuplicateGuess, got %v", err)
	}
	if stub.verifyCalls != 1 {
		t.Errorf("duplicate must not reach the oracle, calls=%d", stub.verifyCalls)
	}
	v := m.View()
	if len(v.Guesses) != 1 {
		t.Errorf("duplicate must not be recorded, ledger=%d", len(v.Guesses))
	}
	if !v.CanGuess {
		t.Error("rejected duplicate must leave the guess gate open")
	}
}

func TestPassIsAlwaysRepeatable(t *testing.T) {
	m, sched, _ := newTestMachine(t, &stubOracle{answer: "x"})

	revealAndClose(m, sched, 0)
	m.Pass()
	m.RevealFact(1)
	sched.drain()
	m.Pass()

	v := m.View()
	if v.WrongGuesses != 2 {
		t.Errorf("expected 2 wrong guesses after two passes, got %d", v.WrongGuesses)
	}
	if !v.CanReveal || v.CanGuess {
		t.Errorf("pass must reopen reveals: canReveal=%t canGuess=%t", v.CanReveal, v.CanGuess)
	}
}

func TestGuessNetworkFailureLeavesNoTrace(t *testing.T) {
	stub := &stubOracle{answer: "curie", verifyErrs: 1}
	m, sched, _ := newTestMachine(t, stub)

	revealAndClose(m, sched, 0)
	err := m.SubmitGuess(context.Background(), "curie")
	if !oracle.IsNetworkError(err) {
		t.Fatalf("expected network error, got %v", err)
	}

	v := m.View()
	if len(v.Guesses) != 0 {
		t.Errorf("failed verification must not reach the ledger: %v", v.Guesses)
	}
	if !v.CanGuess {
		t.Error("guess gate must stay open for the retry")
	}
	if v.TimerState != TimerRunning {
		t.Errorf("timer must resume after failure, state=%v", v.TimerState)
	}

	// The same text retried is not a duplicate and now wins.
	if err := m.SubmitGuess(context.Background(), "curie"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	sched.drain()
	if got := m.View().Outcome; got != trivia.OutcomeStandardWin {
		t.Errorf("expected standard-win, got %s", got)
	}
}

func TestExactlyOneGateOpenMidRound(t *testing.T) {
	m, sched, _ := newTestMachine(t, &stubOracle{answer: "x"})

	check := func(step string) {
		v := m.View()
		if v.GameOver || v.FinalFive.Pending || v.FinalFive.Active {
			return
		}
		if v.CanReveal == v.CanGuess {
			t.Errorf("%s: exactly one gate must be open, canReveal=%t canGuess=%t",
				step, v.CanReveal, v.CanGuess)
		}
	}

	check("fresh")
	m.RevealFact(0)
	sched.drain()
	check("after reveal")
	m.CloseCard(0)
	check("after close")
	if err := m.SubmitGuess(context.Background(), "wrong"); err != nil {
		t.Fatal(err)
	}
	check("after wrong guess")
	m.RevealFact(1)
	sched.drain()
	check("after second reveal")
}

func TestMainTimerExpiryEscalates(t *testing.T) {
	stub := &stubOracle{answer: "curie", options: []string{"a", "b", "c", "d", "curie"}}
	m, sched, _ := newTestMachine(t, stub)

	m.CloseCard(0)
	for i := 0; i < MainRoundSeconds; i++ {
		m.Tick()
	}
	sched.drain()

	v := m.View()
	if v.GameOver {
		t.Fatal("expiry must escalate, not end the game")
	}
	if v.Outcome != trivia.OutcomeLossTime {
		t.Errorf("expected provisional loss-time, got %q", v.Outcome)
	}
	if !v.FinalFive.Active {
		t.Error("final five must be active after main expiry")
	}
}

func TestTeardownStopsTransitions(t *testing.T) {
	m, sched, _ := newTestMachine(t, &stubOracle{})

	m.Teardown()
	m.RevealFact(0)
	m.CloseCard(0)
	m.Pass()
	sched.drain()

	v := m.View()
	if len(v.Revealed) != 0 || v.HasSeenClue || len(v.Guesses) != 0 {
		t.Error("transitions after teardown must be no-ops")
	}
}
