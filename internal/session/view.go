package session

import "github.com/factday/fivefacts/internal/trivia"

// FinalFiveView is the read-only escalation-round projection.
type FinalFiveView struct {
	Pending   bool
	Active    bool
	Options   []string
	Revealed  int
	Selected  string
	Completed bool
	Remaining int
	Answer    string
}

// View is a consistent read-only projection of the session, taken under the
// session lock. The UI renders from it and from the event stream.
type View struct {
	Challenge    trivia.Challenge
	Revealed     []int
	Guesses      []trivia.UserGuess
	WrongGuesses int
	HasSeenClue  bool
	CanReveal    bool
	CanGuess     bool
	Processing   bool
	GameOver     bool
	Outcome      trivia.Outcome
	Remaining    int
	TimerState   TimerState
	FinalFive    FinalFiveView
}

func (m *Machine) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return View{
		Challenge:    m.challenge,
		Revealed:     m.reveals.indices(),
		Guesses:      m.ledger.all(),
		WrongGuesses: m.ledger.wrongCount(),
		HasSeenClue:  m.hasSeenClue,
		CanReveal:    m.canReveal,
		CanGuess:     m.canGuess,
		Processing:   m.processing,
		GameOver:     m.gameOver,
		Outcome:      m.outcome,
		Remaining:    m.mainTimer.Remaining(),
		TimerState:   m.mainTimer.State(),
		FinalFive: FinalFiveView{
			Pending:   m.ff.pending,
			Active:    m.ff.active,
			Options:   append([]string(nil), m.ff.options...),
			Revealed:  m.ff.revealed,
			Selected:  m.ff.selected,
			Completed: m.ff.completed,
			Remaining: m.ffTimer.Remaining(),
			Answer:    m.ff.answer,
		},
	}
}
