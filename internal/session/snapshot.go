package session

import (
	"time"

	"github.com/factday/fivefacts/internal/trivia"
)

// TimerSnapshot captures a Timer for persistence.
type TimerSnapshot struct {
	Remaining int        `json:"remaining"`
	State     TimerState `json:"state"`
	StartedAt *time.Time `json:"startTimestamp"`
}

func (t *Timer) snapshot() TimerSnapshot {
	return TimerSnapshot{Remaining: t.remaining, State: t.state, StartedAt: t.startedAt}
}

// FinalFiveSnapshot captures the escalation round for persistence.
type FinalFiveSnapshot struct {
	Pending      bool           `json:"pending"`
	Active       bool           `json:"active"`
	Reason       string         `json:"reason,omitempty"`
	Options      []string       `json:"options,omitempty"`
	Revealed     int            `json:"revealedOptions"`
	Selected     string         `json:"selectedOption,omitempty"`
	SelectedOnce bool           `json:"selectedOnce"`
	Completed    bool           `json:"completed"`
	Outcome      trivia.Outcome `json:"outcome,omitempty"`
	Answer       string         `json:"answer,omitempty"`
	Timer        TimerSnapshot  `json:"timer"`
}

// Snapshot is the full serialized GameSession. PersistenceGateway writes one
// per profile per day and every load runs Reconcile before the session is
// exposed to callers.
type Snapshot struct {
	Day          string             `json:"day"`
	Challenge    trivia.Challenge   `json:"challenge"`
	Revealed     []int              `json:"revealedFacts"`
	Guesses      []trivia.UserGuess `json:"guesses"`
	HasSeenClue  bool               `json:"hasSeenClue"`
	CanReveal    bool               `json:"canRevealNewClue"`
	CanGuess     bool               `json:"canMakeGuess"`
	LastRevealed int                `json:"lastRevealedFactIndex"`
	GameOver     bool               `json:"isGameOver"`
	Outcome      trivia.Outcome     `json:"outcome,omitempty"`
	Timer        TimerSnapshot      `json:"timer"`
	FinalFive    FinalFiveSnapshot  `json:"finalFive"`
	SavedAt      time.Time          `json:"savedAt"`
}

// Snapshot serializes the current session state. Safe to call at any moment;
// intermediate animation states are repaired by Reconcile on load.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() Snapshot {
	return Snapshot{
		Day:          m.day,
		Challenge:    m.challenge,
		Revealed:     m.reveals.indices(),
		Guesses:      m.ledger.all(),
		HasSeenClue:  m.hasSeenClue,
		CanReveal:    m.canReveal,
		CanGuess:     m.canGuess,
		LastRevealed: m.lastRevealed,
		GameOver:     m.gameOver,
		Outcome:      m.outcome,
		Timer:        m.mainTimer.snapshot(),
		FinalFive: FinalFiveSnapshot{
			Pending:      m.ff.pending,
			Active:       m.ff.active,
			Reason:       m.ff.reason,
			Options:      append([]string(nil), m.ff.options...),
			Revealed:     m.ff.revealed,
			Selected:     m.ff.selected,
			SelectedOnce: m.ff.selectedOnce,
			Completed:    m.ff.completed,
			Outcome:      m.ff.outcome,
			Answer:       m.ff.answer,
			Timer:        m.ffTimer.snapshot(),
		},
		SavedAt: m.clock.Now(),
	}
}
