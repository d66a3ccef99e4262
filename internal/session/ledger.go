package session

import (
	"strings"
	"time"

	"github.com/factday/fivefacts/internal/trivia"
)

// guessLedger owns the append-only list of submitted guesses. Entries are
// never mutated or removed; every derived count is recomputed from the list.
type guessLedger struct {
	guesses []trivia.UserGuess
}

func (l *guessLedger) append(text string, isCorrect bool, now time.Time) {
	l.guesses = append(l.guesses, trivia.UserGuess{
		Text:      text,
		IsCorrect: isCorrect,
		Timestamp: now,
	})
}

// isDuplicate matches text case-insensitively against any prior guess.
// The skip sentinel is exempt: passing twice is always allowed.
func (l *guessLedger) isDuplicate(text string) bool {
	if text == trivia.SkipSentinel {
		return false
	}
	for _, g := range l.guesses {
		if strings.EqualFold(strings.TrimSpace(g.Text), strings.TrimSpace(text)) {
			return true
		}
	}
	return false
}

func (l *guessLedger) wrongCount() int {
	n := 0
	for _, g := range l.guesses {
		if !g.IsCorrect {
			n++
		}
	}
	return n
}

func (l *guessLedger) correctFound() bool {
	for _, g := range l.guesses {
		if g.IsCorrect {
			return true
		}
	}
	return false
}

// wrongTexts returns the texts of wrong real guesses, for exclusion from the
// Final Five option fetch. Skips carry no text worth excluding.
func (l *guessLedger) wrongTexts() []string {
	var out []string
	for _, g := range l.guesses {
		if !g.IsCorrect && !g.IsSkip() {
			out = append(out, g.Text)
		}
	}
	return out
}

func (l *guessLedger) all() []trivia.UserGuess {
	out := make([]trivia.UserGuess, len(l.guesses))
	copy(out, l.guesses)
	return out
}
