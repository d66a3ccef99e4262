// Package trivia defines the core domain types for the daily FiveFacts game.
// It has zero external dependencies — everything here is pure Go.
package trivia

import "time"

// FactCount is the number of clue slots in every challenge. Facts are
// identified by their index (0..FactCount-1); the index is the only stable
// identity used throughout a session.
const FactCount = 5

// WrongGuessLimit is the number of wrong guesses (or skips) that triggers
// the Final Five escalation round.
const WrongGuessLimit = 5

type Fact struct {
	Type     string `json:"factType"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// Challenge is the immutable daily puzzle. The answer never travels to the
// session core in cleartext; correctness is only learned through the
// verification oracle.
type Challenge struct {
	ID       string `json:"challengeId"`
	Day      string `json:"day"`
	Language string `json:"language"`
	Category string `json:"category"`
	Facts    []Fact `json:"facts"`
}

// SkipSentinel marks a deliberate pass-without-guessing action. It is never
// shown to the player and counts as a wrong guess for threshold purposes.
const SkipSentinel = "\x00skip"

type UserGuess struct {
	Text      string    `json:"text"`
	IsCorrect bool      `json:"isCorrect"`
	Timestamp time.Time `json:"timestamp"`
}

// IsSkip reports whether this ledger entry was a deliberate pass.
func (g UserGuess) IsSkip() bool { return g.Text == SkipSentinel }

// Outcome tags how a session ended.
type Outcome string

const (
	OutcomeNone              Outcome = ""
	OutcomeStandardWin       Outcome = "standard-win"
	OutcomeFinalFiveWin      Outcome = "final-five-win"
	OutcomeLossTime          Outcome = "loss-time"
	OutcomeLossFinalFiveTime Outcome = "loss-final-five-time"
	OutcomeLossFinalFiveWrong Outcome = "loss-final-five-wrong"
)

// Win reports whether the outcome is one of the two winning tags.
func (o Outcome) Win() bool {
	return o == OutcomeStandardWin || o == OutcomeFinalFiveWin
}

// TodayGameData is the end-of-day replay record kept alongside the snapshot.
type TodayGameData struct {
	Outcome        Outcome `json:"outcome"`
	CorrectAnswer  string  `json:"correctAnswer"`
	NumberOfTries  int     `json:"numberOfTries"`
	TimeSpentSecs  int     `json:"timeSpent"`
	CompletionDate string  `json:"completionDate"`
}

// StreakRecord is the day-granularity completion history, decoupled from the
// intra-session machine.
type StreakRecord struct {
	CurrentStreak     int     `json:"currentStreak"`
	WeeklyCompletions [7]bool `json:"weeklyCompletions"`
	LastCompletionDay string  `json:"lastCompletionDate"`
}
