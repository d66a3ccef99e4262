// Package oracle defines the verification-oracle contract the session core
// consumes, plus the HTTP implementation and the shared retry policy. The
// server never ships the answer in cleartext; the client only learns
// correctness through VerifyGuess.
package oracle

import (
	"context"
	"errors"
	"fmt"

	"github.com/factday/fivefacts/internal/trivia"
)

// ErrNotFound means no challenge exists for today. Fatal to session start.
var ErrNotFound = errors.New("challenge not found")

// NetworkError wraps a transient transport failure. Calls that return it
// may be retried; everything else is terminal.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err is (or wraps) a NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// Client is the verification oracle consumed by the session machine. All
// calls are fallible; VerifyGuess must be idempotent so it is safe to call
// repeatedly for the same guess.
type Client interface {
	FetchChallenge(ctx context.Context, language string) (trivia.Challenge, error)
	VerifyGuess(ctx context.Context, challengeID, guess, language string) (bool, error)
	FinalFiveOptions(ctx context.Context, challengeID string, excludedGuesses []string, language string) ([]string, error)
	FinalFiveAnswer(ctx context.Context, challengeID, language string) (string, error)
}
