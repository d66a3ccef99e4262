package session

import "errors"

// ErrDuplicateGuess rejects a guess whose text case-insensitively matches a
// prior ledger entry. Raised before any network call; no state is mutated.
var ErrDuplicateGuess = errors.New("duplicate guess")

// ErrCorruptedState means a loaded snapshot violated the core invariant
// (more wrong guesses than revealed facts). The session is reset to a safe
// minimal state rather than trusted.
var ErrCorruptedState = errors.New("corrupted session state")
