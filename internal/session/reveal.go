package session

import "github.com/factday/fivefacts/internal/trivia"

// revealTracker owns the ordered sequence of revealed fact indices.
// Membership is set-semantics (no duplicates) but insertion order matters:
// the display layer evicts the oldest entry when more than five cards would
// be visible, and re-viewing an already-revealed fact moves it to the end
// without re-triggering reveal side effects.
type revealTracker struct {
	order []int
}

func (r *revealTracker) contains(index int) bool {
	for _, i := range r.order {
		if i == index {
			return true
		}
	}
	return false
}

// add appends index, evicting the oldest entry if the sequence would exceed
// the visible-card bound. Adding an already-present index reorders it.
func (r *revealTracker) add(index int) {
	if r.contains(index) {
		r.touch(index)
		return
	}
	r.order = append(r.order, index)
	if len(r.order) > trivia.FactCount {
		r.order = r.order[1:]
	}
}

// touch moves an already-revealed index to the end (most recently viewed).
func (r *revealTracker) touch(index int) {
	for pos, i := range r.order {
		if i == index {
			r.order = append(r.order[:pos], r.order[pos+1:]...)
			r.order = append(r.order, index)
			return
		}
	}
}

func (r *revealTracker) count() int { return len(r.order) }

func (r *revealTracker) indices() []int {
	out := make([]int, len(r.order))
	copy(out, r.order)
	return out
}

// sanitize drops out-of-range and duplicate entries from a loaded sequence,
// preserving first-seen order. Reconciliation runs it before trusting any
// persisted tracker state.
func sanitizeRevealed(loaded []int) []int {
	seen := make(map[int]bool, trivia.FactCount)
	var out []int
	for _, i := range loaded {
		if i < 0 || i >= trivia.FactCount || seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, i)
	}
	if len(out) > trivia.FactCount {
		out = out[len(out)-trivia.FactCount:]
	}
	return out
}
