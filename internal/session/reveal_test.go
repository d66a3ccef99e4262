package session

import (
	"reflect"
	"testing"
)

func TestRevealTrackerNoDuplicates(t *testing.T) {
	var r revealTracker
	r.add(2)
	r.add(2)
	r.add(2)

	if r.count() != 1 {
		t.Fatalf("expected 1 revealed, got %d", r.count())
	}
}

func TestRevealTrackerBounded(t *testing.T) {
	var r revealTracker
	for i := 0; i < 5; i++ {
		r.add(i)
	}
	if r.count() != 5 {
		t.Fatalf("expected 5 revealed, got %d", r.count())
	}
	if !reflect.DeepEqual(r.indices(), []int{0, 1, 2, 3, 4}) {
		t.Errorf("unexpected order: %v", r.indices())
	}
}

func TestRevealTrackerTouchReorders(t *testing.T) {
	var r revealTracker
	r.add(0)
	r.add(1)
	r.add(2)

	r.touch(0)
	if !reflect.DeepEqual(r.indices(), []int{1, 2, 0}) {
		t.Errorf("expected [1 2 0], got %v", r.indices())
	}

	// Touching an unknown index is a no-op.
	r.touch(4)
	if !reflect.DeepEqual(r.indices(), []int{1, 2, 0}) {
		t.Errorf("expected [1 2 0], got %v", r.indices())
	}
}

func TestSanitizeRevealed(t *testing.T) {
	tests := []struct {
		name string
		in   []int
		want []int
	}{
		{"nil", nil, nil},
		{"clean", []int{3, 1}, []int{3, 1}},
		{"duplicates", []int{1, 1, 2, 1}, []int{1, 2}},
		{"out of range", []int{-1, 0, 5, 9, 4}, []int{0, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeRevealed(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
