package session

import "time"

// Clock is the only source of "now" inside the session core. Tests inject a
// fake; production uses SystemClock.
type Clock interface {
	Now() time.Time
}

// Scheduler runs a function after a delay. All animation choreography and
// the minimum-processing floor go through it so tests can drive time
// manually instead of sleeping.
type Scheduler interface {
	// AfterFunc schedules fn after d and returns a cancel function.
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type SystemScheduler struct{}

func (SystemScheduler) AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
