package session

import "time"

type TimerState int

const (
	TimerIdle TimerState = iota
	TimerRunning
	TimerPaused
	TimerExpired
)

func (s TimerState) String() string {
	switch s {
	case TimerRunning:
		return "running"
	case TimerPaused:
		return "paused"
	case TimerExpired:
		return "expired"
	default:
		return "idle"
	}
}

// Timer is a second-granularity countdown. It never touches the wall clock
// itself: the host calls Tick once per second and passes "now" explicitly.
// The main round and the Final Five round each own an independent instance;
// the two are never concurrently running.
type Timer struct {
	state     TimerState
	remaining int
	startedAt *time.Time
}

func NewTimer(seconds int) *Timer {
	return &Timer{state: TimerIdle, remaining: seconds}
}

// Start begins the countdown. Idempotent: calling it again once started is
// a no-op, so only the first card-close ever starts the main round.
func (t *Timer) Start(now time.Time) {
	if t.state != TimerIdle {
		return
	}
	t.state = TimerRunning
	ts := now
	t.startedAt = &ts
}

// Pause suspends decrementing without losing the remaining count.
func (t *Timer) Pause() {
	if t.state == TimerRunning {
		t.state = TimerPaused
	}
}

func (t *Timer) Resume() {
	if t.state == TimerPaused {
		t.state = TimerRunning
	}
}

// Tick consumes one second. At remaining<=1 the timer transitions to
// Expired rather than silently reaching zero; the return value reports
// whether this tick fired the expiry.
func (t *Timer) Tick() (expired bool) {
	if t.state != TimerRunning {
		return false
	}
	if t.remaining <= 1 {
		t.remaining = 0
		t.state = TimerExpired
		return true
	}
	t.remaining--
	return false
}

// Advance consumes elapsed whole seconds at once, clamping at zero. Used by
// reconciliation to catch a restored timer up to the wall clock.
func (t *Timer) Advance(seconds int) (expired bool) {
	if t.state != TimerRunning || seconds <= 0 {
		return false
	}
	if seconds >= t.remaining {
		t.remaining = 0
		t.state = TimerExpired
		return true
	}
	t.remaining -= seconds
	return false
}

func (t *Timer) State() TimerState    { return t.state }
func (t *Timer) Remaining() int       { return t.remaining }
func (t *Timer) StartedAt() *time.Time { return t.startedAt }

// restore rebuilds a timer from snapshot fields without side effects.
func restoreTimer(remaining int, state TimerState, startedAt *time.Time) *Timer {
	return &Timer{state: state, remaining: remaining, startedAt: startedAt}
}
