package session

import (
	"testing"
	"time"
)

func TestTimerStartIsIdempotent(t *testing.T) {
	tm := NewTimer(300)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	tm.Start(now)
	if tm.State() != TimerRunning {
		t.Fatalf("expected running, got %v", tm.State())
	}
	first := *tm.StartedAt()

	tm.Start(now.Add(time.Minute))
	if !tm.StartedAt().Equal(first) {
		t.Error("second Start must not reset the start timestamp")
	}
}

func TestTimerPauseResumePreservesRemaining(t *testing.T) {
	tm := NewTimer(10)
	tm.Start(time.Now())

	tm.Tick()
	tm.Tick()
	tm.Pause()

	if tm.Tick() {
		t.Error("tick while paused must not expire")
	}
	if tm.Remaining() != 8 {
		t.Errorf("expected 8 remaining, got %d", tm.Remaining())
	}

	tm.Resume()
	tm.Tick()
	if tm.Remaining() != 7 {
		t.Errorf("expected 7 remaining after resume, got %d", tm.Remaining())
	}
}

func TestTimerExpiresAtOne(t *testing.T) {
	tm := NewTimer(2)
	tm.Start(time.Now())

	if tm.Tick() {
		t.Fatal("first tick should not expire")
	}
	if !tm.Tick() {
		t.Fatal("tick at remaining=1 must fire expiry")
	}
	if tm.State() != TimerExpired || tm.Remaining() != 0 {
		t.Errorf("expected expired/0, got %v/%d", tm.State(), tm.Remaining())
	}
	if tm.Tick() {
		t.Error("tick after expiry must be a no-op")
	}
}

func TestTimerAdvanceClampsAtZero(t *testing.T) {
	tm := NewTimer(30)
	tm.Start(time.Now())

	if tm.Advance(10) {
		t.Fatal("advance within remaining should not expire")
	}
	if tm.Remaining() != 20 {
		t.Errorf("expected 20, got %d", tm.Remaining())
	}

	if !tm.Advance(500) {
		t.Fatal("advance past remaining must expire")
	}
	if tm.Remaining() != 0 {
		t.Errorf("expected 0, got %d", tm.Remaining())
	}
}

func TestTimerIdleDoesNotTick(t *testing.T) {
	tm := NewTimer(5)
	if tm.Tick() {
		t.Error("idle timer must not tick")
	}
	if tm.Remaining() != 5 {
		t.Errorf("expected 5, got %d", tm.Remaining())
	}
}
