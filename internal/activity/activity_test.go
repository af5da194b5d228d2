package activity

import (
	"testing"
	"time"
)

func TestIsIdle(t *testing.T) {
	clock := time.Now()
	tracker := &Tracker{now: func() time.Time { return clock }}
	tracker.Touch()

	if tracker.IsIdle(time.Minute) {
		t.Error("Expected fresh tracker not to be idle")
	}

	clock = clock.Add(2 * time.Minute)
	if !tracker.IsIdle(time.Minute) {
		t.Error("Expected tracker to be idle after 2m of inactivity")
	}

	tracker.Touch()
	if tracker.IsIdle(time.Minute) {
		t.Error("Expected Touch to reset idle state")
	}
}

func TestLastActivity(t *testing.T) {
	clock := time.Now()
	tracker := &Tracker{now: func() time.Time { return clock }}
	tracker.Touch()

	if got := tracker.LastActivity(); !got.Equal(clock) {
		t.Errorf("Expected last activity %v, got %v", clock, got)
	}
}
