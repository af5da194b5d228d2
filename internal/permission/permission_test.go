package permission

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestGrantedRunsProbeOnDemand(t *testing.T) {
	var calls int32
	c := NewChecker(func() bool {
		atomic.AddInt32(&calls, 1)
		return true
	}, time.Hour)

	if !c.Granted() {
		t.Error("Expected permission to be granted")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected 1 probe call, got %d", got)
	}

	// Second call uses the cached result.
	c.Granted()
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected cached result, got %d probe calls", got)
	}
}

func TestSubscriberSeesFlip(t *testing.T) {
	var state atomic.Bool
	c := NewChecker(state.Load, time.Hour)

	ch := c.Subscribe()
	c.Check()

	select {
	case got := <-ch:
		if got {
			t.Error("Expected initial state to be denied")
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for initial state")
	}

	state.Store(true)
	c.Check()

	select {
	case got := <-ch:
		if !got {
			t.Error("Expected flip to granted")
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for flip")
	}

	// No flip, no event.
	c.Check()
	select {
	case <-ch:
		t.Error("Expected no event for unchanged state")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPollingDetectsChange(t *testing.T) {
	var state atomic.Bool
	c := NewChecker(state.Load, 10*time.Millisecond)

	ch := c.Subscribe()
	c.Start()
	defer c.Stop()

	<-ch // initial denied state

	state.Store(true)

	select {
	case got := <-ch:
		if !got {
			t.Error("Expected poller to report granted")
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for poller to detect change")
	}
}

func TestOverlappingChecksSkipped(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	c := NewChecker(func() bool {
		atomic.AddInt32(&calls, 1)
		<-release
		return true
	}, time.Hour)

	go c.Check()

	// Wait for the first probe to be in flight.
	for atomic.LoadInt32(&calls) == 0 {
		time.Sleep(time.Millisecond)
	}

	c.Check() // should return without probing
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected overlapping check to be skipped, got %d probe calls", got)
	}
	close(release)
}
