// Package permission polls the accessibility-permission state and fans out
// changes to subscribers. The probe itself is injected so the checker stays
// testable off-macOS.
package permission

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Probe reports whether the process currently holds the permission.
type Probe func() bool

// Checker polls a Probe on an interval and notifies subscribers when the
// result flips. At most one probe runs at a time; a tick that arrives while
// a probe is still in flight is skipped.
type Checker struct {
	probe    Probe
	interval time.Duration

	mu      sync.Mutex
	granted bool
	known   bool
	subs    []chan bool

	checking sync.Mutex

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewChecker builds a checker around probe. interval <= 0 defaults to 2s.
func NewChecker(probe Probe, interval time.Duration) *Checker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Checker{
		probe:    probe,
		interval: interval,
	}
}

// Granted returns the most recent probe result. It runs the probe directly
// if no poll has completed yet.
func (c *Checker) Granted() bool {
	c.mu.Lock()
	if c.known {
		granted := c.granted
		c.mu.Unlock()
		return granted
	}
	c.mu.Unlock()

	c.Check()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.granted
}

// Subscribe returns a channel that receives the new state each time the
// permission flips. The channel is buffered; a slow subscriber misses
// intermediate flips rather than blocking the poller.
func (c *Checker) Subscribe() <-chan bool {
	ch := make(chan bool, 1)
	c.mu.Lock()
	c.subs = append(c.subs, ch)
	c.mu.Unlock()
	return ch
}

// Start begins polling. Stop must be called to release the poller.
func (c *Checker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.Check()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Check()
			}
		}
	}()
}

// Stop halts polling, waits for the poller to exit, and closes subscriber
// channels. Check must not be called after Stop.
func (c *Checker) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()

	c.mu.Lock()
	for _, ch := range c.subs {
		close(ch)
	}
	c.subs = nil
	c.mu.Unlock()
}

// Check runs the probe once. If another check is already in flight it
// returns immediately.
func (c *Checker) Check() {
	if !c.checking.TryLock() {
		return
	}
	defer c.checking.Unlock()

	granted := c.probe()

	c.mu.Lock()
	changed := !c.known || granted != c.granted
	c.granted = granted
	c.known = true
	subs := make([]chan bool, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	if !changed {
		return
	}
	slog.Info("Accessibility permission changed", "granted", granted)
	for _, ch := range subs {
		select {
		case ch <- granted:
		default:
		}
	}
}
