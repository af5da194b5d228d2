// Package activity tracks when the user was last active so callers can
// suppress work (notifications, cleanup sweeps) while the machine is in use.
package activity

import (
	"sync"
	"time"
)

// Tracker records the most recent user activity.
type Tracker struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewTracker returns a tracker with last activity set to now.
func NewTracker() *Tracker {
	t := &Tracker{now: time.Now}
	t.last = t.now()
	return t
}

// Touch records activity at the current time.
func (t *Tracker) Touch() {
	t.mu.Lock()
	t.last = t.now()
	t.mu.Unlock()
}

// LastActivity returns the most recent recorded activity time.
func (t *Tracker) LastActivity() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// IsIdle reports whether at least threshold has passed since the last
// recorded activity.
func (t *Tracker) IsIdle(threshold time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now().Sub(t.last) >= threshold
}
