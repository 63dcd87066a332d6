// Package testutil provides deterministic substitutes for the ambient
// inputs (wall time, identifiers) that make session traces reproducible in
// tests.
package testutil

import (
	"sync"
	"time"
)

// SteppedClock is a thread-safe deterministic clock for tests. Every call
// to Now advances it by a fixed step, so events recorded in sequence get
// strictly increasing, reproducible timestamps.
//
// Unlike a frozen clock, SteppedClock keeps timestamp ordering meaningful:
// event listings sorted by time come back in call order.
//
// Thread-safety: all methods are safe for concurrent use via internal
// mutex.
type SteppedClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewSteppedClock creates a clock starting at start that advances by step
// on every Now call. The first call returns start plus one step.
func NewSteppedClock(start time.Time, step time.Duration) *SteppedClock {
	return &SteppedClock{now: start.UTC(), step: step}
}

// Now advances the clock by one step and returns the new instant.
func (c *SteppedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

// Current returns the last instant handed out without advancing.
func (c *SteppedClock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Reset rewinds the clock to start. After Reset the next Now call returns
// start plus one step again.
func (c *SteppedClock) Reset(start time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = start.UTC()
}
