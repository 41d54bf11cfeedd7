package testutil

import (
	"sync"
	"time"
)

// DeterministicClock is a fake wall clock for tests.
//
// Each call to Now returns the start time advanced by one step per previous
// call, so consecutive timestamps are strictly increasing and reproducible.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	calls int64
}

// NewDeterministicClock creates a clock starting at start and advancing by
// step on every call to Now.
func NewDeterministicClock(start time.Time, step time.Duration) *DeterministicClock {
	return &DeterministicClock{start: start, step: step}
}

// Now returns the next timestamp.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.start.Add(time.Duration(c.calls) * c.step)
	c.calls++
	return t
}

// Calls returns how many times Now has been called.
func (c *DeterministicClock) Calls() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Reset rewinds the clock to its start time.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = 0
}
