// Package testutil provides deterministic stand-ins for the engine's
// external capabilities.
package testutil

import "sync"

// Clock is a thread-safe manual clock for tests.
//
// Unlike the system clock it only moves when a test advances it, so
// timestamps, issue dates and autosave debounce windows are exact.
type Clock struct {
	mu  sync.Mutex
	now int64
}

// NewClock creates a clock frozen at the given Unix time.
func NewClock(now int64) *Clock {
	return &Clock{now: now}
}

// Now returns the frozen time.
func (c *Clock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d seconds.
func (c *Clock) Advance(d int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
}

// Set jumps the clock to an absolute Unix time.
func (c *Clock) Set(now int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
