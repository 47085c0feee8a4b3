// Package testutil provides deterministic helpers for harness tests: a
// logical clock for trace sequencing and a generator of fake SUT
// executables that behave predictably without a real network.
package testutil

import "sync"

// DeterministicClock is a thread-safe monotonic logical clock.
//
// Run traces are seq-stamped from this clock instead of wall time so the
// same scenario produces byte-identical golden snapshots on every run.
type DeterministicClock struct {
	mu  sync.Mutex
	seq int64
}

// NewDeterministicClock creates a clock starting at 0; the first call to
// Next returns 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next increments and returns the next sequence number.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the current sequence number without incrementing.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset rewinds the clock to 0 for reuse across repeated runs.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
