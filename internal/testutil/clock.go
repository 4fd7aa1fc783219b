package testutil

import (
	"sync"

	"github.com/roach88/linearize/internal/history"
)

// DeterministicClock provides a thread-safe monotonic logical clock for tests.
//
// Unlike harness.LogicalClock, DeterministicClock can be reset for test reuse.
// The same recording run twice produces identical timestamps.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu sync.Mutex
	ts history.Timestamp
}

// NewDeterministicClock creates a new deterministic clock starting at 0.
//
// The first call to Next() returns 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// NewDeterministicClockAt creates a clock whose first Next() returns start+1.
func NewDeterministicClockAt(start history.Timestamp) *DeterministicClock {
	return &DeterministicClock{ts: start}
}

// Next increments and returns the next timestamp.
func (c *DeterministicClock) Next() history.Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ts++
	return c.ts
}

// Current returns the current timestamp without incrementing.
func (c *DeterministicClock) Current() history.Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ts
}

// Reset resets the clock to 0.
//
// After Reset(), the next call to Next() returns 1.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ts = 0
}
