package harness

import (
	"sync/atomic"

	"github.com/roach88/linearize/internal/history"
)

// Clock issues strictly increasing timestamps.
// Implemented by LogicalClock and testutil.DeterministicClock.
type Clock interface {
	Next() history.Timestamp
}

// LogicalClock is a monotonic logical clock for stamping calls.
//
// Every request and acknowledgement takes one tick, so a call's ack is
// always after its req and a call begun after another completed starts
// after that call's ack.
//
// Thread-safety: LogicalClock is safe for concurrent use (atomic operations).
type LogicalClock struct {
	ts atomic.Uint64
}

// NewLogicalClock creates a new clock starting at 0.
func NewLogicalClock() *LogicalClock {
	return &LogicalClock{}
}

// NewLogicalClockAt creates a new clock whose first Next returns start+1.
// Used to continue a recording after previously stored timestamps.
func NewLogicalClockAt(start history.Timestamp) *LogicalClock {
	c := &LogicalClock{}
	c.ts.Store(start)
	return c
}

// Next returns the next timestamp and increments the clock.
func (c *LogicalClock) Next() history.Timestamp {
	return c.ts.Add(1)
}

// Current returns the current timestamp without incrementing.
func (c *LogicalClock) Current() history.Timestamp {
	return c.ts.Load()
}
