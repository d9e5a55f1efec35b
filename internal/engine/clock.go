package engine

import "sync/atomic"

// Clock is the engine's monotonic logical clock.
//
// Every applied transition, and every catalog request it starts, is stamped
// with a strictly increasing seq from Next. Request seqs are what fetch
// completions are matched against.
//
// Thread-safety: Clock is safe for concurrent use. In practice only the Run
// goroutine calls Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that continues after start.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next increments the clock and returns the new value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
