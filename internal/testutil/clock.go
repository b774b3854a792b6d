package testutil

import (
	"sync"
	"time"
)

// Epoch is the instant FixedClock starts from: 2025-10-09T08:53:20Z.
var Epoch = time.UnixMilli(1760000000000).UTC()

// FixedClock is a thread-safe logical clock for tests.
//
// Each call to Now advances by Step, so specs, store rows and reports
// stamped in a test are byte-identical across runs. A zero Step returns
// Epoch every time.
type FixedClock struct {
	mu    sync.Mutex
	ticks int64
	Step  time.Duration
}

// NewFixedClock creates a clock at Epoch advancing by step per read.
func NewFixedClock(step time.Duration) *FixedClock {
	return &FixedClock{Step: step}
}

// Now returns the current logical time and advances the clock.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := Epoch.Add(time.Duration(c.ticks) * c.Step)
	c.ticks++
	return t
}

// Reads returns how many times Now was called.
func (c *FixedClock) Reads() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

// Reset rewinds the clock to Epoch.
func (c *FixedClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks = 0
}
