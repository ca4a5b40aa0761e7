package migtest

import (
	"context"
	"sync"
	"time"

	"github.com/iov-one/mig"
)

// Clock is a manually driven mig.Clock. Time moves only when told to.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

var _ mig.Clock = (*Clock)(nil)

// NewClock returns a clock stopped at given time, truncated to seconds.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start.UTC().Truncate(time.Second)}
}

// Now returns the current time of the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by given duration.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to given time.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t.UTC().Truncate(time.Second)
}

// Context returns a background context stamped with the clock's current time.
func (c *Clock) Context() mig.Context {
	return mig.WithBlockTime(context.Background(), c.Now())
}
