package clock

import "time"

// Clock supplies the current time to date-sensitive calculations
type Clock interface {
	Now() time.Time
}

// System reads the wall clock
type System struct{}

// New returns the wall clock
func New() Clock {
	return System{}
}

// Now returns the current UTC time
func (System) Now() time.Time {
	return time.Now().UTC()
}

// FakeClock is a manually driven clock for tests and replays
type FakeClock struct {
	now time.Time
}

// NewFakeClock creates a clock frozen at t
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

// Now returns the frozen time
func (c *FakeClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward by d
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// Set moves the clock to t
func (c *FakeClock) Set(t time.Time) {
	c.now = t.UTC()
}
