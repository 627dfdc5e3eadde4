package clock

import "time"

// Clock abstracts time so lifecycle logic (session expiry, room TTLs,
// grace windows) can be driven deterministically in tests
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock with the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current system time
func (c *RealClock) Now() time.Time {
	return time.Now()
}
