package convert

import "time"

// Clock is the single injectable source of "now" in the engine (§9, §10.4):
// production wiring uses SystemClock, tests inject a FixedClock so every
// emitted field except Bundle.id/Bundle.timestamp is reproducible.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock, backed by time.Now.
type SystemClock struct{}

// Now returns the current instant.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock is a test Clock that always returns the same instant.
type FixedClock struct {
	Instant time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return c.Instant }
