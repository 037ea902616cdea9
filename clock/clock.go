// Package clock provides an injectable source of wall-clock time.
//
// The kernel seeds math/rand's scheduler lottery from this clock at
// boot and stamps directory mtimes with it (spec.md §6); tests use
// FakeClock instead of sleeping in real time, and SimulatedClock is
// available for tests that advance time by hand.
package clock

import "time"

// Clock is a source of time, abstracted so tests can control it.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel on which the current time is sent once
	// the given duration has elapsed, with semantics equivalent to
	// time.After.
	After(d time.Duration) <-chan time.Time
}

var (
	_ Clock = RealClock{}
	_ Clock = &FakeClock{}
	_ Clock = &SimulatedClock{}
)
