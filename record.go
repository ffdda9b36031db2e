package breaker

import "time"

// Record is an immutable observation of a single completed call. Once
// appended to a Window it is never mutated; the window only ever evicts or
// ages it out.
type Record struct {
	// Success is false when the call's outcome was classified as a
	// failure by the breaker's Tracker.
	Success bool
	// Slow is true when Duration met or exceeded the breaker's configured
	// SlowThreshold. The engine computes this before handing the Record to
	// a Window, so every Window enforces the same cutoff rather than each
	// carrying its own.
	Slow bool
	// Duration is the wall-clock elapsed time of the call, never negative.
	Duration time.Duration
	// Timestamp is the wall-clock instant the call completed.
	Timestamp time.Time
}
