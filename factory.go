package breaker

import (
	"math"
	"time"
)

// DefaultConfig returns a Config for name with reasonable defaults: a
// 20-slot count window, all-error tracking, a 50% failure-rate tripper
// gated by a minimum of 10 requests, a 30-second cooldown retry clock, and
// full-rate half-open admission. Slow-call classification is disabled;
// callers wanting it set cfg.SlowThreshold directly. Callers override
// whichever fields their workload needs before passing the Config to New
// or NewAsync.
func DefaultConfig(name string) Config {
	window, err := NewCountWindow(20)
	if err != nil {
		// Only returns an error for a non-positive capacity, and 20 is a
		// compile-time constant, so this can never happen in practice.
		panic(err)
	}

	return Config{
		Name:          name,
		Window:        window,
		Tracker:       TrackAll(),
		Tripper:       TripperAnd(TripperMinRequests(10), TripperFailureRate(0.5)),
		Retry:         RetryCooldown(30*time.Second, 0.1),
		Permit:        PermitRandom(1.0),
		SlowThreshold: time.Duration(math.MaxInt64),
	}
}

// NewDefault constructs a synchronous Breaker from DefaultConfig(name),
// applying opts on top.
func NewDefault(name string, opts ...Option) (*Breaker, error) {
	return New(DefaultConfig(name), opts...)
}

// NewDefaultAsync constructs a cooperative Async engine from
// DefaultConfig(name), applying opts on top.
func NewDefaultAsync(name string, opts ...Option) (*Async, error) {
	return NewAsync(DefaultConfig(name), opts...)
}
