package breaker

import (
	"fmt"
	"math/rand"
	"time"
)

// Permit decides, per HALF_OPEN call, whether to admit the probe. A call is
// admitted iff an independently sampled uniform(0,1) is less than the
// permit's admission probability at the moment of the call.
type Permit interface {
	// Admit reports whether a call arriving at now should be admitted,
	// given when the breaker entered HALF_OPEN.
	Admit(now, halfOpenEnteredAt time.Time) bool
}

type permitRandom struct{ rate float64 }

// PermitRandom admits a fixed fraction of calls, independent of how long
// the breaker has been in HALF_OPEN.
func PermitRandom(rate float64) Permit { return permitRandom{rate: rate} }

func (p permitRandom) Admit(time.Time, time.Time) bool {
	return rand.Float64() < p.rate
}

type permitRampUp struct {
	initial, final float64
	duration       time.Duration
}

// PermitRampUp linearly ramps the admission probability from initial to
// final over duration, measured from halfOpenEnteredAt. If now is before
// halfOpenEnteredAt (clock skew), the probability is initial.
func PermitRampUp(initial, final float64, duration time.Duration) Permit {
	return permitRampUp{initial: initial, final: final, duration: duration}
}

func (p permitRampUp) Admit(now, halfOpenEnteredAt time.Time) bool {
	elapsed := now.Sub(halfOpenEnteredAt)
	var frac float64
	switch {
	case elapsed <= 0:
		frac = 0
	case p.duration == 0:
		frac = 1
	default:
		frac = float64(elapsed) / float64(p.duration)
		if frac > 1 {
			frac = 1
		}
	}
	probability := p.initial + (p.final-p.initial)*frac
	return rand.Float64() < probability
}

// validateConfig rejects a negative ramp duration; duration == 0 is valid
// and means the ramp completes immediately.
func (p permitRampUp) validateConfig() error {
	if p.duration < 0 {
		return fmt.Errorf("%w: PermitRampUp duration must be non-negative, got %v", ErrInvalidConfig, p.duration)
	}
	return nil
}
