package breaker

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every configuration-time validation
// failure, so callers can test with errors.Is(err, ErrInvalidConfig)
// without matching the exact message.
var ErrInvalidConfig = errors.New("invalid breaker configuration")

// CallNotPermittedError is returned when the engine short-circuits a call
// without invoking the wrapped function: OPEN before the retry clock is
// due, a HALF_OPEN permit rejection, a HALF_OPEN concurrency-bound
// rejection, or FORCED_OPEN.
type CallNotPermittedError struct {
	CircuitName string
	State       State
	Message     string
}

// Error implements error.
func (e *CallNotPermittedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("breaker %q: call not permitted (%s): %s", e.CircuitName, e.State, e.Message)
	}
	return fmt.Sprintf("breaker %q: call not permitted (%s)", e.CircuitName, e.State)
}

// ErrCallNotPermitted is the sentinel CallNotPermittedError wraps, so
// callers can test with errors.Is(err, ErrCallNotPermitted) instead of
// errors.As.
var ErrCallNotPermitted = errors.New("call not permitted")

// Unwrap lets errors.Is(err, ErrCallNotPermitted) succeed.
func (e *CallNotPermittedError) Unwrap() error { return ErrCallNotPermitted }

func newCallNotPermitted(name string, state State, message string) error {
	return &CallNotPermittedError{CircuitName: name, State: state, Message: message}
}
