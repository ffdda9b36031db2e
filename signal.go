package breaker

import (
	"time"

	"github.com/google/uuid"
)

// Signal is dispatched to every registered Listener on a state transition.
type Signal struct {
	// ID uniquely identifies this dispatch, for correlating listener-side
	// logs with the transition that triggered them.
	ID          string
	CircuitName string
	OldState    State
	NewState    State
	Timestamp   time.Time
}

// Listener observes breaker state transitions. A Listener must not block
// indefinitely — the synchronous engine dispatches inline on the calling
// goroutine, and a slow sync listener stalls that caller. An error returned
// from OnSignal is logged and otherwise ignored: it never reaches the
// breaker's caller and never stops the remaining listeners from running.
type Listener interface {
	OnSignal(s Signal) error
}

// ListenerFunc adapts a plain function to the Listener interface.
type ListenerFunc func(s Signal) error

// OnSignal implements Listener.
func (f ListenerFunc) OnSignal(s Signal) error { return f(s) }

// signalBus dispatches transition signals to registered listeners in
// registration order, catching and logging any listener panic so one
// misbehaving sink never affects the breaker's own state or the other
// listeners' delivery.
type signalBus struct {
	listeners []Listener
	logger    Logger
}

func newSignalBus(listeners []Listener, logger Logger) *signalBus {
	return &signalBus{listeners: listeners, logger: requireLogger(logger)}
}

func (b *signalBus) dispatch(name string, from, to State) {
	s := Signal{
		ID:          uuid.NewString(),
		CircuitName: name,
		OldState:    from,
		NewState:    to,
		Timestamp:   time.Now(),
	}
	for _, l := range b.listeners {
		b.safeNotify(l, s)
	}
}

func (b *signalBus) safeNotify(l Listener, s Signal) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("signal listener panicked", map[string]interface{}{
				"circuit": s.CircuitName,
				"panic":   r,
			})
		}
	}()
	if err := l.OnSignal(s); err != nil {
		b.logger.Error("signal listener returned an error", map[string]interface{}{
			"circuit": s.CircuitName,
			"error":   err.Error(),
		})
	}
}
