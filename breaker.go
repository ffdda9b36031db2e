package breaker

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Info is a read-only snapshot of a breaker's bookkeeping, returned by
// Breaker.Info and Async.Info.
type Info struct {
	Name               string
	State              State
	ChangedAt          time.Time
	Reopens            uint32
	Metric             Metric
	TotalExecutions    uint64
	RejectedExecutions uint64
}

// Breaker is the synchronous circuit breaker engine. It is intended for a
// single-threaded caller: it uses no locking and is not safe for concurrent
// use from multiple goroutines. Callers needing concurrency should use
// Async instead.
type Breaker struct {
	name          string
	window        Window
	tracker       Tracker
	tripper       Tripper
	retry         RetryClock
	permit        Permit
	slowThreshold time.Duration
	logger        Logger
	metrics       MetricsCollector
	bus           *signalBus

	state             State
	changedAt         time.Time
	reopens           uint32
	halfOpenEnteredAt time.Time

	totalExecutions    uint64
	rejectedExecutions uint64
}

// New constructs a synchronous Breaker from cfg, applying any options.
// cfg is validated before defaults are applied; a returned error wraps
// ErrInvalidConfig.
func New(cfg Config, opts ...Option) (*Breaker, error) {
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	logger := withComponent(cfg.Logger, "breaker")
	b := &Breaker{
		name:          cfg.Name,
		window:        cfg.Window,
		tracker:       cfg.Tracker,
		tripper:       cfg.Tripper,
		retry:         cfg.Retry,
		permit:        cfg.Permit,
		slowThreshold: cfg.SlowThreshold,
		logger:        logger,
		metrics:       cfg.Metrics,
		bus:           newSignalBus(cfg.Listeners, logger),
		state:         StateClosed,
		changedAt:     time.Now(),
	}

	logger.Info("breaker created", map[string]interface{}{
		"name": cfg.Name,
	})

	return b, nil
}

// Info returns a snapshot of the breaker's current state and metric.
func (b *Breaker) Info() Info {
	return Info{
		Name:               b.name,
		State:              b.state,
		ChangedAt:          b.changedAt,
		Reopens:            b.reopens,
		Metric:             b.window.Metric(),
		TotalExecutions:    b.totalExecutions,
		RejectedExecutions: b.rejectedExecutions,
	}
}

// Call invokes fn under circuit breaker protection. If the breaker
// short-circuits, it returns a *CallNotPermittedError without invoking fn.
// Otherwise it returns whatever fn returns.
func (b *Breaker) Call(fn func() error) error {
	if err := b.beforeCall(); err != nil {
		return err
	}
	return b.invoke(fn)
}

// CallWithFallback invokes fn; if fn (or the breaker itself) returns a
// non-nil error, fallback(err) is invoked and its result returned instead.
// fallback is never invoked when fn succeeds.
func (b *Breaker) CallWithFallback(fn func() error, fallback func(error) error) error {
	err := b.Call(fn)
	if err != nil {
		return fallback(err)
	}
	return nil
}

// Wrap returns a function with the same signature as fn that applies the
// same protection as Call.
func (b *Breaker) Wrap(fn func() error) func() error {
	return func() error { return b.Call(fn) }
}

// WrapWithFallback returns a function applying the same protection as
// CallWithFallback.
func (b *Breaker) WrapWithFallback(fn func() error, fallback func(error) error) func() error {
	return func() error { return b.CallWithFallback(fn, fallback) }
}

// beforeCall implements the admission half of the per-call protocol
// (spec.md §4.5 step 1-2): it may transition OPEN->HALF_OPEN.
func (b *Breaker) beforeCall() error {
	switch b.state {
	case StateDisabled:
		return nil

	case StateForcedOpen:
		b.rejectedExecutions++
		b.metrics.RecordRejection(b.name)
		return newCallNotPermitted(b.name, b.state, "circuit is forced open")

	case StateOpen:
		if time.Now().Before(b.retry.NextAttempt(b.changedAt, b.reopens)) {
			b.rejectedExecutions++
			b.metrics.RecordRejection(b.name)
			return newCallNotPermitted(b.name, b.state, "retry time not yet reached")
		}
		b.transition(StateHalfOpen)
		fallthrough

	case StateHalfOpen:
		if !b.permit.Admit(time.Now(), b.halfOpenEnteredAt) {
			b.rejectedExecutions++
			b.metrics.RecordRejection(b.name)
			return newCallNotPermitted(b.name, b.state, "permit rejected call")
		}
		return nil

	default: // StateClosed, StateMetricsOnly
		return nil
	}
}

// invoke runs fn, times it, and — unless the breaker is disabled — folds
// the outcome into the window and evaluates the tripper.
func (b *Breaker) invoke(fn func() error) (err error) {
	b.totalExecutions++
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("breaker %q: panic in wrapped call: %v\n%s", b.name, r, debug.Stack())
			b.afterCall(start, err)
			panic(r)
		}
	}()

	err = fn()
	b.afterCall(start, err)
	return err
}

func (b *Breaker) afterCall(start time.Time, err error) {
	if b.state == StateDisabled {
		return
	}

	duration := time.Since(start)
	failed := err != nil && b.tracker.Track(err)
	if err == nil {
		b.metrics.RecordSuccess(b.name)
	} else if failed {
		b.metrics.RecordFailure(b.name, fmt.Sprintf("%T", err))
	} else {
		b.metrics.RecordSuccess(b.name)
	}

	b.window.Record(Record{
		Success:   !failed,
		Slow:      duration >= b.slowThreshold,
		Duration:  duration,
		Timestamp: time.Now(),
	})

	if b.state == StateMetricsOnly {
		return
	}

	b.evaluate()
}

// evaluate implements the tripper-driven transitions of spec.md's state
// table (§4.5): CLOSED/HALF_OPEN -> OPEN on trip, HALF_OPEN -> CLOSED on a
// satisfied non-trip once the tripper's own MinRequests (if any) is met.
func (b *Breaker) evaluate() {
	m := b.window.Metric()

	switch b.state {
	case StateClosed:
		if b.tripper.Trip(b.state, m) {
			b.transition(StateOpen)
		}

	case StateHalfOpen:
		if b.tripper.Trip(b.state, m) {
			b.transition(StateOpen)
			return
		}
		if n, ok := b.tripper.minRequests(); ok && m.TotalCount < uint64(n) {
			return
		}
		b.transition(StateClosed)
	}
}

// transition performs a state change, resetting the window, updating
// bookkeeping, and dispatching a signal.
func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}

	b.state = to
	b.changedAt = time.Now()
	b.window.Reset()

	switch to {
	case StateOpen:
		b.reopens++
	case StateHalfOpen:
		b.halfOpenEnteredAt = b.changedAt
	}

	b.logger.Info("breaker state changed", map[string]interface{}{
		"name": b.name,
		"from": from.String(),
		"to":   to.String(),
	})
	b.metrics.RecordStateChange(b.name, from, to)
	b.bus.dispatch(b.name, from, to)
}

// manualTransition is the shared implementation behind Reset, MetricsOnly,
// Disable, and ForceOpen: it moves to the named state unconditionally and
// resets the window, notifying listeners unless notify is false.
func (b *Breaker) manualTransition(to State, notify bool) {
	from := b.state
	b.state = to
	b.changedAt = time.Now()
	b.window.Reset()

	if to == StateHalfOpen {
		b.halfOpenEnteredAt = b.changedAt
	}

	if from == to {
		return
	}

	b.logger.Info("breaker manually transitioned", map[string]interface{}{
		"name":   b.name,
		"from":   from.String(),
		"to":     to.String(),
		"notify": notify,
	})

	if notify {
		b.metrics.RecordStateChange(b.name, from, to)
		b.bus.dispatch(b.name, from, to)
	}
}

// Reset manually returns the breaker to CLOSED with a fresh window and
// reopens reset to 0.
func (b *Breaker) Reset(notify bool) {
	b.reopens = 0
	b.manualTransition(StateClosed, notify)
}

// MetricsOnly manually moves the breaker to METRICS_ONLY: outcomes are
// still recorded, but no automatic transition will ever occur.
func (b *Breaker) MetricsOnly(notify bool) {
	b.manualTransition(StateMetricsOnly, notify)
}

// Disable manually moves the breaker to DISABLED: every call bypasses the
// breaker entirely, and the window is not updated.
func (b *Breaker) Disable(notify bool) {
	b.manualTransition(StateDisabled, notify)
}

// ForceOpen manually moves the breaker to FORCED_OPEN: every call is
// short-circuited until a subsequent manual transition.
func (b *Breaker) ForceOpen(notify bool) {
	b.manualTransition(StateForcedOpen, notify)
}
