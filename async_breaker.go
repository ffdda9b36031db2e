package breaker

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// Async is a cooperative circuit breaker engine safe for concurrent use
// from multiple goroutines. Unlike Breaker, it bounds the number of
// in-flight HALF_OPEN probes with a non-blocking semaphore, and performs
// state transitions only at suspension points guarded by its mutex. A
// rejected probe never queues behind one already in flight.
type Async struct {
	mu sync.Mutex

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

	probes    *semaphore.Weighted
	maxProbes int64
	inFlight  int64
}

// NewAsync constructs a cooperative Async engine from cfg, applying any
// options. cfg is validated before defaults are applied.
func NewAsync(cfg Config, opts ...Option) (*Async, error) {
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	logger := withComponent(cfg.Logger, "async_breaker")
	a := &Async{
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
		probes:        semaphore.NewWeighted(int64(cfg.MaxHalfOpenCalls)),
		maxProbes:     int64(cfg.MaxHalfOpenCalls),
	}

	logger.Info("async breaker created", map[string]interface{}{
		"name":                cfg.Name,
		"max_half_open_calls": cfg.MaxHalfOpenCalls,
	})

	return a, nil
}

// Info returns a snapshot of the engine's current state and metric.
func (a *Async) Info() Info {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Info{
		Name:               a.name,
		State:              a.state,
		ChangedAt:          a.changedAt,
		Reopens:            a.reopens,
		Metric:             a.window.Metric(),
		TotalExecutions:    a.totalExecutions,
		RejectedExecutions: a.rejectedExecutions,
	}
}

// Snapshot reports the number of HALF_OPEN probes currently in flight,
// alongside the configured capacity. This is a supplemented diagnostic,
// not part of the admission protocol itself.
func (a *Async) Snapshot() (inFlight, capacity int64) {
	return atomic.LoadInt64(&a.inFlight), a.maxProbes
}

// Call invokes fn under circuit breaker protection, respecting ctx
// cancellation. If ctx is already done, or the breaker short-circuits,
// fn is never invoked.
func (a *Async) Call(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	release, err := a.beforeCall(ctx)
	if err != nil {
		return err
	}
	if release != nil {
		defer release()
	}

	return a.invoke(ctx, fn)
}

// CallWithFallback invokes fn; if fn (or the breaker itself) returns a
// non-nil error, fallback(ctx, err) is invoked and its result returned.
func (a *Async) CallWithFallback(ctx context.Context, fn func(context.Context) error, fallback func(context.Context, error) error) error {
	err := a.Call(ctx, fn)
	if err != nil {
		return fallback(ctx, err)
	}
	return nil
}

// Wrap returns a function with the same signature as fn that applies the
// same protection as Call.
func (a *Async) Wrap(fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error { return a.Call(ctx, fn) }
}

// beforeCall implements the admission half of the per-call protocol under
// lock, acquiring a probe semaphore slot for HALF_OPEN calls only after the
// permit has admitted the call. The returned release function, if non-nil,
// must be called exactly once regardless of outcome.
func (a *Async) beforeCall(ctx context.Context) (release func(), err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.state {
	case StateDisabled:
		return nil, nil

	case StateForcedOpen:
		a.rejectedExecutions++
		a.metrics.RecordRejection(a.name)
		return nil, newCallNotPermitted(a.name, a.state, "circuit is forced open")

	case StateOpen:
		if time.Now().Before(a.retry.NextAttempt(a.changedAt, a.reopens)) {
			a.rejectedExecutions++
			a.metrics.RecordRejection(a.name)
			return nil, newCallNotPermitted(a.name, a.state, "retry time not yet reached")
		}
		a.transitionLocked(StateHalfOpen)
		fallthrough

	case StateHalfOpen:
		if !a.permit.Admit(time.Now(), a.halfOpenEnteredAt) {
			a.rejectedExecutions++
			a.metrics.RecordRejection(a.name)
			return nil, newCallNotPermitted(a.name, a.state, "permit rejected call")
		}
		if !a.probes.TryAcquire(1) {
			a.rejectedExecutions++
			a.metrics.RecordRejection(a.name)
			return nil, newCallNotPermitted(a.name, a.state, "half-open probe limit reached")
		}
		atomic.AddInt64(&a.inFlight, 1)
		var once sync.Once
		return func() {
			once.Do(func() {
				atomic.AddInt64(&a.inFlight, -1)
				a.probes.Release(1)
			})
		}, nil

	default: // StateClosed, StateMetricsOnly
		return nil, nil
	}
}

// invoke runs fn, times it, and folds the outcome into the window unless
// the call was cancelled or the breaker is disabled. A cancelled call
// never perturbs the window or the tripper.
func (a *Async) invoke(ctx context.Context, fn func(context.Context) error) (err error) {
	a.mu.Lock()
	a.totalExecutions++
	a.mu.Unlock()

	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("async breaker %q: panic in wrapped call: %v\n%s", a.name, r, debug.Stack())
			a.afterCall(start, err, ctx.Err())
			panic(r)
		}
	}()

	err = fn(ctx)
	a.afterCall(start, err, ctx.Err())
	return err
}

func (a *Async) afterCall(start time.Time, err error, cancelled error) {
	if cancelled != nil {
		// Cancellation must never be folded into the window: the call's
		// outcome is indeterminate, not a failure.
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == StateDisabled {
		return
	}

	duration := time.Since(start)
	failed := err != nil && a.tracker.Track(err)
	if err == nil || !failed {
		a.metrics.RecordSuccess(a.name)
	} else {
		a.metrics.RecordFailure(a.name, fmt.Sprintf("%T", err))
	}

	a.window.Record(Record{
		Success:   !failed,
		Slow:      duration >= a.slowThreshold,
		Duration:  duration,
		Timestamp: time.Now(),
	})

	if a.state == StateMetricsOnly {
		return
	}

	a.evaluateLocked()
}

// evaluateLocked must be called with a.mu held.
func (a *Async) evaluateLocked() {
	m := a.window.Metric()

	switch a.state {
	case StateClosed:
		if a.tripper.Trip(a.state, m) {
			a.transitionLocked(StateOpen)
		}

	case StateHalfOpen:
		if a.tripper.Trip(a.state, m) {
			a.transitionLocked(StateOpen)
			return
		}
		if n, ok := a.tripper.minRequests(); ok && m.TotalCount < uint64(n) {
			return
		}
		a.transitionLocked(StateClosed)
	}
}

// transitionLocked must be called with a.mu held.
func (a *Async) transitionLocked(to State) {
	from := a.state
	if from == to {
		return
	}

	a.state = to
	a.changedAt = time.Now()
	a.window.Reset()

	switch to {
	case StateOpen:
		a.reopens++
	case StateHalfOpen:
		a.halfOpenEnteredAt = a.changedAt
	}

	a.logger.Info("async breaker state changed", map[string]interface{}{
		"name": a.name,
		"from": from.String(),
		"to":   to.String(),
	})
	a.metrics.RecordStateChange(a.name, from, to)
	a.bus.dispatch(a.name, from, to)
}

func (a *Async) manualTransition(to State, notify bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	from := a.state
	a.state = to
	a.changedAt = time.Now()
	a.window.Reset()

	if to == StateHalfOpen {
		a.halfOpenEnteredAt = a.changedAt
	}
	if to == StateClosed {
		a.reopens = 0
	}

	if from == to {
		return
	}

	a.logger.Info("async breaker manually transitioned", map[string]interface{}{
		"name":   a.name,
		"from":   from.String(),
		"to":     to.String(),
		"notify": notify,
	})

	if notify {
		a.metrics.RecordStateChange(a.name, from, to)
		a.bus.dispatch(a.name, from, to)
	}
}

// Reset manually returns the engine to CLOSED with a fresh window and
// reopens reset to 0.
func (a *Async) Reset(notify bool) { a.manualTransition(StateClosed, notify) }

// MetricsOnly manually moves the engine to METRICS_ONLY.
func (a *Async) MetricsOnly(notify bool) { a.manualTransition(StateMetricsOnly, notify) }

// Disable manually moves the engine to DISABLED.
func (a *Async) Disable(notify bool) { a.manualTransition(StateDisabled, notify) }

// ForceOpen manually moves the engine to FORCED_OPEN.
func (a *Async) ForceOpen(notify bool) { a.manualTransition(StateForcedOpen, notify) }
