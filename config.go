package breaker

import (
	"fmt"
	"time"
)

// MetricsCollector receives circuit breaker lifecycle events for external
// monitoring. It is an optional collaborator — the default is a no-op
// implementation — and is distinct from the breaker's own Window, which
// drives trip decisions.
type MetricsCollector interface {
	RecordSuccess(name string)
	RecordFailure(name string, errorType string)
	RecordStateChange(name string, from, to State)
	RecordRejection(name string)
}

type noopMetricsCollector struct{}

func (noopMetricsCollector) RecordSuccess(string)                   {}
func (noopMetricsCollector) RecordFailure(string, string)           {}
func (noopMetricsCollector) RecordStateChange(string, State, State) {}
func (noopMetricsCollector) RecordRejection(string)                 {}

// Config holds everything required to construct a Breaker or Async engine.
type Config struct {
	// Name identifies the breaker in signals, logs, and errors. Required.
	Name string

	// Window aggregates recent outcomes. Required.
	Window Window

	// Tracker classifies wrapped-call errors as countable failures.
	// Required.
	Tracker Tracker

	// Tripper decides state transitions from (state, metric). Required.
	Tripper Tripper

	// Retry computes the OPEN -> HALF_OPEN clock. Required.
	Retry RetryClock

	// Permit throttles HALF_OPEN admission. Required.
	Permit Permit

	// SlowThreshold is the duration at or above which an outcome is
	// classified as slow. Use time.Duration(math.MaxInt64) to disable
	// slow classification entirely. Required.
	SlowThreshold time.Duration

	// Listeners receive transition signals, in registration order.
	// Optional.
	Listeners []Listener

	// MaxHalfOpenCalls bounds concurrent in-flight HALF_OPEN probes in the
	// Async engine. Ignored by the synchronous Breaker. Defaults to 10.
	MaxHalfOpenCalls uint32

	// Logger receives structured diagnostic events. Optional; defaults to
	// NoOpLogger.
	Logger Logger

	// Metrics receives lifecycle events for external monitoring.
	// Optional; defaults to a no-op collector.
	Metrics MetricsCollector
}

// configValidator is implemented by RetryClock/Permit values that carry
// their own construction-time range checks beyond a plain nil check.
type configValidator interface {
	validateConfig() error
}

// Option mutates a Config during construction.
type Option func(*Config)

// WithLogger sets the breaker's logger.
func WithLogger(l Logger) Option { return func(c *Config) { c.Logger = l } }

// WithMetrics sets the breaker's metrics collector.
func WithMetrics(m MetricsCollector) Option { return func(c *Config) { c.Metrics = m } }

// WithListeners appends listeners to the breaker's signal bus.
func WithListeners(ls ...Listener) Option {
	return func(c *Config) { c.Listeners = append(c.Listeners, ls...) }
}

// WithMaxHalfOpenCalls sets the Async engine's concurrent-probe bound.
func WithMaxHalfOpenCalls(n uint32) Option { return func(c *Config) { c.MaxHalfOpenCalls = n } }

// applyDefaults fills optional fields left unset. It must run after
// Validate so it never papers over a missing required field.
func (c *Config) applyDefaults() {
	if c.Logger == nil {
		c.Logger = NoOpLogger{}
	}
	if c.Metrics == nil {
		c.Metrics = noopMetricsCollector{}
	}
	if c.MaxHalfOpenCalls == 0 {
		c.MaxHalfOpenCalls = 10
	}
}

// Validate checks that every required field is set and every optional
// numeric field is in range.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if c.Window == nil {
		return fmt.Errorf("%w: window is required", ErrInvalidConfig)
	}
	if c.Tracker == nil {
		return fmt.Errorf("%w: tracker is required", ErrInvalidConfig)
	}
	if c.Tripper == nil {
		return fmt.Errorf("%w: tripper is required", ErrInvalidConfig)
	}
	if c.Retry == nil {
		return fmt.Errorf("%w: retry clock is required", ErrInvalidConfig)
	}
	if v, ok := c.Retry.(configValidator); ok {
		if err := v.validateConfig(); err != nil {
			return err
		}
	}
	if c.Permit == nil {
		return fmt.Errorf("%w: permit is required", ErrInvalidConfig)
	}
	if v, ok := c.Permit.(configValidator); ok {
		if err := v.validateConfig(); err != nil {
			return err
		}
	}
	if c.SlowThreshold < 0 {
		return fmt.Errorf("%w: slow threshold must be non-negative, got %v", ErrInvalidConfig, c.SlowThreshold)
	}
	return nil
}
