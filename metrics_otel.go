package breaker

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetricsCollector implements MetricsCollector on top of an
// OpenTelemetry meter. It is optional: breakers default to a no-op
// collector and only need this when the embedding application already
// exports OTel metrics.
type OTelMetricsCollector struct {
	ctx context.Context

	calls       metric.Int64Counter
	rejections  metric.Int64Counter
	transitions metric.Int64Counter
}

// NewOTelMetricsCollector builds an OTelMetricsCollector from meter,
// typically obtained via otel.Meter("..."). ctx is used for every
// instrument recording; callers without a natural per-call context may
// pass context.Background().
func NewOTelMetricsCollector(ctx context.Context, meter metric.Meter) (*OTelMetricsCollector, error) {
	calls, err := meter.Int64Counter("breaker.calls",
		metric.WithDescription("Circuit breaker call outcomes"))
	if err != nil {
		return nil, err
	}
	rejections, err := meter.Int64Counter("breaker.rejections",
		metric.WithDescription("Calls rejected by a circuit breaker"))
	if err != nil {
		return nil, err
	}
	transitions, err := meter.Int64Counter("breaker.transitions",
		metric.WithDescription("Circuit breaker state transitions"))
	if err != nil {
		return nil, err
	}

	return &OTelMetricsCollector{
		ctx:         ctx,
		calls:       calls,
		rejections:  rejections,
		transitions: transitions,
	}, nil
}

// RecordSuccess implements MetricsCollector.
func (o *OTelMetricsCollector) RecordSuccess(name string) {
	o.calls.Add(o.ctx, 1, metric.WithAttributes(
		attribute.String("circuit", name),
		attribute.String("result", "success"),
	))
}

// RecordFailure implements MetricsCollector.
func (o *OTelMetricsCollector) RecordFailure(name string, errorType string) {
	o.calls.Add(o.ctx, 1, metric.WithAttributes(
		attribute.String("circuit", name),
		attribute.String("result", "failure"),
		attribute.String("error_type", errorType),
	))
}

// RecordStateChange implements MetricsCollector.
func (o *OTelMetricsCollector) RecordStateChange(name string, from, to State) {
	o.transitions.Add(o.ctx, 1, metric.WithAttributes(
		attribute.String("circuit", name),
		attribute.String("from", from.String()),
		attribute.String("to", to.String()),
	))
}

// RecordRejection implements MetricsCollector.
func (o *OTelMetricsCollector) RecordRejection(name string) {
	o.rejections.Add(o.ctx, 1, metric.WithAttributes(
		attribute.String("circuit", name),
	))
}
