package breaker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestOTelMetricsCollectorRecordsCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("breaker-test")

	collector, err := NewOTelMetricsCollector(context.Background(), meter)
	require.NoError(t, err)

	collector.RecordSuccess("orders")
	collector.RecordFailure("orders", "*errors.errorString")
	collector.RecordRejection("orders")
	collector.RecordStateChange("orders", StateClosed, StateOpen)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}

	for _, want := range []string{"breaker.calls", "breaker.rejections", "breaker.transitions"} {
		require.True(t, names[want], "expected an exported metric named %q, got %v", want, names)
	}
}
