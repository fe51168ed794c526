package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestReturnMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewReturnMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordTransition(ctx, "APPROVE", "APPROVED")
	m.RecordTransition(ctx, "APPROVE", "APPROVED")
	m.RecordDispatch(ctx, "SCRAPPED", "success", 120*time.Millisecond)
	m.RecordDispatch(ctx, "SCRAPPED", "replayed", 0)
	m.RecordRefund(ctx, decimal.RequireFromString("49.50"))
	m.RecordRefund(ctx, decimal.Zero)

	got := collect(t, reader)

	transitions := got["returns_transitions_total"].Data.(metricdata.Sum[int64])
	require.Len(t, transitions.DataPoints, 1)
	assert.Equal(t, int64(2), transitions.DataPoints[0].Value)

	dispatches := got["returns_dispatch_total"].Data.(metricdata.Sum[int64])
	assert.Len(t, dispatches.DataPoints, 2)

	latency := got["returns_dispatch_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.Len(t, latency.DataPoints, 1)
	assert.Equal(t, uint64(1), latency.DataPoints[0].Count)

	refunds := got["returns_refund_amount_total"].Data.(metricdata.Sum[float64])
	require.Len(t, refunds.DataPoints, 1)
	assert.InDelta(t, 49.5, refunds.DataPoints[0].Value, 0.0001)
}

func TestReturnMetrics_NilIsNoop(t *testing.T) {
	var m *ReturnMetrics
	assert.NotPanics(t, func() {
		m.RecordTransition(context.Background(), "CREATE", "RECEIVED")
		m.RecordDispatch(context.Background(), "SCRAPPED", "failed", time.Second)
		m.RecordRefund(context.Background(), decimal.NewFromInt(1))
	})
}
