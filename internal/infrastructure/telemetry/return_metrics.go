package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	attrAction     = attribute.Key("action")
	attrStatus     = attribute.Key("status")
	attrResolution = attribute.Key("resolution_type")
	attrOutcome    = attribute.Key("outcome")
)

// dispatchBuckets covers fast local calls up to the default 10s collaborator timeout
var dispatchBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// ReturnMetrics records lifecycle and dispatch metrics.
// A nil *ReturnMetrics is valid and records nothing.
type ReturnMetrics struct {
	transitions      metric.Int64Counter
	dispatches       metric.Int64Counter
	dispatchDuration metric.Float64Histogram
	refundAmount     metric.Float64Counter
}

// NewReturnMetrics registers the return instruments on meter
func NewReturnMetrics(meter metric.Meter) (*ReturnMetrics, error) {
	m := &ReturnMetrics{}
	var err error

	if m.transitions, err = meter.Int64Counter("returns_transitions_total",
		metric.WithDescription("Lifecycle transitions by action and resulting status"),
		metric.WithUnit("{transitions}"),
	); err != nil {
		return nil, fmt.Errorf("create returns_transitions_total: %w", err)
	}
	if m.dispatches, err = meter.Int64Counter("returns_dispatch_total",
		metric.WithDescription("Resolution dispatches by resolution and outcome"),
		metric.WithUnit("{dispatches}"),
	); err != nil {
		return nil, fmt.Errorf("create returns_dispatch_total: %w", err)
	}
	if m.dispatchDuration, err = meter.Float64Histogram("returns_dispatch_duration_seconds",
		metric.WithDescription("Collaborator call latency per resolution"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(dispatchBuckets...),
	); err != nil {
		return nil, fmt.Errorf("create returns_dispatch_duration_seconds: %w", err)
	}
	if m.refundAmount, err = meter.Float64Counter("returns_refund_amount_total",
		metric.WithDescription("Sum of completed refund amounts"),
	); err != nil {
		return nil, fmt.Errorf("create returns_refund_amount_total: %w", err)
	}
	return m, nil
}

// RecordTransition counts one persisted lifecycle transition
func (m *ReturnMetrics) RecordTransition(ctx context.Context, action, status string) {
	if m == nil {
		return
	}
	m.transitions.Add(ctx, 1, metric.WithAttributes(attrAction.String(action), attrStatus.String(status)))
}

// RecordDispatch counts one dispatch attempt and, unless replayed, its latency
func (m *ReturnMetrics) RecordDispatch(ctx context.Context, resolution, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attrResolution.String(resolution), attrOutcome.String(outcome))
	m.dispatches.Add(ctx, 1, attrs)
	if elapsed > 0 {
		m.dispatchDuration.Record(ctx, elapsed.Seconds(), attrs)
	}
}

// RecordRefund adds a completed refund amount
func (m *ReturnMetrics) RecordRefund(ctx context.Context, amount decimal.Decimal) {
	if m == nil || !amount.IsPositive() {
		return
	}
	m.refundAmount.Add(ctx, amount.InexactFloat64())
}
