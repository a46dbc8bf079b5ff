package observability

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/yungbote/careercoach-backend/goals"

// Metrics holds the goal engine's OTel instruments. A nil *Metrics is valid and records nothing.
type Metrics struct {
	aggOps       metric.Int64Counter
	aggDuration  metric.Float64Histogram
	aggConflicts metric.Int64Counter
	aggRetries   metric.Int64Counter
	aggSecondary metric.Int64Counter
	dispatches   metric.Int64Counter
	busPublishes metric.Int64Counter
	httpRequests metric.Int64Counter
	httpDuration metric.Float64Histogram
	httpInflight metric.Int64UpDownCounter
}

// NewMetrics registers instruments on mp, or on the global provider when mp is nil.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)
	m := &Metrics{}
	var err error
	if m.aggOps, err = meter.Int64Counter(
		"goals.aggregate.operations",
		metric.WithDescription("Aggregate operations by name and status"),
	); err != nil {
		return nil, err
	}
	if m.aggDuration, err = meter.Float64Histogram(
		"goals.aggregate.duration_ms",
		metric.WithDescription("Aggregate operation latency"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.aggConflicts, err = meter.Int64Counter("goals.aggregate.conflicts"); err != nil {
		return nil, err
	}
	if m.aggRetries, err = meter.Int64Counter("goals.aggregate.retries"); err != nil {
		return nil, err
	}
	if m.aggSecondary, err = meter.Int64Counter(
		"goals.aggregate.secondary_failures",
		metric.WithDescription("Swallowed post-commit failures by op and step"),
	); err != nil {
		return nil, err
	}
	if m.dispatches, err = meter.Int64Counter(
		"goals.dispatch.triggers",
		metric.WithDescription("Trigger dispatches by kind and outcome"),
	); err != nil {
		return nil, err
	}
	if m.busPublishes, err = meter.Int64Counter("goals.bus.publish"); err != nil {
		return nil, err
	}
	if m.httpRequests, err = meter.Int64Counter("goals.http.requests"); err != nil {
		return nil, err
	}
	if m.httpDuration, err = meter.Float64Histogram("goals.http.duration_ms", metric.WithUnit("ms")); err != nil {
		return nil, err
	}
	if m.httpInflight, err = meter.Int64UpDownCounter("goals.http.inflight"); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) ObserveAggregateOperation(name, status string, dur time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("op", strings.TrimSpace(name)),
		attribute.String("status", strings.TrimSpace(status)),
	)
	ctx := context.Background()
	m.aggOps.Add(ctx, 1, attrs)
	m.aggDuration.Record(ctx, float64(dur.Microseconds())/1000.0, attrs)
}

func (m *Metrics) IncAggregateConflict(name string) {
	if m == nil {
		return
	}
	m.aggConflicts.Add(context.Background(), 1, metric.WithAttributes(attribute.String("op", name)))
}

func (m *Metrics) IncAggregateRetry(name string) {
	if m == nil {
		return
	}
	m.aggRetries.Add(context.Background(), 1, metric.WithAttributes(attribute.String("op", name)))
}

func (m *Metrics) IncSecondaryFailure(name, step string) {
	if m == nil {
		return
	}
	m.aggSecondary.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("op", name),
		attribute.String("step", step),
	))
}

// IncDispatch counts one trigger hand-off. outcome is one of queued, done, failed,
// panic, dropped, invalid or closed.
func (m *Metrics) IncDispatch(kind, outcome string) {
	if m == nil {
		return
	}
	m.dispatches.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}

func (m *Metrics) IncBusPublish(status string) {
	if m == nil {
		return
	}
	m.busPublishes.Add(context.Background(), 1, metric.WithAttributes(attribute.String("status", status)))
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.httpInflight.Add(context.Background(), 1)
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.httpInflight.Add(context.Background(), -1)
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status", status),
	)
	ctx := context.Background()
	m.httpRequests.Add(ctx, 1, attrs)
	m.httpDuration.Record(ctx, float64(dur.Microseconds())/1000.0, attrs)
}
