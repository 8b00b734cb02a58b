package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records worldtick metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordDispatch records one listener dispatch and its result.
	RecordDispatch(ctx context.Context, eventType, result string, duration time.Duration)

	// RecordDispatchError records a handler that returned an error.
	RecordDispatchError(ctx context.Context, eventType string)

	// RecordExpiration records a listener leaving the bus.
	// Reason is "count", "window", "invalid" or "error".
	RecordExpiration(ctx context.Context, eventType, reason string)

	// RecordAssignment records a partition placed on a thread, or a failed placement.
	RecordAssignment(ctx context.Context, strategy string, thread int, err error)

	// RecordDeadLetter records a failed dispatch written to the dead-letter store.
	RecordDeadLetter(ctx context.Context, eventType string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	dispatches      metric.Int64Counter
	dispatchLatency metric.Float64Histogram
	dispatchErrors  metric.Int64Counter
	expirations     metric.Int64Counter
	assignments     metric.Int64Counter
	threadIndex     metric.Int64Histogram
	assignFailures  metric.Int64Counter
	deadLetters     metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily initializes the default OTel metrics instance.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("worldtick")

	dispatches, err := meter.Int64Counter("worldtick.listener.dispatches",
		metric.WithDescription("Number of listener dispatches by result"),
	)
	if err != nil {
		return nil, err
	}

	dispatchLatency, err := meter.Float64Histogram("worldtick.listener.latency_ms",
		metric.WithDescription("Listener dispatch latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	dispatchErrors, err := meter.Int64Counter("worldtick.listener.errors",
		metric.WithDescription("Number of listener handler errors"),
	)
	if err != nil {
		return nil, err
	}

	expirations, err := meter.Int64Counter("worldtick.listener.expirations",
		metric.WithDescription("Number of listeners removed from the bus"),
	)
	if err != nil {
		return nil, err
	}

	assignments, err := meter.Int64Counter("worldtick.affinity.assignments",
		metric.WithDescription("Number of partition thread assignments"),
	)
	if err != nil {
		return nil, err
	}

	threadIndex, err := meter.Int64Histogram("worldtick.affinity.thread",
		metric.WithDescription("Thread index chosen for a partition"),
	)
	if err != nil {
		return nil, err
	}

	assignFailures, err := meter.Int64Counter("worldtick.affinity.failures",
		metric.WithDescription("Number of partitions that could not be assigned"),
	)
	if err != nil {
		return nil, err
	}

	deadLetters, err := meter.Int64Counter("worldtick.deadletter.records",
		metric.WithDescription("Number of failed dispatches written to the dead-letter store"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		dispatches:      dispatches,
		dispatchLatency: dispatchLatency,
		dispatchErrors:  dispatchErrors,
		expirations:     expirations,
		assignments:     assignments,
		threadIndex:     threadIndex,
		assignFailures:  assignFailures,
		deadLetters:     deadLetters,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordDispatch records a listener dispatch.
func (m *otelMetrics) RecordDispatch(ctx context.Context, eventType, result string, duration time.Duration) {
	m.dispatches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
		attribute.String("result", result),
	))
	m.dispatchLatency.Record(ctx, float64(duration.Microseconds())/1000, metric.WithAttributes(
		attribute.String("event_type", eventType),
	))
}

// RecordDispatchError records a handler error.
func (m *otelMetrics) RecordDispatchError(ctx context.Context, eventType string) {
	m.dispatchErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
	))
}

// RecordExpiration records a listener removal.
func (m *otelMetrics) RecordExpiration(ctx context.Context, eventType, reason string) {
	m.expirations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
		attribute.String("reason", reason),
	))
}

// RecordAssignment records a thread assignment.
func (m *otelMetrics) RecordAssignment(ctx context.Context, strategy string, thread int, err error) {
	attrs := metric.WithAttributes(attribute.String("strategy", strategy))
	if err != nil {
		m.assignFailures.Add(ctx, 1, attrs)
		return
	}
	m.assignments.Add(ctx, 1, attrs)
	m.threadIndex.Record(ctx, int64(thread), attrs)
}

// RecordDeadLetter records a dead-letter write.
func (m *otelMetrics) RecordDeadLetter(ctx context.Context, eventType string) {
	m.deadLetters.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
	))
}
