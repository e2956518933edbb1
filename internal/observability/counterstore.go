package observability

import (
	"context"
	"time"

	"embedserver/internal/ratelimit"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedCounterStore wraps a rate limit counter store with
// OpenTelemetry tracing and metrics, mirroring InstrumentedStorage.
type InstrumentedCounterStore struct {
	inner    ratelimit.CounterStore
	tracer   trace.Tracer
	duration metric.Float64Histogram
	errors   metric.Int64Counter
}

// NewInstrumentedCounterStore creates a counter store wrapper recording
// spans, latency histograms, and error counters per operation.
func NewInstrumentedCounterStore(inner ratelimit.CounterStore) (*InstrumentedCounterStore, error) {
	tracer := otel.Tracer("embedserver/ratelimit")
	meter := otel.Meter("embedserver/ratelimit")

	duration, err := meter.Float64Histogram(
		"ratelimit.store.duration",
		metric.WithDescription("Duration of rate limit counter store operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	errCounter, err := meter.Int64Counter(
		"ratelimit.store.errors",
		metric.WithDescription("Number of rate limit counter store errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &InstrumentedCounterStore{
		inner:    inner,
		tracer:   tracer,
		duration: duration,
		errors:   errCounter,
	}, nil
}

func (s *InstrumentedCounterStore) instrument(ctx context.Context, operation string) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "ratelimit."+operation,
		trace.WithAttributes(attribute.String("ratelimit.operation", operation)))
	start := time.Now()

	return ctx, func(err error) {
		attrs := metric.WithAttributes(attribute.String("operation", operation))
		s.duration.Record(ctx, time.Since(start).Seconds(), attrs)
		if err != nil {
			s.errors.Add(ctx, 1, attrs)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

func (s *InstrumentedCounterStore) Read(ctx context.Context, key string) (ratelimit.Record, bool, error) {
	ctx, done := s.instrument(ctx, "Read")
	rec, ok, err := s.inner.Read(ctx, key)
	done(err)
	return rec, ok, err
}

func (s *InstrumentedCounterStore) Write(ctx context.Context, key string, rec ratelimit.Record) error {
	ctx, done := s.instrument(ctx, "Write")
	err := s.inner.Write(ctx, key, rec)
	done(err)
	return err
}

func (s *InstrumentedCounterStore) Delete(ctx context.Context, key string) error {
	ctx, done := s.instrument(ctx, "Delete")
	err := s.inner.Delete(ctx, key)
	done(err)
	return err
}

func (s *InstrumentedCounterStore) Ping(ctx context.Context) error {
	ctx, done := s.instrument(ctx, "Ping")
	err := s.inner.Ping(ctx)
	done(err)
	return err
}

func (s *InstrumentedCounterStore) Close() error {
	return s.inner.Close()
}
