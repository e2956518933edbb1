package observability

import (
	"context"
	"time"

	"embedserver/internal/models"
	"embedserver/internal/storage"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedStorage wraps a storage.Storage implementation with
// OpenTelemetry tracing and metrics instrumentation.
type InstrumentedStorage struct {
	inner    storage.Storage
	tracer   trace.Tracer
	duration metric.Float64Histogram
	errors   metric.Int64Counter
}

// NewInstrumentedStorage creates a new storage wrapper that records trace spans,
// operation latency histograms, and error counters for every storage method call.
func NewInstrumentedStorage(inner storage.Storage) (*InstrumentedStorage, error) {
	tracer := otel.Tracer("embedserver/storage")
	meter := otel.Meter("embedserver/storage")

	duration, err := meter.Float64Histogram(
		"storage.operation.duration",
		metric.WithDescription("Duration of storage operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	errCounter, err := meter.Int64Counter(
		"storage.operation.errors",
		metric.WithDescription("Number of storage operation errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &InstrumentedStorage{
		inner:    inner,
		tracer:   tracer,
		duration: duration,
		errors:   errCounter,
	}, nil
}

func (s *InstrumentedStorage) startSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, "storage."+operation,
		trace.WithAttributes(append([]attribute.KeyValue{
			attribute.String("storage.operation", operation),
		}, attrs...)...),
	)
	return ctx, span
}

func (s *InstrumentedStorage) record(ctx context.Context, span trace.Span, operation string, start time.Time, err error) {
	elapsed := time.Since(start).Seconds()
	attrs := metric.WithAttributes(attribute.String("operation", operation))

	s.duration.Record(ctx, elapsed, attrs)

	if err != nil {
		s.errors.Add(ctx, 1, attrs)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End()
}

func (s *InstrumentedStorage) GetEmbed(ctx context.Context, code string) (*models.Embed, error) {
	ctx, span := s.startSpan(ctx, "GetEmbed", attribute.String("embed.code", code))
	start := time.Now()
	result, err := s.inner.GetEmbed(ctx, code)
	s.record(ctx, span, "GetEmbed", start, err)
	return result, err
}

func (s *InstrumentedStorage) SaveEmbed(ctx context.Context, embed *models.Embed) error {
	ctx, span := s.startSpan(ctx, "SaveEmbed", attribute.String("embed.code", embed.Code))
	start := time.Now()
	err := s.inner.SaveEmbed(ctx, embed)
	s.record(ctx, span, "SaveEmbed", start, err)
	return err
}

func (s *InstrumentedStorage) UpdateEmbed(ctx context.Context, embed *models.Embed) error {
	ctx, span := s.startSpan(ctx, "UpdateEmbed", attribute.String("embed.code", embed.Code))
	start := time.Now()
	err := s.inner.UpdateEmbed(ctx, embed)
	s.record(ctx, span, "UpdateEmbed", start, err)
	return err
}

func (s *InstrumentedStorage) DeleteEmbed(ctx context.Context, code string) error {
	ctx, span := s.startSpan(ctx, "DeleteEmbed", attribute.String("embed.code", code))
	start := time.Now()
	err := s.inner.DeleteEmbed(ctx, code)
	s.record(ctx, span, "DeleteEmbed", start, err)
	return err
}

func (s *InstrumentedStorage) Ping(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "Ping")
	start := time.Now()
	err := s.inner.Ping(ctx)
	s.record(ctx, span, "Ping", start, err)
	return err
}

func (s *InstrumentedStorage) Close() error {
	return s.inner.Close()
}
