// Package observability wires OpenTelemetry tracing for habitable.
//
// Tracing is off unless InitTracing is called; until then Tracer returns the
// global no-op tracer and spans cost next to nothing.
package observability

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies spans produced by this module.
const InstrumentationName = "github.com/ajitpratap0/habitable"

// TracingConfig contains tracing configuration
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	SamplingRate   float64
}

// ShutdownFunc flushes pending spans and releases the provider.
type ShutdownFunc func(ctx context.Context) error

// InitTracing installs a global tracer provider that exports spans as JSON to w.
func InitTracing(config TracingConfig, w io.Writer) (ShutdownFunc, error) {
	res := resource.NewSchemaless(
		attribute.String("service.name", config.ServiceName),
		attribute.String("service.version", config.ServiceVersion),
	)

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	// Configure sampling
	var sampler sdktrace.Sampler
	if config.SamplingRate <= 0 {
		sampler = sdktrace.NeverSample()
	} else if config.SamplingRate >= 1.0 {
		sampler = sdktrace.AlwaysSample()
	} else {
		sampler = sdktrace.TraceIDRatioBased(config.SamplingRate)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
		sdktrace.WithSyncer(exporter),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// Tracer returns the tracer of the current global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// Span wraps a trace span and collects attributes until End.
type Span struct {
	span       trace.Span
	startTime  time.Time
	attributes []attribute.KeyValue
}

// StartSpan starts a span named operationName on tracer.
func StartSpan(ctx context.Context, tracer trace.Tracer, operationName string) (context.Context, *Span) {
	ctx, span := tracer.Start(ctx, operationName)

	return ctx, &Span{
		span:      span,
		startTime: time.Now(),
	}
}

// SetAttribute adds an attribute to the span
func (s *Span) SetAttribute(key string, value interface{}) {
	var attr attribute.KeyValue

	switch v := value.(type) {
	case string:
		attr = attribute.String(key, v)
	case int:
		attr = attribute.Int(key, v)
	case int64:
		attr = attribute.Int64(key, v)
	case float64:
		attr = attribute.Float64(key, v)
	case bool:
		attr = attribute.Bool(key, v)
	default:
		attr = attribute.String(key, fmt.Sprintf("%v", v))
	}

	s.attributes = append(s.attributes, attr)
}

// AddEvent adds an event to the span
func (s *Span) AddEvent(name string, attrs ...attribute.KeyValue) {
	s.span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordError marks the span failed with err.
func (s *Span) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// Elapsed returns the time since the span started.
func (s *Span) Elapsed() time.Duration {
	return time.Since(s.startTime)
}

// End flushes the collected attributes and ends the span.
func (s *Span) End() {
	if len(s.attributes) > 0 {
		s.span.SetAttributes(s.attributes...)
	}
	s.span.End()
}
