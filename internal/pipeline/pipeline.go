// Package pipeline runs the habitability scan: it pulls records from a
// source one at a time, keeps the ones accepted by the predicate in arrival
// order and, once the source is exhausted, projects and prints their names.
//
// # Basic Usage
//
//	src := csv.NewCSVSource("kepler_data.csv", log)
//	if err := src.Open(); err != nil {
//	    return err
//	}
//	result, err := pipeline.NewSimplePipeline(src, log).Run(ctx)
//	if err != nil {
//	    return err
//	}
//	_, err = result.WriteTo(os.Stdout)
//
// The run is single-threaded: record i is filtered and collected before
// record i+1 is requested. Decode errors from the source are logged once and
// counted; they never prevent emission.
package pipeline

import (
	"context"
	"iter"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ajitpratap0/habitable/pkg/errors"
	"github.com/ajitpratap0/habitable/pkg/filter"
	"github.com/ajitpratap0/habitable/pkg/metrics"
	"github.com/ajitpratap0/habitable/pkg/models"
	"github.com/ajitpratap0/habitable/pkg/observability"
)

// Source yields records or decode errors until it is exhausted.
type Source interface {
	Records() iter.Seq2[*models.Record, error]
}

// SimplePipeline filters one source into one Result.
type SimplePipeline struct {
	source    Source
	predicate filter.Predicate
	logger    *zap.Logger
	metrics   *metrics.Collector
	tracer    trace.Tracer
}

// Option customises a SimplePipeline.
type Option func(*SimplePipeline)

// WithPredicate replaces the habitability predicate.
func WithPredicate(p filter.Predicate) Option {
	return func(sp *SimplePipeline) { sp.predicate = p }
}

// WithMetrics records run counters on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(sp *SimplePipeline) { sp.metrics = c }
}

// WithTracer emits the run span on t instead of the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(sp *SimplePipeline) { sp.tracer = t }
}

// NewSimplePipeline creates a pipeline over source. The predicate defaults to
// filter.Habitable.
func NewSimplePipeline(source Source, logger *zap.Logger, opts ...Option) *SimplePipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	sp := &SimplePipeline{
		source:    source,
		predicate: filter.Habitable,
		logger:    logger.With(zap.String("component", "pipeline")),
		tracer:    observability.Tracer(),
	}
	for _, opt := range opts {
		opt(sp)
	}
	if sp.metrics == nil {
		sp.metrics = metrics.NewCollector("csv")
	}
	return sp
}

// Run drains the source and returns the collected matches. Any source error
// other than a decode error ends the scan and is returned alongside the
// records collected before it.
func (p *SimplePipeline) Run(ctx context.Context) (*Result, error) {
	_, span := observability.StartSpan(ctx, p.tracer, "pipeline.run")
	defer span.End()

	result := &Result{Matches: make([]*models.Record, 0)}
	var runErr error

	for record, err := range p.source.Records() {
		if err != nil {
			if errors.IsType(err, errors.ErrorTypeDecode) {
				p.reportDecodeError(span, err)
				result.DecodeErrors++
				continue
			}
			runErr = err
			span.RecordError(err)
			break
		}

		result.RecordsRead++
		p.metrics.RecordRead()

		if p.predicate(record) {
			result.Matches = append(result.Matches, record)
			p.metrics.RecordMatched()
		}
	}

	elapsed := span.Elapsed()
	p.metrics.ObserveScan(elapsed)

	span.SetAttribute("records.read", result.RecordsRead)
	span.SetAttribute("records.matched", len(result.Matches))
	span.SetAttribute("records.decode_errors", result.DecodeErrors)

	p.logger.Info("scan completed",
		zap.Int("records_read", result.RecordsRead),
		zap.Int("records_matched", len(result.Matches)),
		zap.Int("decode_errors", result.DecodeErrors),
		zap.Duration("duration", elapsed),
		zap.Float64("records_per_second", float64(result.RecordsRead)/nonZero(elapsed).Seconds()))

	return result, runErr
}

func (p *SimplePipeline) reportDecodeError(span *observability.Span, err error) {
	fields := []zap.Field{zap.Error(err)}
	var line int
	var e *errors.Error
	if errors.As(err, &e) {
		if v, ok := e.Detail("line"); ok {
			line, _ = v.(int)
			fields = append(fields, zap.Int("line", line))
		}
	}
	p.logger.Error("skipping malformed row", fields...)
	p.metrics.RecordDecodeError()
	span.AddEvent("decode_error", attribute.Int("line", line))
}

func nonZero(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Nanosecond
	}
	return d
}
