// Package metrics tracks per-run counters for habitable using Prometheus
// collectors.
//
// Each Collector owns its registry, so several runs in one process (tests)
// never collide on metric registration.
//
// # Basic Usage
//
//	collector := metrics.NewCollector("csv")
//	collector.RecordRead()
//	collector.RecordMatched()
//	collector.ObserveScan(time.Since(start))
//	_ = collector.WriteText(os.Stderr)
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Collector groups the counters recorded during one pipeline run.
type Collector struct {
	registry       *prometheus.Registry
	recordsRead    prometheus.Counter   // Rows decoded into records
	recordsMatched prometheus.Counter   // Records accepted by the predicate
	decodeErrors   prometheus.Counter   // Rows rejected by the decoder
	scanDuration   prometheus.Histogram // Wall time of a full scan
}

// NewCollector creates a collector whose metrics carry source as a constant label.
func NewCollector(source string) *Collector {
	labels := prometheus.Labels{"source": source}

	c := &Collector{
		registry: prometheus.NewRegistry(),
		recordsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "habitable_records_read_total",
			Help:        "Total number of rows decoded into records",
			ConstLabels: labels,
		}),
		recordsMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "habitable_records_matched_total",
			Help:        "Total number of records accepted by the habitability filter",
			ConstLabels: labels,
		}),
		decodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "habitable_decode_errors_total",
			Help:        "Total number of rows that failed to decode",
			ConstLabels: labels,
		}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "habitable_scan_duration_seconds",
			Help:        "Duration of a full source scan",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.001, 4, 8), // 1ms .. ~16s
		}),
	}

	c.registry.MustRegister(c.recordsRead, c.recordsMatched, c.decodeErrors, c.scanDuration)
	return c
}

// RecordRead counts one decoded record.
func (c *Collector) RecordRead() { c.recordsRead.Inc() }

// RecordMatched counts one record accepted by the filter.
func (c *Collector) RecordMatched() { c.recordsMatched.Inc() }

// RecordDecodeError counts one malformed row.
func (c *Collector) RecordDecodeError() { c.decodeErrors.Inc() }

// ObserveScan records the duration of a completed scan.
func (c *Collector) ObserveScan(d time.Duration) {
	c.scanDuration.Observe(d.Seconds())
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteText writes every metric in the Prometheus text exposition format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
