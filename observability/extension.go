// Package observability provides a metrics extension for docseq that records
// issuance event counts through a MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/docseq/backfill"
	"github.com/xraph/docseq/issuance"
	"github.com/xraph/docseq/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin          = (*MetricsExtension)(nil)
	_ plugin.OnInit          = (*MetricsExtension)(nil)
	_ plugin.OnNumberIssued  = (*MetricsExtension)(nil)
	_ plugin.OnNumberPeeked  = (*MetricsExtension)(nil)
	_ plugin.OnIssueFailed   = (*MetricsExtension)(nil)
	_ plugin.OnCounterSeeded = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records issuance metrics.
// Register it as a sequencer plugin to track numbering activity.
type MetricsExtension struct {
	factory MetricFactory

	// Issuance metrics
	NumberIssued Counter
	NumberPeeked Counter
	IssueFailed  Counter

	// Backfill metrics
	CounterSeeded    Counter
	BackfillScanned  Histogram
	BackfillDuration Histogram
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions, or NewPrometheusFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		NumberIssued: factory.Counter("docseq.number.issued"),
		NumberPeeked: factory.Counter("docseq.number.peeked"),
		IssueFailed:  factory.Counter("docseq.number.failed"),

		CounterSeeded:    factory.Counter("docseq.counter.seeded"),
		BackfillScanned:  factory.Histogram("docseq.backfill.scanned"),
		BackfillDuration: factory.Histogram("docseq.backfill.duration_ms"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	return nil
}

// OnNumberIssued implements plugin.OnNumberIssued.
func (m *MetricsExtension) OnNumberIssued(_ context.Context, _ *issuance.Issuance) error {
	m.NumberIssued.Inc()
	return nil
}

// OnNumberPeeked implements plugin.OnNumberPeeked.
func (m *MetricsExtension) OnNumberPeeked(_ context.Context, _ *issuance.Preview) error {
	m.NumberPeeked.Inc()
	return nil
}

// OnIssueFailed implements plugin.OnIssueFailed.
func (m *MetricsExtension) OnIssueFailed(_ context.Context, _, _ string, _ error) error {
	m.IssueFailed.Inc()
	return nil
}

// OnCounterSeeded implements plugin.OnCounterSeeded.
func (m *MetricsExtension) OnCounterSeeded(_ context.Context, r *backfill.Report) error {
	m.CounterSeeded.Inc()
	m.BackfillScanned.Observe(float64(r.Scanned))
	m.BackfillDuration.Observe(float64(r.CompletedAt.Sub(r.StartedAt).Milliseconds()))
	return nil
}
