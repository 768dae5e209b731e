package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/xraph/docseq/backfill"
	"github.com/xraph/docseq/issuance"
	"github.com/xraph/docseq/observability"
)

func TestMetricsExtension(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetricsExtension(observability.NewPrometheusFactory(reg))
	ctx := context.Background()

	for range 3 {
		_ = m.OnNumberIssued(ctx, &issuance.Issuance{})
	}
	_ = m.OnNumberPeeked(ctx, &issuance.Preview{})
	_ = m.OnIssueFailed(ctx, "receipt", "receipt", errors.New("down"))

	start := time.Now()
	_ = m.OnCounterSeeded(ctx, &backfill.Report{
		Scanned:     40,
		StartedAt:   start,
		CompletedAt: start.Add(15 * time.Millisecond),
	})

	tests := []struct {
		counter observability.Counter
		want    float64
	}{
		{m.NumberIssued, 3},
		{m.NumberPeeked, 1},
		{m.IssueFailed, 1},
		{m.CounterSeeded, 1},
	}
	for _, tt := range tests {
		c, ok := tt.counter.(prometheus.Counter)
		if !ok {
			t.Fatalf("counter is %T, want prometheus.Counter", tt.counter)
		}
		if got := testutil.ToFloat64(c); got != tt.want {
			t.Errorf("%s = %v, want %v", c.Desc(), got, tt.want)
		}
	}

	n, err := testutil.GatherAndCount(reg, "docseq_backfill_scanned", "docseq_backfill_duration_ms")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("gathered %d histograms, want 2", n)
	}
}

func TestPrometheusFactoryReusesCollectors(t *testing.T) {
	f := observability.NewPrometheusFactory(prometheus.NewRegistry())

	a := f.Counter("docseq.number.issued")
	b := f.Counter("docseq.number.issued")
	if a != b {
		t.Error("expected the same collector for the same name")
	}

	// A second extension on the same factory must not panic on re-registration.
	_ = observability.NewMetricsExtension(f)
	_ = observability.NewMetricsExtension(f)
}
