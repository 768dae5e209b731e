package backfill_test

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/docseq/backfill"
)

func TestScanSource(t *testing.T) {
	src := backfill.SliceSource{
		"RC000001",
		"RC000007",
		"RC-ACM-000012",
		"manual-42",
		"PAY000099",
		"RC000003",
	}

	scan, err := backfill.ScanSource(context.Background(), src, "RC")
	if err != nil {
		t.Fatal(err)
	}
	if scan.Scanned != 6 {
		t.Errorf("scanned = %d, want 6", scan.Scanned)
	}
	if scan.Matched != 4 {
		t.Errorf("matched = %d, want 4", scan.Matched)
	}
	if scan.MaxOrdinal != 12 {
		t.Errorf("max ordinal = %d, want 12", scan.MaxOrdinal)
	}
}

func TestBaseline(t *testing.T) {
	tests := []struct {
		name     string
		scan     backfill.Scan
		strategy backfill.Strategy
		want     int64
	}{
		{"max ordinal", backfill.Scan{Scanned: 10, MaxOrdinal: 7}, backfill.StrategyMaxOrdinal, 7},
		{"default is max ordinal", backfill.Scan{Scanned: 10, MaxOrdinal: 7}, "", 7},
		{"count above max", backfill.Scan{Scanned: 10, MaxOrdinal: 7}, backfill.StrategyCount, 10},
		{"count floored by max", backfill.Scan{Scanned: 3, MaxOrdinal: 40}, backfill.StrategyCount, 40},
		{"empty", backfill.Scan{}, backfill.StrategyCount, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.scan.Baseline(tt.strategy)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("baseline = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBaselineUnknownStrategy(t *testing.T) {
	_, err := backfill.Scan{}.Baseline("newest")
	if !errors.Is(err, backfill.ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestScanSourceError(t *testing.T) {
	boom := errors.New("cursor died")
	src := backfill.SourceFunc(func(_ context.Context, fn func(string) error) error {
		if err := fn("RC000001"); err != nil {
			return err
		}
		return boom
	})

	_, err := backfill.ScanSource(context.Background(), src, "RC")
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped source error, got %v", err)
	}
}

func TestSliceSourceHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := backfill.ScanSource(ctx, backfill.SliceSource{"RC000001"}, "RC")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
