// Package backfill computes the starting point of a counter from documents
// that were numbered before the sequencer existed.
//
// A baseline is derived from a Source of existing document numbers and then
// applied with the store's raise-only seed, so running a backfill twice (or
// after numbers have already been issued) never moves a counter backwards.
package backfill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/docseq/id"
	"github.com/xraph/docseq/number"
)

// Strategy selects how the baseline is computed.
type Strategy string

const (
	// StrategyMaxOrdinal uses the highest ordinal found among numbers that
	// match the series prefix.
	StrategyMaxOrdinal Strategy = "max_ordinal"

	// StrategyCount uses the number of existing documents. The highest
	// matching ordinal still acts as a floor so the baseline never collides
	// with a number already in use.
	StrategyCount Strategy = "count"
)

// ErrUnknownStrategy is returned for a Strategy outside the constants above.
var ErrUnknownStrategy = errors.New("backfill: unknown strategy")

// Source yields the document numbers already stored for one series.
// Implementations call fn once per document, in any order, and stop with
// fn's error if it returns one.
type Source interface {
	Numbers(ctx context.Context, fn func(number string) error) error
}

// SourceFunc adapts a plain function to a Source.
type SourceFunc func(ctx context.Context, fn func(number string) error) error

// Numbers implements Source.
func (f SourceFunc) Numbers(ctx context.Context, fn func(number string) error) error {
	return f(ctx, fn)
}

// SliceSource is a Source over an in-memory list of numbers.
type SliceSource []string

// Numbers implements Source.
func (s SliceSource) Numbers(ctx context.Context, fn func(number string) error) error {
	for _, n := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(n); err != nil {
			return err
		}
	}
	return nil
}

// Scan is the outcome of reading a Source.
type Scan struct {
	Scanned    int64 // documents seen
	Matched    int64 // documents whose number matched the prefix
	MaxOrdinal int64 // highest matching ordinal
}

// Baseline returns the sequence value the counter must hold at least.
func (s Scan) Baseline(strategy Strategy) (int64, error) {
	switch strategy {
	case StrategyMaxOrdinal, "":
		return s.MaxOrdinal, nil
	case StrategyCount:
		return max(s.Scanned, s.MaxOrdinal), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

// ScanSource reads every number from src and records the highest ordinal
// rendered with prefix.
func ScanSource(ctx context.Context, src Source, prefix string) (Scan, error) {
	var out Scan
	p := number.NewParser(prefix)

	err := src.Numbers(ctx, func(n string) error {
		out.Scanned++
		if ord, ok := p.Ordinal(n); ok {
			out.Matched++
			if ord > out.MaxOrdinal {
				out.MaxOrdinal = ord
			}
		}
		return nil
	})
	if err != nil {
		return Scan{}, fmt.Errorf("backfill: scan source: %w", err)
	}
	return out, nil
}

// Report describes one backfill run.
type Report struct {
	ID          id.BackfillID `json:"id"`
	Key         string        `json:"key"`
	Prefix      string        `json:"prefix"`
	Strategy    Strategy      `json:"strategy"`
	Scanned     int64         `json:"scanned"`
	Matched     int64         `json:"matched"`
	MaxOrdinal  int64         `json:"max_ordinal"`
	Baseline    int64         `json:"baseline"`
	Sequence    int64         `json:"sequence"` // counter value after the seed
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
}
