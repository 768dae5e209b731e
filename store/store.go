package store

import (
	"context"

	"github.com/xraph/docseq/counter"
)

// Store is the unified storage interface for docseq.
type Store interface {
	// Counter methods

	// NextValue atomically creates the counter for key if absent (sequence
	// 0, the given prefix) and increments it, returning the new sequence.
	NextValue(ctx context.Context, key, prefix string) (int64, error)

	// PeekValue returns the value NextValue would return next, without
	// mutating anything: sequence+1, or 1 when the counter does not exist.
	PeekValue(ctx context.Context, key string) (int64, error)

	// SeedCounter atomically raises the counter for key to baseline if it is
	// lower (creating it if absent) and returns the resulting sequence. It
	// never lowers a counter.
	SeedCounter(ctx context.Context, key, prefix string, baseline int64) (int64, error)

	GetCounter(ctx context.Context, key string) (*counter.Counter, error)
	ListCounters(ctx context.Context, opts counter.ListOpts) ([]*counter.Counter, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
