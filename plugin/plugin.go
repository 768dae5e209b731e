// Package plugin provides an extensible plugin system for docseq.
// Plugins can hook into lifecycle and issuance events to extend functionality.
package plugin

import (
	"context"

	"github.com/xraph/docseq/backfill"
	"github.com/xraph/docseq/issuance"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the sequencer starts.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, s interface{}) error
}

// OnShutdown is called when the sequencer stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Issuance hooks
// ──────────────────────────────────────────────────

// OnNumberIssued is called after a number has been committed by the store.
type OnNumberIssued interface {
	Plugin
	OnNumberIssued(ctx context.Context, iss *issuance.Issuance) error
}

// OnNumberPeeked is called after a preview has been computed.
type OnNumberPeeked interface {
	Plugin
	OnNumberPeeked(ctx context.Context, p *issuance.Preview) error
}

// OnIssueFailed is called when a number could not be issued.
type OnIssueFailed interface {
	Plugin
	OnIssueFailed(ctx context.Context, series, key string, err error) error
}

// ──────────────────────────────────────────────────
// Counter hooks
// ──────────────────────────────────────────────────

// OnCounterSeeded is called after a backfill has applied its baseline.
type OnCounterSeeded interface {
	Plugin
	OnCounterSeeded(ctx context.Context, report *backfill.Report) error
}
