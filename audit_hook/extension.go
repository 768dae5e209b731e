// Package audithook bridges docseq issuance events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/docseq/backfill"
	"github.com/xraph/docseq/issuance"
	"github.com/xraph/docseq/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin          = (*Extension)(nil)
	_ plugin.OnNumberIssued  = (*Extension)(nil)
	_ plugin.OnNumberPeeked  = (*Extension)(nil)
	_ plugin.OnIssueFailed   = (*Extension)(nil)
	_ plugin.OnCounterSeeded = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audit_hook package does not import Chronicle directly.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges issuance events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.enabled == nil {
		e.enabled = defaultActions()
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Issuance hooks
// ──────────────────────────────────────────────────

// OnNumberIssued implements plugin.OnNumberIssued.
func (e *Extension) OnNumberIssued(ctx context.Context, iss *issuance.Issuance) error {
	return e.record(ctx, ActionNumberIssued, SeverityInfo, OutcomeSuccess,
		ResourceDocumentNumber, iss.Number, CategoryNumbering, nil,
		"issuance_id", iss.ID.String(),
		"series", iss.Series,
		"key", iss.Key,
		"tenant_id", iss.TenantID,
		"ordinal", iss.Ordinal,
	)
}

// OnNumberPeeked implements plugin.OnNumberPeeked.
func (e *Extension) OnNumberPeeked(ctx context.Context, p *issuance.Preview) error {
	return e.record(ctx, ActionNumberPeeked, SeverityInfo, OutcomeSuccess,
		ResourceDocumentNumber, p.Number, CategoryNumbering, nil,
		"series", p.Series,
		"key", p.Key,
		"ordinal", p.Ordinal,
	)
}

// OnIssueFailed implements plugin.OnIssueFailed.
func (e *Extension) OnIssueFailed(ctx context.Context, series, key string, err error) error {
	return e.record(ctx, ActionNumberIssueFailed, SeverityError, OutcomeFailure,
		ResourceCounter, key, CategoryNumbering, err,
		"series", series,
	)
}

// ──────────────────────────────────────────────────
// Counter hooks
// ──────────────────────────────────────────────────

// OnCounterSeeded implements plugin.OnCounterSeeded.
func (e *Extension) OnCounterSeeded(ctx context.Context, r *backfill.Report) error {
	return e.record(ctx, ActionCounterSeeded, SeverityWarning, OutcomeSuccess,
		ResourceCounter, r.Key, CategoryMigration, nil,
		"backfill_id", r.ID.String(),
		"strategy", string(r.Strategy),
		"scanned", r.Scanned,
		"matched", r.Matched,
		"baseline", r.Baseline,
		"sequence", r.Sequence,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
