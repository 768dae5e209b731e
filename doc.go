// Package docseq issues sequential, human-readable business document numbers
// such as RC000123 or PAY000001.
//
// Docseq is designed as a library, not a service. Route handlers call it
// in-process when they create a receipt, payment, quotation or invoice. It
// provides:
//
//   - Atomic increment-and-fetch counters, one per series, delegated to the
//     store (MongoDB, PostgreSQL, SQLite, Redis, or memory for tests)
//   - Deterministic formatting with zero padding that never truncates
//   - Non-reserving previews for forms
//   - Idempotent backfill from numbers issued before docseq existed
//   - Optional per-tenant counters and decorative entity codes
//
// # Quick Start
//
//	import (
//	    "github.com/xraph/docseq"
//	    "github.com/xraph/docseq/store/mongo"
//	)
//
//	seq, err := docseq.New(mongo.New(db))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := seq.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer seq.Stop()
//
//	num, err := seq.GenerateNextNumber(ctx, docseq.Request{Series: docseq.KeyReceipt})
//	// num == "RC000001"
//
// # Previews
//
// PeekNextNumber returns what the next number would be without reserving it.
// Another request may take that number first; callers must store the value
// returned by GenerateNextNumber, never the preview.
//
// # Errors
//
// Invalid keys are rejected with ErrInvalidKey before the store is touched.
// Store failures surface as ErrStoreUnavailable. Issue, GenerateNextNumber
// and the peek variants wrap both in ErrNumberGeneration, so handlers can
// report one generic "could not generate document number" message.
// The sequencer never retries; a retried call may skip a number but cannot
// repeat one.
package docseq
