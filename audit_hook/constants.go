package audithook

// Action constants for audit events.
const (
	// Issuance actions
	ActionNumberIssued      = "number.issued"
	ActionNumberIssueFailed = "number.issue_failed"
	ActionNumberPeeked      = "number.peeked"

	// Counter actions
	ActionCounterSeeded = "counter.seeded"
)

// Resource constants for audit events.
const (
	ResourceDocumentNumber = "document_number"
	ResourceCounter        = "counter"
)

// Category constants for audit events.
const (
	CategoryNumbering = "numbering"
	CategoryMigration = "migration"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
