// Package id defines TypeID-based identity types for docseq records.
//
// Issuance records and backfill reports carry a prefix-qualified,
// K-sortable (UUIDv7-based) identifier in the format "prefix_suffix".
// Counters themselves are keyed by their series key, not by an ID.
package id

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the record type encoded in a TypeID.
type Prefix string

// Prefix constants for docseq record types.
const (
	PrefixIssuance Prefix = "iss" // Issued document number
	PrefixBackfill Prefix = "bfl" // Backfill run report
)

// ID is the identifier type for docseq records.
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// New generates a new globally unique ID with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}

	return ID{inner: tid, valid: true}
}

// Parse parses a TypeID string (e.g., "iss_01h2xcejqtf2nbrexx3vqjhp41").
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}

	return ID{inner: tid, valid: true}, nil
}

// ParseWithPrefix parses a TypeID string and validates that its prefix
// matches the expected value.
func ParseWithPrefix(s string, expected Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}

	if parsed.Prefix() != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}

	return parsed, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}

	return parsed
}

// IssuanceID identifies a single issued document number (prefix: "iss").
type IssuanceID = ID

// BackfillID identifies a backfill run (prefix: "bfl").
type BackfillID = ID

// NewIssuanceID generates a new unique issuance ID.
func NewIssuanceID() ID { return New(PrefixIssuance) }

// NewBackfillID generates a new unique backfill ID.
func NewBackfillID() ID { return New(PrefixBackfill) }

// ParseIssuanceID parses a string and validates the "iss" prefix.
func ParseIssuanceID(s string) (ID, error) { return ParseWithPrefix(s, PrefixIssuance) }

// ParseBackfillID parses a string and validates the "bfl" prefix.
func ParseBackfillID(s string) (ID, error) { return ParseWithPrefix(s, PrefixBackfill) }

// String returns the full TypeID string representation (prefix_suffix).
// Returns an empty string for the Nil ID.
func (i ID) String() string {
	if !i.valid {
		return ""
	}

	return i.inner.String()
}

// Prefix returns the prefix component of this ID.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}

	return Prefix(i.inner.Prefix())
}

// IsNil reports whether this ID is the zero value.
func (i ID) IsNil() bool {
	return !i.valid
}

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}

	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil

		return nil
	}

	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}

	*i = parsed

	return nil
}
