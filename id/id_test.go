package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/docseq/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"IssuanceID", id.NewIssuanceID, "iss_"},
		{"BackfillID", id.NewBackfillID, "bfl_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"IssuanceID", id.NewIssuanceID, id.ParseIssuanceID},
		{"BackfillID", id.NewBackfillID, id.ParseBackfillID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.newFn()
			parsed, err := tt.parseFn(original.String())
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if parsed.String() != original.String() {
				t.Errorf("round-trip mismatch: %q != %q", parsed.String(), original.String())
			}
		})
	}
}

func TestCrossTypeRejection(t *testing.T) {
	if _, err := id.ParseIssuanceID(id.NewBackfillID().String()); err == nil {
		t.Error("ParseIssuanceID accepted a bfl_ id")
	}
	if _, err := id.ParseBackfillID(id.NewIssuanceID().String()); err == nil {
		t.Error("ParseBackfillID accepted an iss_ id")
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := id.Parse(""); err == nil {
		t.Error("expected error for empty string")
	}
}

func TestNilID(t *testing.T) {
	var i id.ID
	if !i.IsNil() {
		t.Error("zero-value ID should be nil")
	}
	if i.String() != "" {
		t.Errorf("expected empty string, got %q", i.String())
	}
	if i.Prefix() != "" {
		t.Errorf("expected empty prefix, got %q", i.Prefix())
	}
}

func TestMarshalUnmarshalText(t *testing.T) {
	original := id.NewIssuanceID()
	data, err := original.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}

	var restored id.ID
	if unmarshalErr := restored.UnmarshalText(data); unmarshalErr != nil {
		t.Fatalf("UnmarshalText failed: %v", unmarshalErr)
	}
	if restored.String() != original.String() {
		t.Errorf("mismatch: %q != %q", restored.String(), original.String())
	}

	var restored2 id.ID
	if err := restored2.UnmarshalText(nil); err != nil {
		t.Fatalf("UnmarshalText(nil) failed: %v", err)
	}
	if !restored2.IsNil() {
		t.Error("expected nil after unmarshal of empty text")
	}
}

func TestUniqueness(t *testing.T) {
	a := id.NewIssuanceID()
	b := id.NewIssuanceID()
	if a.String() == b.String() {
		t.Errorf("two consecutive NewIssuanceID() calls returned the same ID: %q", a.String())
	}
}
