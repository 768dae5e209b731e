package number_test

import (
	"testing"

	"github.com/xraph/docseq/number"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		prefix string
		seq    int64
		width  int
		want   string
	}{
		{"RC", 123, 6, "RC000123"},
		{"RC", 42, 6, "RC000042"},
		{"RC", 1000000, 6, "RC1000000"},
		{"RC", 999999, 6, "RC999999"},
		{"PAY", 1, 6, "PAY000001"},
		{"QT", 7, 0, "QT000007"},
		{"PI", 7, 3, "PI007"},
		{"PI", 12345, 3, "PI12345"},
		{"", 5, 2, "05"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := number.Format(tt.prefix, tt.seq, tt.width)
			if got != tt.want {
				t.Errorf("Format(%q, %d, %d) = %q, want %q", tt.prefix, tt.seq, tt.width, got, tt.want)
			}
		})
	}
}

func TestFormatDeterministic(t *testing.T) {
	a := number.Format("RC", 42, 6)
	for range 10 {
		if b := number.Format("RC", 42, 6); b != a {
			t.Fatalf("Format is not deterministic: %q then %q", a, b)
		}
	}
}

func TestFormatWithCode(t *testing.T) {
	if got := number.FormatWithCode("QT", "ACM", 51, 6); got != "QT-ACM-000051" {
		t.Errorf("got %q", got)
	}
	if got := number.FormatWithCode("QT", "", 51, 6); got != "QT000051" {
		t.Errorf("empty code should match Format, got %q", got)
	}
}

func TestEntityCode(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Acme Trading Co", "ATC"},
		{"acme", "ACM"},
		{"Zoë", "ZOE"},
		{"Société Générale", "SG"},
		{"Big Blue Box Holdings", "BBB"},
		{"  ", ""},
		{"日本", ""},
		{"3M", "3M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := number.EntityCode(tt.name); got != tt.want {
				t.Errorf("EntityCode(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestParseOrdinal(t *testing.T) {
	tests := []struct {
		prefix string
		in     string
		want   int64
		ok     bool
	}{
		{"RC", "RC000123", 123, true},
		{"RC", "RC1000000", 1000000, true},
		{"RC", "RC-ACM-000007", 7, true},
		{"RC", "PAY000001", 0, false},
		{"RC", "RC", 0, false},
		{"RC", "RC00A1", 0, false},
		{"RC", "XRC000001", 0, false},
		{"PAY", "PAY000002", 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := number.ParseOrdinal(tt.prefix, tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseOrdinal(%q, %q) = (%d, %v), want (%d, %v)", tt.prefix, tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFormatParseAgree(t *testing.T) {
	p := number.NewParser("INV")
	for _, seq := range []int64{1, 99, 123456, 9999999} {
		got, ok := p.Ordinal(number.Format("INV", seq, 6))
		if !ok || got != seq {
			t.Errorf("ordinal of formatted %d = (%d, %v)", seq, got, ok)
		}
	}
}
