// Package number renders counter values into human-facing document numbers
// and parses them back.
//
// A document number is a short alphabetic prefix followed by the ordinal,
// zero-padded to a minimum width:
//
//	Format("RC", 123, 6)                 // "RC000123"
//	Format("RC", 1000000, 6)             // "RC1000000" (never truncated)
//	FormatWithCode("QT", "ACM", 51, 6)   // "QT-ACM-000051"
//
// Entity codes are decorative. Uniqueness is carried by the ordinal alone.
package number

import (
	"fmt"
	"regexp"
	"strconv"
)

// DefaultPadWidth is the minimum number of ordinal digits.
const DefaultPadWidth = 6

// MaxPadWidth bounds the configurable pad width.
const MaxPadWidth = 18

// Format zero-pads sequence to padWidth digits and prepends prefix.
// A non-positive padWidth selects DefaultPadWidth. Values wider than
// padWidth are rendered in full.
func Format(prefix string, sequence int64, padWidth int) string {
	return fmt.Sprintf("%s%0*d", prefix, normalizeWidth(padWidth), sequence)
}

// FormatWithCode is Format with an entity code spliced between the prefix
// and the ordinal. An empty code yields exactly Format's output.
func FormatWithCode(prefix, code string, sequence int64, padWidth int) string {
	if code == "" {
		return Format(prefix, sequence, padWidth)
	}
	return fmt.Sprintf("%s-%s-%0*d", prefix, code, normalizeWidth(padWidth), sequence)
}

func normalizeWidth(w int) int {
	switch {
	case w <= 0:
		return DefaultPadWidth
	case w > MaxPadWidth:
		return MaxPadWidth
	default:
		return w
	}
}

// Parser extracts ordinals from document numbers of one prefix.
type Parser struct {
	prefix string
	re     *regexp.Regexp
}

// NewParser returns a Parser for numbers rendered with prefix, with or
// without an entity code.
func NewParser(prefix string) *Parser {
	return &Parser{
		prefix: prefix,
		re:     regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `(?:-[A-Z0-9]+-)?([0-9]+)$`),
	}
}

// Ordinal returns the ordinal encoded in s, or false if s does not belong
// to the parser's prefix.
func (p *Parser) Ordinal(s string) (int64, bool) {
	m := p.re.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseOrdinal is a one-shot convenience around NewParser(prefix).Ordinal(s).
func ParseOrdinal(prefix, s string) (int64, bool) {
	return NewParser(prefix).Ordinal(s)
}
