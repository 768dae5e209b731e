package number

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxCodeLength is the length of a derived entity code.
const MaxCodeLength = 3

// EntityCode derives a short upper-case ASCII code from an entity name,
// e.g. "Acme Trading Co" -> "ATC", "Zoë" -> "ZOE". Multi-word names use
// word initials; single words use their leading letters. Returns "" when
// the name has no usable characters.
func EntityCode(name string) string {
	words := strings.FieldsFunc(fold(name), func(r rune) bool {
		return !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9')
	})
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	if len(words) == 1 {
		w := words[0]
		if len(w) > MaxCodeLength {
			w = w[:MaxCodeLength]
		}
		return w
	}
	for _, w := range words {
		if b.Len() == MaxCodeLength {
			break
		}
		b.WriteByte(w[0])
	}
	return b.String()
}

// fold strips diacritics and upper-cases name, dropping anything that is
// not ASCII afterwards.
func fold(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, name)
	if err != nil {
		s = name
	}
	s = strings.ToUpper(s)
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
}
