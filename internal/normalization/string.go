package normalization

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

func ParseInputString(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// FoldAccents strips combining marks so "é" becomes "e".
func FoldAccents(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, input)
	if err != nil {
		return input
	}
	return out
}

// Slugify derives a profession slug from a label: lower-cased, accents
// folded, whitespace runs collapsed to one underscore, everything outside
// [a-z0-9_] dropped. Slugify(Slugify(s)) == Slugify(s).
func Slugify(label string) string {
	s := strings.Join(strings.Fields(FoldAccents(ParseInputString(label))), "_")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeTitle turns a quest title into a stable key fragment: accents
// folded, lower-cased, runs of anything outside [a-z0-9] collapsed to "_".
func NormalizeTitle(title string) string {
	s := FoldAccents(ParseInputString(title))
	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
