// Package textutil holds the small text-folding helpers shared by the column
// mapper and the value normalizer:
//
//   - Fold: lowercase, strip accents, turn separators into spaces, collapse
//     whitespace. Used before any keyword or pattern match.
//   - Words: Fold then split on spaces.
//   - Title: title-case free text for custom categories.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold normalizes s for matching. "Date_of-Birth " and "date of birth" fold
// to the same string, as do "Çolour" and "colour".
func Fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}

	// Decompose, remove nonspacing marks (accents), recompose. The chain is
	// stateful so it is built per call.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	seenSpace := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '_', '-', '.':
			if !seenSpace {
				b.WriteByte(' ')
				seenSpace = true
			}
		default:
			b.WriteRune(r)
			seenSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}

// Words folds s and splits it into words on spaces and common punctuation.
func Words(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		return r == ' ' || r == '/' || r == ',' || r == '(' || r == ')' || r == '&' || r == '+'
	})
}

// Title title-cases s ("boer goat" -> "Boer Goat") after collapsing
// whitespace. Accents are kept.
func Title(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return cases.Title(language.Und).String(s)
}
