package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizeName folds case, drops diacritics, punctuation and symbols, and
// collapses whitespace so "Zoë O'Brien!" and "zoe obrien" compare equal.
func normalizeName(name string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})),
		norm.NFC,
	)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}
	folded := cases.Fold().String(stripped)
	return strings.Join(strings.Fields(folded), " ")
}

// nameMatches is the heuristic behind display-name resolution: the stored name
// matches when it contains the wanted name after normalisation.
func nameMatches(stored, wanted string) bool {
	w := normalizeName(wanted)
	if w == "" {
		return false
	}
	return strings.Contains(normalizeName(stored), w)
}
