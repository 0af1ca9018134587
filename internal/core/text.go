package core

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Lower lower-cases s with Portuguese casing rules. Casers keep state, so one is built per call.
func Lower(s string) string {
	return cases.Lower(language.BrazilianPortuguese).String(s)
}

// Fold lower-cases s and strips diacritics, so "Março" folds to "marco".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, Lower(s))
	if err != nil {
		return Lower(s)
	}
	return out
}

// ContainsLower reports whether s contains substr, ignoring case.
func ContainsLower(s, substr string) bool {
	return strings.Contains(Lower(s), Lower(substr))
}
