// Package textnorm provides the accent- and case-folding used for
// free-text search filters. SQLite's LIKE is only case-insensitive for
// ASCII, so the store keeps folded shadow columns written through Fold and
// matches folded filter input against them.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, removes combining marks, and recomposes,
// so "Crème Brûlée" folds to "creme brulee" once lowercased.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold returns s lowercased with diacritics removed. Input that fails to
// transform (malformed UTF-8) is folded by case only.
func Fold(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(folded)
}
