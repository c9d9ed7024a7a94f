package dataset

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnumRe  = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	asciiOnlyRe = regexp.MustCompile(`[^a-z0-9 ]+`)
	romanRe     = regexp.MustCompile(`\b(ii|iii|iv|v|vi|vii|viii|ix|x)\b`)
	romanDigits = map[string]string{
		"ii": "2", "iii": "3", "iv": "4", "v": "5", "vi": "6",
		"vii": "7", "viii": "8", "ix": "9", "x": "10",
	}
)

// NormalizeTitle lower-cases a title and collapses internal whitespace.
// It is the key form used by the analysis cache.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// FoldTitle produces a loose comparison form: case-folded, diacritics
// stripped, punctuation collapsed to single spaces.
func FoldTitle(title string) string {
	stripped, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		stripped = title
	}
	folded := cases.Fold().String(stripped)
	return strings.TrimSpace(nonAlnumRe.ReplaceAllString(folded, " "))
}

// mergeTitle is the grouping form used when merging sources: ASCII
// alphanumerics only, roman numerals II-X written as digits.
func mergeTitle(title string) string {
	s := asciiOnlyRe.ReplaceAllString(strings.ToLower(title), " ")
	s = romanRe.ReplaceAllStringFunc(s, func(m string) string { return romanDigits[m] })
	return strings.Join(strings.Fields(s), " ")
}
