// Package dedup resolves raw employer names to canonical company records
// and merges records that turn out to share a registry number.
package dedup

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	legalSuffixRe = regexp.MustCompile(`(?i)\b(b\.?v\.?|n\.?v\.?|gmbh|ltd\.?|inc\.?|llc|s\.?a\.?|s\.?r\.?l\.?)\s*$`)
	noiseCharRe   = regexp.MustCompile(`[&\-.,/\\|()"']`)
	whitespaceRe  = regexp.MustCompile(`\s+`)

	// Strips combining marks after NFD decomposition, so "Müller" and
	// "Muller" normalize identically.
	diacriticFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Normalize produces the canonical dedup key for an employer name.
// Distinct raw spellings of the same employer must map to the same key.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if folded, _, err := transform.String(diacriticFold, s); err == nil {
		s = folded
	}
	s = legalSuffixRe.ReplaceAllString(s, "")
	s = noiseCharRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
