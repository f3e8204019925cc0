// Package normalize provides text and phone canonicalization used by every
// classifier and by webhook adapters.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonDigitRegex    = regexp.MustCompile(`\D`)
	whitespaceRegex  = regexp.MustCompile(`\s+`)
	stripTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Text canonicalizes inbound text: trims surrounding whitespace, lower-cases,
// strips combining diacritical marks and collapses internal whitespace runs
// to a single space. It is total over any input and idempotent.
func Text(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return ""
	}
	if stripped, _, err := transform.String(stripTransformer, s); err == nil {
		s = stripped
	}
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// Phone canonicalizes a phone number to national format: all non-digit
// characters are removed and a leading Brazilian country code "55" is
// stripped when the remainder is still a plausible national number.
func Phone(s string) string {
	digits := nonDigitRegex.ReplaceAllString(s, "")
	if strings.HasPrefix(digits, "55") && len(digits) >= 12 {
		digits = digits[2:]
	}
	return digits
}

// FirstName returns the first whitespace-separated token of a display name,
// used to resolve the {nome} template placeholder.
func FirstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
