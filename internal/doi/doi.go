// Package doi finds Digital Object Identifiers in free text and PDF files.
package doi

import (
	"regexp"
	"strings"
)

// DOI pattern: 10.XXXX/suffix where XXXX is 4-9 digits.
// Resolver URLs (https://doi.org/..., dx.doi.org/...) are checked before bare DOIs
// so that a linked DOI wins over an incidental mention elsewhere in the text.
var (
	resolverPattern = regexp.MustCompile(`(?i)(?:https?://)?(?:dx\.)?doi\.org/(10\.\d{4,9}/[-._;()/:A-Z0-9]+)`)
	barePattern     = regexp.MustCompile(`(?i)10\.\d{4,9}/[-._;()/:A-Z0-9]+`)
)

// resolverPrefixes are stripped by Normalize, matched case-insensitively.
var resolverPrefixes = []string{
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"https://doi.org/",
	"http://doi.org/",
	"dx.doi.org/",
	"doi.org/",
	"doi:",
}

// Extract returns the first DOI found in text, lower-cased.
// The second return value is false when the text contains no DOI (not an error).
func Extract(text string) (string, bool) {
	if m := resolverPattern.FindStringSubmatch(text); m != nil {
		return strings.ToLower(m[1]), true
	}
	if m := barePattern.FindString(text); m != "" {
		return strings.ToLower(m), true
	}
	return "", false
}

// Normalize converts a DOI to the canonical cache key form.
// It removes common resolver prefixes and converts to lowercase.
func Normalize(doi string) string {
	doi = strings.TrimSpace(doi)
	lower := strings.ToLower(doi)
	for _, prefix := range resolverPrefixes {
		if strings.HasPrefix(lower, prefix) {
			lower = lower[len(prefix):]
			break
		}
	}
	return strings.TrimSpace(lower)
}
