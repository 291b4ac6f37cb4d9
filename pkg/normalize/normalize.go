// Package normalize canonicalizes identity fields (names, emails) into
// comparison keys for record linkage. All functions are pure: identical
// input yields identical output regardless of call order.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// folder performs Unicode case folding, so accented and non-ASCII names
// compare the same way regardless of how they were typed.
var folder = cases.Fold()

// parenthetical matches a parenthesized annotation and any whitespace
// before it, e.g. the " (personal)" in "Lacson (personal)".
var parenthetical = regexp.MustCompile(`\s*\([^)]*\)`)

// String trims surrounding whitespace and case-folds. Empty input yields
// the empty string.
func String(s string) string {
	return folder.String(strings.TrimSpace(s))
}

// CleanLast removes parenthetical annotations from a last name:
// "Lacson (personal)" becomes "Lacson".
func CleanLast(s string) string {
	return strings.TrimSpace(parenthetical.ReplaceAllString(s, ""))
}

// LastName canonicalizes a last name for comparison: annotations
// stripped, case-folded, and internal spaces removed, so "De Vega",
// "DeVega", and "de vega" all canonicalize to "devega".
func LastName(s string) string {
	return strings.Join(strings.Fields(String(CleanLast(s))), "")
}

// FirstWord returns the first whitespace-delimited token of the
// normalized input, or the empty string.
func FirstWord(s string) string {
	fields := strings.Fields(String(s))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// NameKey builds the exact-match comparison key for a (first, last)
// name pair. An empty key (both parts empty) is "|" and callers treat
// it as unusable.
func NameKey(first, last string) string {
	return LastName(last) + "|" + String(first)
}

// HasKey reports whether the name key carries any identity content.
func HasKey(key string) bool {
	return key != "" && key != "|"
}
