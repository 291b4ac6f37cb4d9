package linkage

import (
	"strings"
	"unicode/utf8"

	"github.com/rosterlink/rosterlink/pkg/roster"
)

// ResolveCompanions imputes missing last names for companion rows in the
// export sequence. A companion row is a second person registered under
// the same confirmation number as the immediately preceding row,
// typically without its own contact identifier. The relationship is
// positional, not a foreign key: it only ever looks one row back, so the
// export must be processed in its original file order.
//
// The scan carries the previous row's already-resolved last name as loop
// state. Returns the number of rows resolved.
func ResolveCompanions(export *roster.Table) int {
	resolved := 0
	prevLast := ""
	prevConfirmation := ""

	for i, rec := range export.Rows {
		last := rec.Trimmed(roster.ExportLast)
		confirmation := rec.Trimmed(roster.ExportConfirmation)

		if i > 0 && isCompanion(rec, last, confirmation, prevConfirmation) {
			if resolveCompanion(rec, prevLast) {
				resolved++
				last = rec.Trimmed(roster.ExportLast)
			}
		}

		prevLast = last
		prevConfirmation = confirmation
	}

	return resolved
}

// isCompanion reports whether a row needs companion resolution: no
// contact identifier of its own, a confirmation number shared with the
// previous row, and no last name.
func isCompanion(rec *roster.Record, last, confirmation, prevConfirmation string) bool {
	if rec.Trimmed(roster.ExportContactID) != "" {
		return false
	}
	if confirmation == "" || confirmation != prevConfirmation {
		return false
	}
	return last == ""
}

// resolveCompanion fills the row's last name, in preference order:
// extract the previous row's last name out of the first-name field,
// split a multi-token first-name field, or inherit the previous last
// name outright. A first-name field that is really an email address is
// left alone. Returns true when a last name was derived.
func resolveCompanion(rec *roster.Record, prevLast string) bool {
	first := rec.Trimmed(roster.ExportFirst)
	if first == "" || strings.Contains(first, "@") {
		return false
	}

	if prevLast != "" {
		if start, end, ok := foldIndex(first, prevLast); ok {
			remainder := strings.Join(strings.Fields(first[:start]+" "+first[end:]), " ")
			rec.Set(roster.ExportFirst, remainder)
			rec.Set(roster.ExportLast, prevLast)
			return true
		}
	}

	tokens := strings.Fields(first)
	if len(tokens) >= 2 {
		rec.Set(roster.ExportFirst, strings.Join(tokens[:len(tokens)-1], " "))
		rec.Set(roster.ExportLast, tokens[len(tokens)-1])
		return true
	}

	if len(tokens) == 1 && prevLast != "" {
		rec.Set(roster.ExportLast, prevLast)
		return true
	}

	return false
}

// foldIndex locates sub inside s under Unicode case folding and returns
// the byte offsets of the match in s itself. A plain strings.Index over
// lowercased copies can return offsets that do not line up with s when
// case conversion changes a character's encoded length.
func foldIndex(s, sub string) (start, end int, ok bool) {
	n := utf8.RuneCountInString(sub)
	if n == 0 {
		return 0, 0, false
	}
	for from := 0; from < len(s); {
		to, count := from, 0
		for to < len(s) && count < n {
			_, size := utf8.DecodeRuneInString(s[to:])
			to += size
			count++
		}
		if count == n && strings.EqualFold(s[from:to], sub) {
			return from, to, true
		}
		_, size := utf8.DecodeRuneInString(s[from:])
		from += size
	}
	return 0, 0, false
}
