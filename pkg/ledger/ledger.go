// Package ledger manages the append-only record of confirmed matches
// (export_matched_to_nlc.csv) and keeps it consistent with the master
// roster across repeated partial runs.
package ledger

import (
	"strings"

	"github.com/rosterlink/rosterlink/pkg/roster"
)

// NoMatchComment is the rule description written when an export record
// is matched to a master that had no match yet. The Sync invariant keys
// off this string: every master carrying it must have a ledger row.
const NoMatchComment = "possible match by lastname (matched to NLC with no match)"

// Ledger is the on-disk matched-records artifact. Rows are keyed by the
// master identifier in the nlc_id column. Appends are in-memory until
// Write; the discipline is read-full-set, compute, write-full-set.
type Ledger struct {
	Path  string
	table *roster.Table
}

// Load reads the ledger artifact. A missing file yields an empty ledger
// whose headers are adopted from the first append.
func Load(path string) (*Ledger, error) {
	if !roster.Exists(path) {
		return &Ledger{Path: path, table: roster.NewTable()}, nil
	}
	table, err := roster.ReadTable(path)
	if err != nil {
		return nil, err
	}
	return &Ledger{Path: path, table: table}, nil
}

// Len returns the number of ledger rows.
func (l *Ledger) Len() int {
	return l.table.Len()
}

// Has reports whether the ledger carries a row for the given master.
func (l *Ledger) Has(masterID string) bool {
	for _, rec := range l.table.Rows {
		if rec.Trimmed(roster.ColNLCID) == masterID {
			return true
		}
	}
	return false
}

// Append adds newly matched rows. An empty ledger adopts the given
// headers; an existing ledger keeps its own header set, so appended
// rows surface only the columns the artifact already carries.
func (l *Ledger) Append(headers []string, rows ...*roster.Record) {
	if len(l.table.Headers) == 0 {
		l.table.Headers = append([]string(nil), headers...)
	}
	for _, rec := range rows {
		l.table.Append(rec)
	}
}

// Sync enforces the ledger-membership invariant: every master record
// whose match comment indicates a no-match-yet match must have a ledger
// row. Masters missing from the ledger (the roster was updated but the
// ledger write was lost) are reconstructed from their own denormalized
// export fields and appended. A gap is a recoverable condition, never a
// failure: when even the ledger artifact itself is gone, the canonical
// header set is adopted and the artifact rebuilt from the roster.
// Returns the identifiers of the reconstructed rows.
func (l *Ledger) Sync(master *roster.Table) []string {
	var repaired []string
	for _, rec := range master.Rows {
		if !strings.Contains(rec.Get(roster.ColMatchByComment), noMatchPredicate) {
			continue
		}
		id := rec.Trimmed(roster.ColID)
		if id == "" || l.Has(id) {
			continue
		}
		if len(l.table.Headers) == 0 {
			l.table.Headers = canonicalHeaders()
		}
		l.table.Append(reconstruct(rec, id))
		repaired = append(repaired, id)
	}
	return repaired
}

// canonicalHeaders is the ledger header set used when no artifact exists
// to adopt headers from: the engine columns followed by the export
// source columns in output order.
func canonicalHeaders() []string {
	headers := []string{roster.ColNLCID, roster.ColMatchType, roster.ColMatchBy}
	for _, col := range roster.DenormColumns {
		headers = append(headers, roster.DenormSource[col])
	}
	return headers
}

// noMatchPredicate is the substring the sync check looks for; it matches
// NoMatchComment without being sensitive to prefix wording.
const noMatchPredicate = "matched to NLC with no match"

// reconstruct rebuilds a ledger row for a master record from the
// denormalized export fields it carries.
func reconstruct(master *roster.Record, id string) *roster.Record {
	rec := roster.NewRecord()
	rec.Set(roster.ColNLCID, id)
	rec.Set(roster.ColMatchType, roster.MatchTypePossible)
	rec.Set(roster.ColMatchBy, NoMatchComment)
	for denormCol, exportCol := range roster.DenormSource {
		rec.Set(exportCol, master.Get(denormCol))
	}
	return rec
}

// Write persists the ledger artifact.
func (l *Ledger) Write() error {
	return roster.WriteTable(l.Path, l.table)
}
