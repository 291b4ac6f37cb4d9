package linkage

import (
	"github.com/rosterlink/rosterlink/pkg/roster"
)

// Reconciliation merges the final match results back onto both sides of
// the run.
type Reconciliation struct {
	// Master is the annotated master roster (same records, new columns).
	Master *roster.Table
	// Matched holds export records that resolved to a master, in
	// discovery order, annotated with the master identifier.
	Matched *roster.Table
	// Unmatched holds export records that fell through every pass, each
	// with a fresh opaque identifier.
	Unmatched *roster.Table
}

// Reconcile writes match results onto the master roster and splits the
// export set into matched and unmatched tables.
//
// Every master record first gets empty defaults for all engine-owned
// columns, then the winning claim (if any) sets the classification, a
// human-readable comment, and the denormalized export fields. Columns
// the engine does not own are never deleted or reordered; engine
// columns are appended around them in a fixed layout.
func Reconcile(master, export *roster.Table, matches []Match, unmatched []*roster.Record, claims *Claims) *Reconciliation {
	annotateMaster(master, claims)

	matchedHeaders := append([]string{roster.ColNLCID, roster.ColMatchType, roster.ColMatchBy}, export.Headers...)
	matched := roster.NewTable(matchedHeaders...)
	for _, match := range matches {
		rec := match.Export
		rec.Set(roster.ColNLCID, match.Master.Trimmed(roster.ColID))
		rec.Set(roster.ColMatchType, match.Type)
		rec.Set(roster.ColMatchBy, match.Comment)
		matched.Append(rec)
	}

	unmatchedHeaders := append([]string{roster.ColExportID, roster.ColMatchType, roster.ColMatchBy}, export.Headers...)
	stillUnmatched := roster.NewTable(unmatchedHeaders...)
	for _, rec := range unmatched {
		rec.Set(roster.ColExportID, roster.ExportID())
		rec.Set(roster.ColMatchType, "")
		rec.Set(roster.ColMatchBy, "")
		stillUnmatched.Append(rec)
	}

	return &Reconciliation{Master: master, Matched: matched, Unmatched: stillUnmatched}
}

// annotateMaster rebuilds the master header layout (identifier first,
// match columns next, source columns untouched, denormalized export
// columns last) and writes each record's match outcome.
func annotateMaster(master *roster.Table, claims *Claims) {
	engine := map[string]bool{roster.ColID: true}
	for _, h := range roster.MatchColumns {
		engine[h] = true
	}
	for _, h := range roster.DenormColumns {
		engine[h] = true
	}

	// Source columns survive re-runs over an already-annotated roster:
	// engine columns are stripped here and re-added in the fixed layout.
	source := make([]string, 0, len(master.Headers))
	for _, h := range master.Headers {
		if !engine[h] {
			source = append(source, h)
		}
	}
	headers := append([]string{roster.ColID}, roster.MatchColumns...)
	headers = append(headers, source...)
	headers = append(headers, roster.DenormColumns...)
	master.Headers = headers

	for _, rec := range master.Rows {
		rec.Set(roster.ColMatchType, "")
		rec.Set(roster.ColMatchByComment, "")
		for _, col := range roster.DenormColumns {
			rec.Set(col, "")
		}

		claim, ok := claims.Get(rec.Trimmed(roster.ColID))
		if !ok {
			continue
		}
		rec.Set(roster.ColMatchType, claim.Type)
		rec.Set(roster.ColMatchByComment, masterComment(claim))
		for _, col := range roster.DenormColumns {
			rec.Set(col, claim.Export.Get(roster.DenormSource[col]))
		}
	}
}

// masterComment renders the master-side comment: a fixed literal for
// exact matches, the winning rule description otherwise.
func masterComment(claim *Claim) string {
	if claim.Type == roster.MatchTypeExact {
		return MasterExactComment
	}
	return claim.Comment
}
