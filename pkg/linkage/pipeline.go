package linkage

import (
	"context"

	"github.com/rosterlink/rosterlink/pkg/logging"
	"github.com/rosterlink/rosterlink/pkg/roster"
)

// RelateInputs names the artifacts of a full matching run.
type RelateInputs struct {
	MasterPath   string // raw registration roster (read)
	ExportPath   string // session-signup export (read)
	MasterOut    string // annotated master roster (written)
	MatchedOut   string // matched export records, the ledger seed (written)
	UnmatchedOut string // export records with no master counterpart (written)
}

// RelateResult summarizes a full matching run.
type RelateResult struct {
	Masters    int
	Exports    int
	Companions int
	Matched    int
	Unmatched  int
	Claimed    int
}

// Relate runs the full reconciliation pipeline: assign stable master
// identifiers, resolve companion rows, index the master set, run the
// matching cascade, and write the three output artifacts. Both inputs
// are read in full before anything is written, so a missing input
// aborts the run without partial artifacts.
func Relate(ctx context.Context, in RelateInputs) (*RelateResult, error) {
	log := logging.FromContext(ctx)

	master, err := roster.ReadTable(in.MasterPath)
	if err != nil {
		return nil, err
	}
	export, err := roster.ReadTable(in.ExportPath)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Int("masters", master.Len()).
		Int("exports", export.Len()).
		Msg("Inputs loaded")

	AssignIdentifiers(master)
	companions := ResolveCompanions(export)
	if companions > 0 {
		log.Debug().Int("resolved", companions).Msg("Companion rows resolved")
	}

	matcher := NewMatcher(BuildIndex(master))
	matches, unmatched := matcher.Run(export)
	result := Reconcile(master, export, matches, unmatched, matcher.Claims())

	if err := roster.WriteTable(in.MasterOut, result.Master); err != nil {
		return nil, err
	}
	if err := roster.WriteTable(in.MatchedOut, result.Matched); err != nil {
		return nil, err
	}
	if err := roster.WriteTable(in.UnmatchedOut, result.Unmatched); err != nil {
		return nil, err
	}

	summary := &RelateResult{
		Masters:    master.Len(),
		Exports:    export.Len(),
		Companions: companions,
		Matched:    len(matches),
		Unmatched:  len(unmatched),
		Claimed:    matcher.Claims().Len(),
	}
	log.Info().
		Int("matched", summary.Matched).
		Int("unmatched", summary.Unmatched).
		Int("masters_claimed", summary.Claimed).
		Msg("Reconciliation complete")
	return summary, nil
}

// AssignIdentifiers writes the content-derived identifier onto every
// master record. Identifiers are recomputed, never regenerated: the same
// (email, first, last) triple always yields the same id, so re-running
// the pipeline cannot mint duplicate master identities.
func AssignIdentifiers(master *roster.Table) {
	master.PrependHeader(roster.ColID)
	for _, rec := range master.Rows {
		rec.Set(roster.ColID, roster.MasterID(
			rec.Trimmed(roster.MasterEmail),
			rec.Trimmed(roster.MasterFirst),
			rec.Trimmed(roster.MasterLast),
		))
	}
}
