package linkage

import (
	"context"
	"fmt"
	"strings"

	"github.com/rosterlink/rosterlink/pkg/errors"
	"github.com/rosterlink/rosterlink/pkg/ledger"
	"github.com/rosterlink/rosterlink/pkg/logging"
	"github.com/rosterlink/rosterlink/pkg/normalize"
	"github.com/rosterlink/rosterlink/pkg/roster"
)

// Rematch rule descriptions, by how narrow the candidate field was.
const (
	rematchOnlyOne          = "possible match by lastname (only one in NLC)"
	rematchOnlyOneUnmatched = "possible match by lastname (only one NLC with no match)"
)

// RematchInputs names the artifacts of an incremental re-matching run.
// The input batch is read-only; newly matched rows go to the ledger and
// the master roster, the rest to a fresh output file, so runs can be
// chained by feeding each output in as the next input.
type RematchInputs struct {
	InputPath  string // previously-unmatched export batch (read, never modified)
	OutputPath string // still-not-matched rows (written)
	MasterPath string // annotated master roster (read and rewritten)
	LedgerPath string // matched ledger (appended)
}

// RematchResult summarizes an incremental run.
type RematchResult struct {
	Input          int
	Matched        int
	StillUnmatched int
	Synced         int
}

// Rematch matches a previously-unmatched export batch against master
// records that still lack a match, by last name only, taking the first
// unclaimed candidate. It then runs the ledger sync invariant so every
// master marked matched-with-no-match has a ledger row, which keeps
// repeated partial runs convergent.
func Rematch(ctx context.Context, in RematchInputs) (*RematchResult, error) {
	log := logging.FromContext(ctx)

	input, err := roster.ReadTable(in.InputPath)
	if err != nil {
		return nil, err
	}
	master, err := roster.ReadTable(in.MasterPath)
	if err != nil {
		return nil, err
	}
	if !master.HasHeader(roster.ColID) {
		return nil, errors.NewMatchError("rematch", in.MasterPath,
			"master roster has no id column; run a full reconciliation first",
			fmt.Errorf("%w: %s", errors.ErrMissingColumn, roster.ColID))
	}
	master.AppendHeaders(roster.MatchColumns...)
	master.AppendHeaders(roster.DenormColumns...)

	// By-last-name index over the whole roster, in roster order. The full
	// candidate count feeds the rule description even when most of the
	// candidates already carry a match.
	byLast := make(map[string][]*roster.Record)
	for _, rec := range master.Rows {
		if key := normalize.LastName(rec.Trimmed(roster.MasterLast)); key != "" {
			byLast[key] = append(byLast[key], rec)
		}
	}

	claims := NewClaims()
	var newlyMatched []*roster.Record
	stillNot := roster.NewTable(input.Headers...)

	for _, row := range input.Rows {
		key := normalize.LastName(batchLastName(row))
		if key == "" {
			stillNot.Append(row)
			continue
		}
		candidates := byLast[key]
		available := candidates[:0:0]
		for _, c := range candidates {
			if c.Trimmed(roster.ColMatchType) != "" || claims.Claimed(c.Trimmed(roster.ColID)) {
				continue
			}
			available = append(available, c)
		}
		if len(available) == 0 {
			stillNot.Append(row)
			continue
		}

		chosen := available[0]
		comment := rematchComment(len(available), len(candidates))
		id := chosen.Trimmed(roster.ColID)

		matched := row.Clone()
		matched.Set(roster.ColNLCID, id)
		matched.Set(roster.ColMatchType, roster.MatchTypePossible)
		matched.Set(roster.ColMatchBy, comment)
		claims.Record(id, matched, roster.MatchTypePossible, comment)
		newlyMatched = append(newlyMatched, matched)

		chosen.Set(roster.ColMatchType, roster.MatchTypePossible)
		chosen.Set(roster.ColMatchByComment, comment)
		for denormCol, exportCol := range roster.DenormSource {
			chosen.Set(denormCol, row.Get(exportCol))
		}
	}

	if err := roster.WriteTable(in.OutputPath, stillNot); err != nil {
		return nil, err
	}

	book, err := ledger.Load(in.LedgerPath)
	if err != nil {
		return nil, err
	}
	if len(newlyMatched) > 0 {
		book.Append(ledgerHeaders(input.Headers), newlyMatched...)
	}

	if err := roster.WriteTable(in.MasterPath, master); err != nil {
		return nil, err
	}

	synced := book.Sync(master)
	if err := book.Write(); err != nil {
		return nil, errors.NewSyncError(book.Path, synced, err)
	}

	result := &RematchResult{
		Input:          input.Len(),
		Matched:        len(newlyMatched),
		StillUnmatched: stillNot.Len(),
		Synced:         len(synced),
	}
	log.Info().
		Int("matched", result.Matched).
		Int("still_unmatched", result.StillUnmatched).
		Int("ledger_repaired", result.Synced).
		Msg("Incremental re-match complete")
	return result, nil
}

// batchLastName extracts a last name from a batch row, falling back to
// the final token of the first-name field when the last-name cell is
// blank.
func batchLastName(row *roster.Record) string {
	if last := row.Trimmed(roster.ExportLast); last != "" {
		return last
	}
	fields := strings.Fields(row.Trimmed(roster.ExportFirst))
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// rematchComment picks the rule description from the candidate counts:
// unique in the whole roster, unique among the match-free masters, or
// else the first match-free master in roster order.
func rematchComment(available, total int) string {
	switch {
	case available == 1 && total == 1:
		return rematchOnlyOne
	case available == 1:
		return rematchOnlyOneUnmatched
	default:
		return ledger.NoMatchComment
	}
}

// ledgerHeaders derives the header set for a freshly created ledger from
// the batch headers, dropping engine-owned columns that would otherwise
// duplicate the ledger's own.
func ledgerHeaders(batchHeaders []string) []string {
	headers := []string{roster.ColNLCID, roster.ColMatchType, roster.ColMatchBy}
	for _, h := range batchHeaders {
		switch h {
		case roster.ColExportID, roster.ColNLCID, roster.ColMatchType, roster.ColMatchBy:
			continue
		}
		headers = append(headers, h)
	}
	return headers
}
