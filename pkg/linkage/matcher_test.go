package linkage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterlink/rosterlink/pkg/roster"
)

func exportRecord(first, last string) *roster.Record {
	rec := roster.NewRecord()
	rec.Set(roster.ExportFirst, first)
	rec.Set(roster.ExportLast, last)
	return rec
}

func runCascade(t *testing.T, master *roster.Table, rows ...*roster.Record) ([]Match, []*roster.Record, *Matcher) {
	t.Helper()
	export := roster.NewTable(roster.ExportFirst, roster.ExportLast)
	for _, r := range rows {
		export.Append(r)
	}
	matcher := NewMatcher(BuildIndex(master))
	matches, unmatched := matcher.Run(export)
	return matches, unmatched, matcher
}

func TestMatchEmailFromFirstNameField(t *testing.T) {
	master := masterTable(
		masterRow("Maria", "Santos", "maria@example.com"),
	)

	matches, unmatched, _ := runCascade(t, master,
		exportRecord("Maria@Example.com", ""),
	)

	require.Len(t, matches, 1)
	assert.Empty(t, unmatched)
	assert.Equal(t, roster.MatchTypeExact, matches[0].Type)
	assert.Equal(t, "email", matches[0].Comment)
}

func TestMatchEmailMultipleCandidatesNoted(t *testing.T) {
	master := masterTable(
		masterRow("Maria", "Santos", "shared@example.com"),
		masterRow("Ana", "Reyes", "shared@example.com"),
	)

	matches, _, _ := runCascade(t, master,
		exportRecord("shared@example.com", ""),
	)

	require.Len(t, matches, 1)
	assert.Equal(t, "email (multiple NLC)", matches[0].Comment)
	// First candidate in master order wins.
	assert.Equal(t, "Maria", matches[0].Master.Trimmed(roster.MasterFirst))
}

func TestMatchExactName(t *testing.T) {
	master := masterTable(
		masterRow("Maria", "Santos", ""),
	)

	matches, _, _ := runCascade(t, master,
		exportRecord("maria", "SANTOS"),
	)

	require.Len(t, matches, 1)
	assert.Equal(t, roster.MatchTypeExact, matches[0].Type)
	assert.Equal(t, "name", matches[0].Comment)
}

func TestMatchNameFirstWordFallback(t *testing.T) {
	master := masterTable(
		masterRow("Inying", "Lacson", ""),
	)

	matches, _, _ := runCascade(t, master,
		exportRecord("Inying Grace", "Lacson (personal)"),
	)

	require.Len(t, matches, 1)
	assert.Equal(t, roster.MatchTypeExact, matches[0].Type)
	assert.Contains(t, matches[0].Comment, "first word match")
}

func TestMatchLastNameOnlyUnique(t *testing.T) {
	master := masterTable(
		masterRow("Maria", "Arcadio", ""),
		masterRow("Juan", "Reyes", ""),
	)

	matches, _, _ := runCascade(t, master,
		exportRecord("Isabel", "Arcadio"),
	)

	require.Len(t, matches, 1)
	assert.Equal(t, roster.MatchTypePossible, matches[0].Type)
	assert.Equal(t, "last_name_only (only one in NLC)", matches[0].Comment)
}

func TestMatchLastNameOnlyRejectsAmbiguity(t *testing.T) {
	master := masterTable(
		masterRow("Maria", "Santos", ""),
		masterRow("Ana", "Santos", ""),
	)

	matches, unmatched, _ := runCascade(t, master,
		exportRecord("Isabel", "Santos"),
	)

	// Two Santos rows: pass 3 refuses, and the fuzzy pass needs equal
	// first tokens, so the record falls through.
	assert.Empty(t, matches)
	assert.Len(t, unmatched, 1)
}

func TestMatchFuzzyDistanceOne(t *testing.T) {
	master := masterTable(
		masterRow("Maria", "Arcadio", ""),
		masterRow("Maria", "Reyes", ""),
	)

	matches, _, _ := runCascade(t, master,
		exportRecord("Maria", "Arcaido"),
	)

	require.Len(t, matches, 1)
	assert.Equal(t, roster.MatchTypePossible, matches[0].Type)
	assert.Equal(t, "fuzzy last name (dist=1)", matches[0].Comment)
	assert.Equal(t, "Arcadio", matches[0].Master.Trimmed(roster.MasterLast))
}

func TestMatchFuzzyRejectsDistanceTwo(t *testing.T) {
	master := masterTable(
		masterRow("Maria", "Arcadio", ""),
	)

	matches, unmatched, _ := runCascade(t, master,
		exportRecord("Maria", "Arcaldos"),
	)

	assert.Empty(t, matches)
	assert.Len(t, unmatched, 1)
}

func TestMatchFuzzyRequiresEqualFirstToken(t *testing.T) {
	master := masterTable(
		masterRow("Juan", "Arcadio", ""),
	)

	matches, unmatched, _ := runCascade(t, master,
		exportRecord("Maria", "Arcaido"),
	)

	assert.Empty(t, matches)
	assert.Len(t, unmatched, 1)
}

func TestMatchFuzzyRequiresMinimumLastNameLength(t *testing.T) {
	master := masterTable(
		masterRow("Maria", "Ang", ""),
	)

	// "Amg" is distance 1 from "Ang" but below the length gate.
	matches, unmatched, _ := runCascade(t, master,
		exportRecord("Maria", "Amg"),
	)

	assert.Empty(t, matches)
	assert.Len(t, unmatched, 1)
}

func TestMatchFuzzySkipsClaimedMasters(t *testing.T) {
	master := masterTable(
		masterRow("Maria", "Arcadio", "maria@example.com"),
	)

	// First record claims the master exactly; the second would fuzzy-match
	// the same master but it is no longer a candidate.
	matches, unmatched, _ := runCascade(t, master,
		exportRecord("maria@example.com", ""),
		exportRecord("Maria", "Arcaido"),
	)

	require.Len(t, matches, 1)
	assert.Equal(t, "email", matches[0].Comment)
	assert.Len(t, unmatched, 1)
}

func TestMatchSkipsMastersMatchedInPriorRun(t *testing.T) {
	master := masterTable(
		masterRow("Maria", "Arcadio", ""),
	)
	master.Rows[0].Set(roster.ColMatchType, roster.MatchTypePossible)

	// Pass 3 and 4 only consider masters with no match yet.
	matches, unmatched, _ := runCascade(t, master,
		exportRecord("Isabel", "Arcadio"),
	)

	assert.Empty(t, matches)
	assert.Len(t, unmatched, 1)
}

func TestExactMatchSupersedesPossible(t *testing.T) {
	master := masterTable(
		masterRow("Ana", "Santos", "ana@example.com"),
	)

	_, _, matcher := runCascade(t, master,
		exportRecord("Isabel", "Santos"),    // possible, last name only
		exportRecord("ana@example.com", ""), // exact, email
	)

	claim, ok := matcher.Claims().Get(master.Rows[0].Trimmed(roster.ColID))
	require.True(t, ok)
	assert.Equal(t, roster.MatchTypeExact, claim.Type)
	assert.Equal(t, "email", claim.Comment)
}

func TestFirstPossibleMatchWinsBetweenEquals(t *testing.T) {
	master := masterTable(
		masterRow("Maria", "Arcadio", ""),
	)

	_, _, matcher := runCascade(t, master,
		exportRecord("Isabel", "Arcadio"), // possible via pass 3
		exportRecord("Teresa", "Arcadio"), // also wants the same master
	)

	claim, ok := matcher.Claims().Get(master.Rows[0].Trimmed(roster.ColID))
	require.True(t, ok)
	assert.Equal(t, "Isabel", claim.Export.Trimmed(roster.ExportFirst))
}

func TestAtMostOneAcceptedMatchPerMaster(t *testing.T) {
	master := masterTable(
		masterRow("Maria", "Arcadio", ""),
	)

	matches, unmatched, matcher := runCascade(t, master,
		exportRecord("Isabel", "Arcadio"),
		exportRecord("Maria", "Arcaido"), // fuzzy candidate, master already claimed
	)

	require.Len(t, matches, 1)
	assert.Len(t, unmatched, 1)
	assert.Equal(t, 1, matcher.Claims().Len())
}
