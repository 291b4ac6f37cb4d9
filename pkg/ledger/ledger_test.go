package ledger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterlink/rosterlink/pkg/roster"
)

func ledgerPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "export_matched_to_nlc.csv")
}

func matchedRow(id, first, last string) *roster.Record {
	rec := roster.NewRecord()
	rec.Set(roster.ColNLCID, id)
	rec.Set(roster.ColMatchType, roster.MatchTypePossible)
	rec.Set(roster.ColMatchBy, NoMatchComment)
	rec.Set(roster.ExportFirst, first)
	rec.Set(roster.ExportLast, last)
	return rec
}

func TestLoadMissingFileYieldsEmptyLedger(t *testing.T) {
	book, err := Load(ledgerPath(t))
	require.NoError(t, err)
	assert.Equal(t, 0, book.Len())
	assert.False(t, book.Has("nlc_000000000000"))
}

func TestAppendAdoptsHeadersOnce(t *testing.T) {
	path := ledgerPath(t)
	book, err := Load(path)
	require.NoError(t, err)

	headers := []string{roster.ColNLCID, roster.ColMatchType, roster.ColMatchBy, roster.ExportFirst, roster.ExportLast}
	book.Append(headers, matchedRow("nlc_aaa", "Isabel", "Santos"))
	require.NoError(t, book.Write())

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Len())
	assert.True(t, reloaded.Has("nlc_aaa"))

	// A second append must not replace the persisted header set.
	reloaded.Append([]string{"bogus"}, matchedRow("nlc_bbb", "Pedro", "Reyes"))
	require.NoError(t, reloaded.Write())

	table, err := roster.ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, headers, table.Headers)
	assert.Equal(t, 2, table.Len())
}

func TestSyncReconstructsMissingRows(t *testing.T) {
	path := ledgerPath(t)
	book, err := Load(path)
	require.NoError(t, err)
	book.Append([]string{
		roster.ColNLCID, roster.ColMatchType, roster.ColMatchBy,
		roster.ExportContactID, roster.ExportFirst, roster.ExportLast,
	})

	master := roster.NewTable()
	lost := roster.NewRecord()
	lost.Set(roster.ColID, "nlc_4f2a9c1d0b7e")
	lost.Set(roster.ColMatchType, roster.MatchTypePossible)
	lost.Set(roster.ColMatchByComment, NoMatchComment)
	lost.Set(roster.DenormContactID, "fn-4")
	lost.Set(roster.DenormFirst, "Isabel")
	lost.Set(roster.DenormLast, "Santos")
	master.Append(lost)

	repaired := book.Sync(master)
	require.Len(t, repaired, 1)
	assert.Equal(t, lost.Trimmed(roster.ColID), repaired[0])

	require.NoError(t, book.Write())
	table, err := roster.ReadTable(path)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	row := table.Rows[0]
	assert.Equal(t, lost.Trimmed(roster.ColID), row.Get(roster.ColNLCID))
	assert.Equal(t, NoMatchComment, row.Get(roster.ColMatchBy))
	assert.Equal(t, "fn-4", row.Get(roster.ExportContactID))
	assert.Equal(t, "Isabel", row.Get(roster.ExportFirst))
	assert.Equal(t, "Santos", row.Get(roster.ExportLast))
}

func TestSyncSkipsPresentAndUnaffectedMasters(t *testing.T) {
	book, err := Load(ledgerPath(t))
	require.NoError(t, err)
	book.Append([]string{roster.ColNLCID, roster.ColMatchType, roster.ColMatchBy},
		matchedRow("nlc_present0000", "Isabel", "Santos"))

	master := roster.NewTable()
	present := roster.NewRecord()
	present.Set(roster.ColID, "nlc_present0000")
	present.Set(roster.ColMatchByComment, NoMatchComment)
	master.Append(present)

	exact := roster.NewRecord()
	exact.Set(roster.ColID, "nlc_exact000000")
	exact.Set(roster.ColMatchType, roster.MatchTypeExact)
	exact.Set(roster.ColMatchByComment, "exact_match: email or first+last name")
	master.Append(exact)

	repaired := book.Sync(master)
	assert.Empty(t, repaired)
	assert.Equal(t, 1, book.Len())
}

func TestSyncAdoptsCanonicalHeadersWhenLedgerIsGone(t *testing.T) {
	path := ledgerPath(t)
	book, err := Load(path)
	require.NoError(t, err)

	master := roster.NewTable()
	lost := roster.NewRecord()
	lost.Set(roster.ColID, "nlc_lost0000000")
	lost.Set(roster.ColMatchByComment, NoMatchComment)
	lost.Set(roster.DenormFirst, "Isabel")
	lost.Set(roster.DenormLast, "Santos")
	master.Append(lost)

	repaired := book.Sync(master)
	require.Len(t, repaired, 1)
	require.NoError(t, book.Write())

	table, err := roster.ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, roster.ColNLCID, table.Headers[0])
	assert.Contains(t, table.Headers, roster.ExportFirst)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "nlc_lost0000000", table.Rows[0].Get(roster.ColNLCID))
	assert.Equal(t, "Isabel", table.Rows[0].Get(roster.ExportFirst))
}
