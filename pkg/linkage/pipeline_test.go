package linkage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterlink/rosterlink/pkg/errors"
	"github.com/rosterlink/rosterlink/pkg/roster"
)

type artifactPaths struct {
	master    string
	export    string
	masterOut string
	matched   string
	unmatched string
}

func tempArtifacts(t *testing.T) artifactPaths {
	t.Helper()
	dir := t.TempDir()
	return artifactPaths{
		master:    filepath.Join(dir, "registration.csv"),
		export:    filepath.Join(dir, "export.csv"),
		masterOut: filepath.Join(dir, "nlc_main.csv"),
		matched:   filepath.Join(dir, "export_matched_to_nlc.csv"),
		unmatched: filepath.Join(dir, "export_still_not_in_nlc.csv"),
	}
}

func writeFixtures(t *testing.T, p artifactPaths) {
	t.Helper()

	master := roster.NewTable(roster.MasterFirst, roster.MasterLast, roster.MasterEmail)
	master.Append(masterRow("Maria", "Santos", "maria@example.com"))
	master.Append(masterRow("Juan", "Reyes", "juan@example.com"))
	master.Append(masterRow("Ana", "Dizon", ""))
	require.NoError(t, roster.WriteTable(p.master, master))

	export := roster.NewTable(
		roster.ExportContactID, roster.ExportFirst, roster.ExportLast,
		roster.ExportConfirmation, roster.ExportGenderFlag, roster.ExportContraFlag,
		roster.ExportImmigFlag, roster.ExportSignedUpDate,
	)
	export.Append(fullExportRow("Maria", "Santos", "fn-1", "C100", "2026-02-01"))
	// Companion row: blank last name, same confirmation number as the
	// row above, no contact identifier.
	export.Append(fullExportRow("Jose Santos", "", "", "C100", "2026-02-01"))
	export.Append(fullExportRow("Nobody", "Anywhere", "fn-3", "C300", "2026-02-02"))
	require.NoError(t, roster.WriteTable(p.export, export))
}

func relateInputs(p artifactPaths) RelateInputs {
	return RelateInputs{
		MasterPath:   p.master,
		ExportPath:   p.export,
		MasterOut:    p.masterOut,
		MatchedOut:   p.matched,
		UnmatchedOut: p.unmatched,
	}
}

func TestRelateEndToEnd(t *testing.T) {
	p := tempArtifacts(t)
	writeFixtures(t, p)

	result, err := Relate(context.Background(), relateInputs(p))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Masters)
	assert.Equal(t, 3, result.Exports)
	assert.Equal(t, 1, result.Companions)
	assert.Equal(t, 1, result.Matched)
	assert.Equal(t, 2, result.Unmatched)

	masterOut, err := roster.ReadTable(p.masterOut)
	require.NoError(t, err)
	require.Equal(t, 3, masterOut.Len())
	assert.Equal(t, roster.ColID, masterOut.Headers[0])

	santos := masterOut.Rows[0]
	assert.Equal(t, roster.MatchTypeExact, santos.Get(roster.ColMatchType))
	assert.Equal(t, "fn-1", santos.Get(roster.DenormContactID))
	assert.Equal(t, "Santos", santos.Get(roster.DenormLast))

	matched, err := roster.ReadTable(p.matched)
	require.NoError(t, err)
	require.Equal(t, 1, matched.Len())
	assert.Equal(t, santos.Trimmed(roster.ColID), matched.Rows[0].Get(roster.ColNLCID))

	unmatched, err := roster.ReadTable(p.unmatched)
	require.NoError(t, err)
	require.Equal(t, 2, unmatched.Len())
	for _, rec := range unmatched.Rows {
		assert.NotEmpty(t, rec.Get(roster.ColExportID))
	}
	// The companion row was rewritten before matching.
	assert.Equal(t, "Jose", unmatched.Rows[0].Get(roster.ExportFirst))
	assert.Equal(t, "Santos", unmatched.Rows[0].Get(roster.ExportLast))
}

func TestRelateMissingInputAborts(t *testing.T) {
	p := tempArtifacts(t)
	// Only the export exists.
	export := roster.NewTable(roster.ExportFirst, roster.ExportLast)
	require.NoError(t, roster.WriteTable(p.export, export))

	_, err := Relate(context.Background(), relateInputs(p))
	require.Error(t, err)
	assert.True(t, errors.IsMissingInput(err))
	assert.NoFileExists(t, p.masterOut)
	assert.NoFileExists(t, p.matched)
	assert.NoFileExists(t, p.unmatched)
}

func TestRelateIdempotentOverAnnotatedRoster(t *testing.T) {
	p := tempArtifacts(t)
	writeFixtures(t, p)

	_, err := Relate(context.Background(), relateInputs(p))
	require.NoError(t, err)

	firstMaster, err := os.ReadFile(p.masterOut)
	require.NoError(t, err)
	firstMatched, err := os.ReadFile(p.matched)
	require.NoError(t, err)

	// Feed the annotated roster back in as the master input.
	second := relateInputs(p)
	second.MasterPath = p.masterOut
	_, err = Relate(context.Background(), second)
	require.NoError(t, err)

	secondMaster, err := os.ReadFile(p.masterOut)
	require.NoError(t, err)
	secondMatched, err := os.ReadFile(p.matched)
	require.NoError(t, err)

	assert.Equal(t, string(firstMaster), string(secondMaster))
	assert.Equal(t, string(firstMatched), string(secondMatched))
}
