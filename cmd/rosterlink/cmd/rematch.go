package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rosterlink/rosterlink/internal/config"
	"github.com/rosterlink/rosterlink/pkg/linkage"
	"github.com/rosterlink/rosterlink/pkg/logging"
)

var (
	rematchInput  string
	rematchOutput string
)

// rematchCmd matches a previously-unmatched batch against masters that
// still lack a match.
var rematchCmd = &cobra.Command{
	Use:   "rematch",
	Short: "Re-match a previously-unmatched export batch by last name",
	Long: `Rematch reads a batch of export records that failed a prior run and
matches them, by last name only, against master records that still have
no match. The input file is read-only and never modified.

Newly matched rows are appended to the matched ledger and written onto
the roster; the rest go to the output file. Chain passes by feeding each
output in as the next input:

  rosterlink rematch --input export_still_not_in_nlc.csv --output still_v2.csv
  rosterlink rematch --input still_v2.csv --output still_v3.csv

Each run finishes with a sync check: every roster record marked as
matched-with-no-match must have a ledger row; missing rows are
reconstructed from the roster's denormalized export fields.`,
	RunE: runRematch,
}

func init() {
	rootCmd.AddCommand(rematchCmd)

	rematchCmd.Flags().StringVar(&rematchInput, "input", "export_still_not_in_nlc.csv",
		"input CSV of previously-unmatched records (never modified)")
	rematchCmd.Flags().StringVar(&rematchOutput, "output", "export_still_not_in_nlc_v2.csv",
		"output CSV for records still not matched")
}

func runRematch(cmd *cobra.Command, _ []string) error {
	paths := config.Resolve()

	result, err := linkage.Rematch(cmd.Context(), linkage.RematchInputs{
		InputPath:  config.Anchor(rematchInput),
		OutputPath: config.Anchor(rematchOutput),
		MasterPath: paths.MasterOut,
		LedgerPath: paths.Matched,
	})
	if err != nil {
		return err
	}

	logging.Ctx(cmd.Context()).Info().
		Str("input", rematchInput).
		Str("output", rematchOutput).
		Int("read", result.Input).
		Int("matched", result.Matched).
		Int("still_unmatched", result.StillUnmatched).
		Int("ledger_repaired", result.Synced).
		Msg("Re-match artifacts written")
	return nil
}
