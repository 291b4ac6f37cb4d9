package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rosterlink/rosterlink/internal/config"
	"github.com/rosterlink/rosterlink/pkg/linkage"
	"github.com/rosterlink/rosterlink/pkg/logging"
)

// relateCmd runs the full reconciliation pipeline.
var relateCmd = &cobra.Command{
	Use:   "relate",
	Short: "Reconcile the registration roster with a session-signup export",
	Long: `Relate runs the full matching cascade: companion resolution over the
export, stable identifier assignment over the roster, then four matching
passes (email, exact name, unique last name, fuzzy last name).

Run only when source data (roster or export CSV) changes. Outputs:
the annotated roster, the matched-records ledger, and the records that
matched nothing. The ledger output is never appended here; it is written
fresh each run and extended later by "rosterlink rematch".`,
	RunE: runRelate,
}

func init() {
	rootCmd.AddCommand(relateCmd)

	relateCmd.Flags().String("master", "", "master roster CSV (default from config)")
	relateCmd.Flags().String("export", "", "session-signup export CSV (default from config)")
	bindPathFlag(relateCmd, "master", config.KeyMaster)
	bindPathFlag(relateCmd, "export", config.KeyExport)
}

func runRelate(cmd *cobra.Command, _ []string) error {
	paths := config.Resolve()

	result, err := linkage.Relate(cmd.Context(), linkage.RelateInputs{
		MasterPath:   paths.Master,
		ExportPath:   paths.Export,
		MasterOut:    paths.MasterOut,
		MatchedOut:   paths.Matched,
		UnmatchedOut: paths.Unmatched,
	})
	if err != nil {
		return err
	}

	logging.Ctx(cmd.Context()).Info().
		Str("master_out", paths.MasterOut).
		Str("matched_out", paths.Matched).
		Str("unmatched_out", paths.Unmatched).
		Int("masters", result.Masters).
		Int("exports", result.Exports).
		Int("companions", result.Companions).
		Msg("Artifacts written")
	return nil
}

// bindPathFlag binds a set flag to its viper path key, so flags override
// the config file without clobbering its defaults when unset.
func bindPathFlag(cmd *cobra.Command, flag, key string) {
	cmd.PreRunE = chainPreRun(cmd.PreRunE, func(c *cobra.Command, _ []string) error {
		if c.Flags().Changed(flag) {
			value, err := c.Flags().GetString(flag)
			if err != nil {
				return err
			}
			viper.Set(key, value)
		}
		return nil
	})
}

func chainPreRun(prev func(*cobra.Command, []string) error, next func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(c *cobra.Command, args []string) error {
		if prev != nil {
			if err := prev(c, args); err != nil {
				return err
			}
		}
		return next(c, args)
	}
}
