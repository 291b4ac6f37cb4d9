package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rosterlink/rosterlink/internal/config"
	"github.com/rosterlink/rosterlink/pkg/errors"
	"github.com/rosterlink/rosterlink/pkg/loader"
	"github.com/rosterlink/rosterlink/pkg/roster"
)

// sessionsCmd previews the session registrations the downstream loader
// would create from an annotated roster.
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Preview session registrations from an annotated roster",
	Long: `Sessions reads the annotated roster and reports, per dialogue session,
how many attendees carry the registration marker ("X") in that session's
flag column. This is a dry run of the downstream loader's
session-registration step; nothing is written.

A custom field-mapping contract can be supplied with --schema; otherwise
the built-in contract is used.`,
	RunE: runSessions,
}

var sessionsShowIDs bool

func init() {
	rootCmd.AddCommand(sessionsCmd)

	sessionsCmd.Flags().String("schema", "", "loader schema YAML (default: built-in)")
	sessionsCmd.Flags().BoolVar(&sessionsShowIDs, "ids", false, "list registrant identifiers per session")
	bindPathFlag(sessionsCmd, "schema", config.KeySchema)
}

func runSessions(cmd *cobra.Command, _ []string) error {
	paths := config.Resolve()

	schema, err := loadSchema(paths.Schema)
	if err != nil {
		return err
	}

	table, err := roster.ReadTable(paths.MasterOut)
	if err != nil {
		return err
	}

	bySession := make(map[string][]string)
	for i, rec := range table.Rows {
		for _, sessionID := range schema.SessionIDs(table.Headers, rec) {
			bySession[sessionID] = append(bySession[sessionID], schema.DocID(i, table.Headers, rec))
		}
	}

	sessionIDs := make([]string, 0, len(bySession))
	for id := range bySession {
		sessionIDs = append(sessionIDs, id)
	}
	sort.Strings(sessionIDs)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Event: %s\n", schema.Event)
	if len(sessionIDs) == 0 {
		fmt.Fprintln(out, "No session registrations found.")
		return nil
	}
	for _, sessionID := range sessionIDs {
		ids := bySession[sessionID]
		fmt.Fprintf(out, "%-40s %d registrants\n", sessionID, len(ids))
		if sessionsShowIDs {
			for _, id := range ids {
				fmt.Fprintf(out, "  %s\n", id)
			}
		}
	}
	return nil
}

func loadSchema(path string) (*loader.Schema, error) {
	if path == "" {
		return loader.Default()
	}
	schema, err := loader.LoadSchema(path)
	if err != nil {
		return nil, errors.NewConfigError("schema", fmt.Sprintf("load %s", path), err)
	}
	return schema, nil
}
