package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/replaylab/combotrace/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	DBPath string
}

// ExportResult is the export command's JSON payload.
type ExportResult struct {
	GameID     string `json:"game_id"`
	ComboCount int    `json:"combo_count"`
	Database   string `json:"database"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <replay.json>",
		Short: "Analyze a replay and persist the combos to SQLite",
		Long: `Run combo detection over a decoded replay file and write the game,
its combos, and their moves to a SQLite database. Writes are idempotent,
so re-exporting the same analysis is a no-op.

Exit codes:
  0 - Export completed
  2 - Command error (file not found, malformed replay, database error)

Examples:
  combotrace export game.json --db combos.db
  combotrace export game.json --db combos.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to the SQLite database (required)")
	cmd.MarkFlagRequired("db")

	return cmd
}

func runExport(opts *ExportOptions, path string, cmd *cobra.Command) error {
	f := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	a, err := analyzeReplay(path)
	if err != nil {
		return err
	}

	st, err := store.Open(opts.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if err := st.WriteGame(ctx, a.GameID, a.Settings); err != nil {
		return WrapExitError(ExitCommandError, "failed to write game", err)
	}
	if err := st.WriteCombos(ctx, a.GameID, a.Combos); err != nil {
		return WrapExitError(ExitCommandError, "failed to write combos", err)
	}
	f.VerboseLog("exported game %s (%d combos) to %s", a.GameID, len(a.Combos), opts.DBPath)

	if opts.Format == "json" {
		return f.Success(ExportResult{
			GameID:     a.GameID,
			ComboCount: len(a.Combos),
			Database:   opts.DBPath,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported game %s: %d combos -> %s\n", a.GameID, len(a.Combos), opts.DBPath)
	return nil
}
