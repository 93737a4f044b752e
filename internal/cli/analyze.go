package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/replaylab/combotrace/internal/combo"
)

// AnalyzeResult is the analyze command's JSON payload.
type AnalyzeResult struct {
	GameID     string         `json:"game_id"`
	ComboCount int            `json:"combo_count"`
	Combos     []*combo.Combo `json:"combos"`
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <replay.json>",
		Short: "Detect combos in a replay file",
		Long: `Run combo detection over a decoded replay file and print the
detected combos.

Exit codes:
  0 - Analysis completed
  2 - Command error (file not found, malformed replay)

Examples:
  combotrace analyze game.json
  combotrace analyze game.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runAnalyze(opts *RootOptions, path string, cmd *cobra.Command) error {
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
	f.VerboseLog("analyzed %s: game %s, %d combos", path, a.GameID, len(a.Combos))

	if opts.Format == "json" {
		return f.Success(AnalyzeResult{
			GameID:     a.GameID,
			ComboCount: len(a.Combos),
			Combos:     a.Combos,
		})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Game %s: %d combos\n", a.GameID, len(a.Combos))
	for i, c := range a.Combos {
		fmt.Fprintf(w, "  [%d] victim P%d  frames %d..%s  %.1f%% -> %.1f%%  moves %d  damage %.1f%s\n",
			i, c.VictimIndex+1, c.StartFrame, endFrameLabel(c),
			c.StartPercent, c.CurrentPercent, len(c.Moves), c.TotalDamage(), killLabel(c))
	}
	return nil
}

func endFrameLabel(c *combo.Combo) string {
	if c.EndFrame == nil {
		return "open"
	}
	return fmt.Sprintf("%d", *c.EndFrame)
}

func killLabel(c *combo.Combo) string {
	if c.DidKill {
		return "  KILL"
	}
	return ""
}
