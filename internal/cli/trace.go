package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/replaylab/combotrace/internal/combo"
)

// TraceEntry is one event in the trace command's JSON payload.
type TraceEntry struct {
	Seq         int64  `json:"seq"`
	Kind        string `json:"kind"`
	VictimIndex int    `json:"victim_index"`
	StartFrame  int32  `json:"start_frame"`
	EndFrame    *int32 `json:"end_frame,omitempty"`
	Moves       int    `json:"moves"`
}

// TraceResult is the trace command's JSON payload.
type TraceResult struct {
	GameID string       `json:"game_id"`
	Events []TraceEntry `json:"events"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <replay.json>",
		Short: "Print the ordered combo event trace for a replay",
		Long: `Run combo detection over a decoded replay file and print every
published lifecycle event in sequence order.

Exit codes:
  0 - Trace completed
  2 - Command error (file not found, malformed replay)

Examples:
  combotrace trace game.json
  combotrace trace game.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runTrace(opts *RootOptions, path string, cmd *cobra.Command) error {
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

	entries := a.Trace
	if entries == nil {
		entries = []TraceEntry{}
	}

	if opts.Format == "json" {
		return f.Success(TraceResult{
			GameID: a.GameID,
			Events: entries,
		})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Game %s: %d events\n", a.GameID, len(entries))
	for _, e := range entries {
		fmt.Fprintf(w, "  %4d  %-13s victim P%d  start %d", e.Seq, e.Kind, e.VictimIndex+1, e.StartFrame)
		if e.EndFrame != nil {
			fmt.Fprintf(w, "  end %d", *e.EndFrame)
		}
		fmt.Fprintf(w, "  moves %d\n", e.Moves)
	}
	return nil
}

func traceEntry(ev combo.Event) TraceEntry {
	e := TraceEntry{
		Seq:  ev.Seq,
		Kind: ev.Kind.String(),
	}
	if ev.Combo != nil {
		e.VictimIndex = ev.Combo.VictimIndex
		e.StartFrame = ev.Combo.StartFrame
		e.EndFrame = ev.Combo.EndFrame
		e.Moves = len(ev.Combo.Moves)
	}
	return e
}
