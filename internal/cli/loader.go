package cli

import (
	"github.com/replaylab/combotrace/internal/combo"
	"github.com/replaylab/combotrace/internal/replay"
)

// analysis holds the output of running detection over one replay file.
type analysis struct {
	GameID   string
	Settings *replay.GameSettings
	Combos   []*combo.Combo

	// Trace is flattened at publish time: events reference live combos,
	// so snapshotting afterwards would see the closed state on every
	// entry.
	Trace []TraceEntry
}

// analyzeReplay loads a replay file and runs combo detection over it,
// collecting the detected combos and the full event trace.
//
// Load and validation failures are command errors (exit code 2): the
// engine itself degrades gracefully on missing data, so a processing
// error here means the input file is structurally broken.
func analyzeReplay(path string) (*analysis, error) {
	file, err := replay.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load replay", err)
	}

	a := &analysis{}
	eng := combo.New()
	eng.Subscribe(combo.SubscriberFunc(func(ev combo.Event) {
		a.Trace = append(a.Trace, traceEntry(ev))
	}))

	if err := eng.ProcessReplay(file); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to process replay", err)
	}

	a.GameID = eng.GameID()
	a.Settings = file.Settings
	a.Combos = eng.Fetch()
	return a, nil
}
