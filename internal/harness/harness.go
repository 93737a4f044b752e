package harness

import (
	"fmt"

	"github.com/replaylab/combotrace/internal/combo"
	"github.com/replaylab/combotrace/internal/replay"
)

// Result holds the outcome of a scenario execution.
type Result struct {
	// Passed is true when every assertion held.
	Passed bool

	// Failures lists assertion failure messages. Empty when Passed.
	Failures []string

	// Combos are the detected combos in opening order, open and closed.
	Combos []*combo.Combo

	// Trace is the published event trace in sequence order.
	Trace []TraceEvent
}

// TraceEvent is one published lifecycle event, flattened for assertions
// and golden snapshots.
type TraceEvent struct {
	Seq         int64   `json:"seq"`
	Kind        string  `json:"kind"`
	VictimIndex int     `json:"victim_index"`
	StartFrame  int32   `json:"start_frame"`
	EndFrame    *int32  `json:"end_frame,omitempty"`
	Moves       int     `json:"moves"`
	TotalDamage float64 `json:"total_damage"`
}

// Run executes a scenario and returns the result.
//
// Each scenario runs a fresh engine with a fixed game ID (the scenario
// name), so repeated runs produce identical combos and traces.
func Run(scenario *Scenario) (*Result, error) {
	if scenario == nil {
		return nil, fmt.Errorf("scenario is nil")
	}

	opts := []combo.Option{
		combo.WithIDGenerator(combo.NewFixedGenerator(scenario.Name)),
	}
	if scenario.ResetFrames > 0 {
		opts = append(opts, combo.WithResetFrames(scenario.ResetFrames))
	}
	eng := combo.New(opts...)

	result := &Result{}
	eng.Subscribe(combo.SubscriberFunc(func(ev combo.Event) {
		result.Trace = append(result.Trace, traceEvent(ev))
	}))

	file := scenario.buildFile()
	eng.Setup(file.Settings)

	index := replay.NewFrameIndex()
	for _, frame := range file.Frames {
		index.Add(frame)
		if err := eng.ProcessFrame(frame, index); err != nil {
			return nil, fmt.Errorf("scenario %q: process frame %d: %w", scenario.Name, frame.Number, err)
		}
	}

	result.Combos = eng.Fetch()
	evaluateAssertions(scenario, result)
	return result, nil
}

// traceEvent flattens a lifecycle event for the trace.
func traceEvent(ev combo.Event) TraceEvent {
	te := TraceEvent{
		Seq:  ev.Seq,
		Kind: ev.Kind.String(),
	}
	if ev.Combo != nil {
		te.VictimIndex = ev.Combo.VictimIndex
		te.StartFrame = ev.Combo.StartFrame
		te.EndFrame = ev.Combo.EndFrame
		te.Moves = len(ev.Combo.Moves)
		te.TotalDamage = ev.Combo.TotalDamage()
	}
	return te
}
