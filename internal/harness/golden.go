package harness

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// Serialized with fixed field order for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	GameID       string       `json:"game_id"`
	Trace        []TraceEvent `json:"trace"`
}

// RunWithGolden executes a scenario and compares the trace against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if scenario execution fails or an assertion does not
// hold. Test failure (via goldie) occurs if the trace doesn't match the
// golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	if !result.Passed {
		return fmt.Errorf("scenario %q failed: %v", scenario.Name, result.Failures)
	}

	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		GameID:       scenario.Name,
		Trace:        result.Trace,
	}
	if snapshot.Trace == nil {
		snapshot.Trace = []TraceEvent{}
	}

	traceJSON, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal trace snapshot: %w", err)
	}
	traceJSON = append(traceJSON, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)

	return nil
}
