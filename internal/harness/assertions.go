package harness

import (
	"fmt"

	"github.com/replaylab/combotrace/internal/combo"
)

// evaluateAssertions checks every scenario assertion against the result,
// recording failures and setting Passed.
func evaluateAssertions(scenario *Scenario, result *Result) {
	for i, a := range scenario.Assertions {
		if msg := evaluate(&a, result); msg != "" {
			result.Failures = append(result.Failures, fmt.Sprintf("assertions[%d] (%s): %s", i, a.Type, msg))
		}
	}
	result.Passed = len(result.Failures) == 0
}

// evaluate checks one assertion, returning "" on success or a failure
// message.
func evaluate(a *Assertion, result *Result) string {
	switch a.Type {
	case AssertComboCount:
		if got := len(result.Combos); got != a.Count {
			return fmt.Sprintf("expected %d combos, got %d", a.Count, got)
		}
	case AssertEventOrder:
		return checkEventOrder(a.Events, result.Trace)
	case AssertCombo:
		if a.Index >= len(result.Combos) {
			return fmt.Sprintf("combo index %d out of range (%d combos)", a.Index, len(result.Combos))
		}
		return checkCombo(a, result.Combos[a.Index])
	}
	return ""
}

// checkEventOrder compares the full event kind sequence.
func checkEventOrder(want []string, trace []TraceEvent) string {
	if len(trace) != len(want) {
		return fmt.Sprintf("expected %d events, got %d", len(want), len(trace))
	}
	for i, kind := range want {
		if trace[i].Kind != kind {
			return fmt.Sprintf("event %d: expected kind %q, got %q", i, kind, trace[i].Kind)
		}
	}
	return ""
}

// checkCombo compares the specified fields of one combo. Omitted fields
// are not validated.
func checkCombo(a *Assertion, c *combo.Combo) string {
	if a.VictimIndex != nil && c.VictimIndex != *a.VictimIndex {
		return fmt.Sprintf("expected victim %d, got %d", *a.VictimIndex, c.VictimIndex)
	}
	if a.StartFrame != nil && c.StartFrame != *a.StartFrame {
		return fmt.Sprintf("expected start frame %d, got %d", *a.StartFrame, c.StartFrame)
	}
	if a.EndFrame != nil {
		if c.EndFrame == nil {
			return fmt.Sprintf("expected end frame %d, combo is open", *a.EndFrame)
		}
		if *c.EndFrame != *a.EndFrame {
			return fmt.Sprintf("expected end frame %d, got %d", *a.EndFrame, *c.EndFrame)
		}
	}
	if a.EndPercent != nil {
		if c.EndPercent == nil {
			return fmt.Sprintf("expected end percent %v, combo is open", *a.EndPercent)
		}
		if *c.EndPercent != *a.EndPercent {
			return fmt.Sprintf("expected end percent %v, got %v", *a.EndPercent, *c.EndPercent)
		}
	}
	if a.DidKill != nil && c.DidKill != *a.DidKill {
		return fmt.Sprintf("expected did_kill %v, got %v", *a.DidKill, c.DidKill)
	}
	if a.Open != nil && c.IsOpen() != *a.Open {
		return fmt.Sprintf("expected open %v, got %v", *a.Open, c.IsOpen())
	}
	if a.MoveCount != nil && len(c.Moves) != *a.MoveCount {
		return fmt.Sprintf("expected %d moves, got %d", *a.MoveCount, len(c.Moves))
	}
	if a.TotalDamage != nil && c.TotalDamage() != *a.TotalDamage {
		return fmt.Sprintf("expected total damage %v, got %v", *a.TotalDamage, c.TotalDamage())
	}
	return ""
}
