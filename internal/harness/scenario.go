package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/replaylab/combotrace/internal/melee"
	"github.com/replaylab/combotrace/internal/replay"
	"github.com/replaylab/combotrace/internal/testutil"
)

// Scenario defines a combo detection test scenario.
// Scenarios script a synthetic match frame by frame and assert on the
// detected combos and the published event trace.
type Scenario struct {
	// Name uniquely identifies this scenario. Also used as the fixed
	// game ID and the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Players is the number of human players, occupying slots 0..n-1.
	Players int `yaml:"players"`

	// Teams optionally assigns a team ID per slot, turning the match
	// into a team game. Keys are slot indices.
	Teams map[int]int `yaml:"teams,omitempty"`

	// StartFrame is the first frame number. Defaults to the engine
	// start frame (-123) when nil; scripts that don't care about the
	// countdown usually set it to 0.
	StartFrame *int32 `yaml:"start_frame,omitempty"`

	// ResetFrames overrides the combo string reset window.
	// Zero means the default window (45 frames).
	ResetFrames int `yaml:"reset_frames,omitempty"`

	// Script is the frame-by-frame match script.
	Script []ScriptStep `yaml:"script"`

	// Assertions validate the detected combos and event trace.
	// Supported types: combo_count, event_order, combo
	Assertions []Assertion `yaml:"assertions"`
}

// ScriptStep emits one or more identical frames.
type ScriptStep struct {
	// Repeat is how many frames this step emits. Zero means one.
	Repeat int `yaml:"repeat,omitempty"`

	// Players maps slot index to that player's snapshot for the frame.
	// Slots not listed are absent from the frame, which exercises the
	// engine's degraded-data handling.
	Players map[int]*PlayerStep `yaml:"players"`
}

// PlayerStep is one player's scripted snapshot. Optional fields stay
// absent from the built frame when omitted, mirroring legacy recordings.
type PlayerStep struct {
	// State is the action state ID, in decimal.
	State uint16 `yaml:"state"`

	Percent    *float64 `yaml:"percent,omitempty"`
	Counter    *float64 `yaml:"counter,omitempty"`
	Stocks     *int     `yaml:"stocks,omitempty"`
	LastHitBy  *int     `yaml:"last_hit_by,omitempty"`
	LastAttack *int     `yaml:"last_attack,omitempty"`
}

// Assertion validates detection output.
type Assertion struct {
	// Type specifies the assertion type:
	// - "combo_count": Check the total number of detected combos
	// - "event_order": Check the published event kinds in order
	// - "combo": Check fields of the combo at Index
	Type string `yaml:"type"`

	// Count is the expected number of combos (combo_count).
	Count int `yaml:"count,omitempty"`

	// Events is the expected event kind sequence (event_order),
	// e.g. [combo-start, combo-extend, combo-end].
	Events []string `yaml:"events,omitempty"`

	// Index selects the combo to check (combo). Combos are indexed in
	// the order they were opened.
	Index int `yaml:"index,omitempty"`

	// Per-field expectations for the selected combo. Each is a subset
	// match - omitted fields are not validated.
	VictimIndex  *int     `yaml:"victim_index,omitempty"`
	StartFrame   *int32   `yaml:"start_frame,omitempty"`
	EndFrame     *int32   `yaml:"end_frame,omitempty"`
	EndPercent   *float64 `yaml:"end_percent,omitempty"`
	DidKill      *bool    `yaml:"did_kill,omitempty"`
	Open         *bool    `yaml:"open,omitempty"`
	MoveCount    *int     `yaml:"move_count,omitempty"`
	TotalDamage  *float64 `yaml:"total_damage,omitempty"`
}

// Assertion type constants.
const (
	AssertComboCount = "combo_count"
	AssertEventOrder = "event_order"
	AssertCombo      = "combo"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like
	// "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Players < 2 {
		return fmt.Errorf("players must be at least 2")
	}

	if len(s.Script) == 0 {
		return fmt.Errorf("script list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Script {
		if step.Repeat < 0 {
			return fmt.Errorf("script[%d]: repeat must be non-negative", i)
		}
		for slot := range step.Players {
			if slot < 0 || slot >= s.Players {
				return fmt.Errorf("script[%d]: slot %d out of range for %d players", i, slot, s.Players)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertComboCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for combo_count", index)
		}
	case AssertEventOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for event_order", index)
		}
	case AssertCombo:
		if a.Index < 0 {
			return fmt.Errorf("assertions[%d]: index must be non-negative for combo", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// startFrame returns the scripted start frame, defaulting to the match
// countdown start.
func (s *Scenario) startFrame() int32 {
	if s.StartFrame != nil {
		return *s.StartFrame
	}
	return melee.FirstFrame
}

// buildFile assembles the scenario script into a decoded replay.
func (s *Scenario) buildFile() *replay.File {
	b := testutil.NewGameBuilder(s.Players, s.startFrame())
	if len(s.Teams) > 0 {
		b.SetTeams(s.Teams)
	}

	for _, step := range s.Script {
		repeat := step.Repeat
		if repeat <= 0 {
			repeat = 1
		}
		for i := 0; i < repeat; i++ {
			// Fresh snapshots per frame: the builder stamps frame
			// numbers into them.
			snaps := make(map[int]*replay.PlayerFrame, len(step.Players))
			for slot, ps := range step.Players {
				if ps == nil {
					continue
				}
				snaps[slot] = ps.snapshot()
			}
			b.AddFrame(snaps)
		}
	}
	return b.File()
}

// snapshot converts a scripted player step into a frame snapshot.
func (ps *PlayerStep) snapshot() *replay.PlayerFrame {
	var opts []testutil.SnapOption
	if ps.Percent != nil {
		opts = append(opts, testutil.WithPercent(*ps.Percent))
	}
	if ps.Counter != nil {
		opts = append(opts, testutil.WithCounter(*ps.Counter))
	}
	if ps.Stocks != nil {
		opts = append(opts, testutil.WithStocks(*ps.Stocks))
	}
	if ps.LastHitBy != nil {
		opts = append(opts, testutil.WithLastHitBy(*ps.LastHitBy))
	}
	if ps.LastAttack != nil {
		opts = append(opts, testutil.WithLastAttack(*ps.LastAttack))
	}
	return testutil.Player(melee.ActionStateID(ps.State), opts...)
}
