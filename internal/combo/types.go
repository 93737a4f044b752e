package combo

import "github.com/replaylab/combotrace/internal/melee"

// Move is one attack landing within a combo. HitCount and Damage keep
// accumulating while the same move is judged to still be connecting
// (multi-hit moves such as drills count as one Move).
type Move struct {
	// AttackerIndex is the slot of the player who landed the move. When
	// the attacker's snapshot is unavailable this falls back to the
	// victim's own index as an unknown-attacker placeholder.
	AttackerIndex int `json:"attacker_index"`

	// FrameNumber is the frame the move first connected.
	FrameNumber int32 `json:"frame"`

	// MoveID is the attacker's last-attack-landed identifier, 0 when
	// unavailable.
	MoveID int `json:"move_id"`

	HitCount int     `json:"hit_count"`
	Damage   float64 `json:"damage"`
}

// Combo is one string of connected attacks against a single victim.
//
// A combo is created open (EndFrame nil) and closed exactly once by
// setting EndFrame, EndPercent, and DidKill. After closing, the engine
// never mutates it again.
type Combo struct {
	VictimIndex int `json:"victim_index"`

	StartFrame int32  `json:"start_frame"`
	EndFrame   *int32 `json:"end_frame,omitempty"`

	// StartPercent is the victim's percent on the frame before the
	// combo opened. CurrentPercent tracks the victim's percent as the
	// combo progresses; EndPercent is fixed at close.
	StartPercent   float64  `json:"start_percent"`
	CurrentPercent float64  `json:"current_percent"`
	EndPercent     *float64 `json:"end_percent,omitempty"`

	// Moves is append-only with non-decreasing frame numbers.
	Moves []*Move `json:"moves"`

	// DidKill is true when the combo ended with the victim losing a stock.
	DidKill bool `json:"did_kill"`

	// LastHitBy is the victim's last-hit-by slot on the opening frame.
	LastHitBy *int `json:"last_hit_by,omitempty"`
}

// IsOpen reports whether the combo has not been closed yet.
func (c *Combo) IsOpen() bool {
	return c.EndFrame == nil
}

// TotalDamage sums the damage of all moves in the combo.
func (c *Combo) TotalDamage() float64 {
	var total float64
	for _, m := range c.Moves {
		total += m.Damage
	}
	return total
}

// machineState is the mutable per-permutation detection state. Owned
// exclusively by its permutation; never shared or aliased.
type machineState struct {
	// combo and move reference the currently open combo and the move
	// currently accruing hits. Both nil between combos.
	combo *Combo
	move  *Move

	// resetCounter counts consecutive frames on which the victim was
	// not vulnerable. Exceeding the reset window closes the combo.
	resetCounter int

	// lastHitAnimation is the attacker action state judged to still be
	// connecting. Nil signals that the next damaging frame begins a new
	// Move rather than extending the current one.
	lastHitAnimation *melee.ActionStateID

	// event is the pending lifecycle notification for this frame,
	// EventNone when there is nothing to publish. eventCombo is the
	// combo the event refers to; for a close it outlives the cleared
	// combo reference above.
	event      EventKind
	eventCombo *Combo
}
