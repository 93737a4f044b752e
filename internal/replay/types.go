package replay

import (
	"golang.org/x/text/unicode/norm"

	"github.com/replaylab/combotrace/internal/melee"
)

// PlayerFrame is one player's post-frame snapshot at one frame.
//
// Pointer fields are optional: legacy recordings omit them. Use the
// *OrZero accessors to apply the documented default substitutions.
type PlayerFrame struct {
	FrameNumber int32 `json:"frame"`
	PlayerIndex int   `json:"player_index"`

	ActionStateID melee.ActionStateID `json:"action_state_id"`

	// ActionStateCounter counts frames elapsed in the current action
	// state. Nil for legacy recordings; treated as 0.
	ActionStateCounter *float64 `json:"action_state_counter,omitempty"`

	// Percent is the cumulative damage counter. Nil for legacy
	// recordings; treated as 0.
	Percent *float64 `json:"percent,omitempty"`

	// StocksRemaining is the player's remaining stock count.
	StocksRemaining *int `json:"stocks_remaining,omitempty"`

	// LastHitBy is the slot index of the last player to hit this one.
	LastHitBy *int `json:"last_hit_by,omitempty"`

	// LastAttackLanded is the move id of this player's last landed attack.
	LastAttackLanded *int `json:"last_attack_landed,omitempty"`
}

// PercentOrZero returns the damage percent, substituting 0 when absent.
func (p *PlayerFrame) PercentOrZero() float64 {
	if p == nil || p.Percent == nil {
		return 0
	}
	return *p.Percent
}

// CounterOrZero returns the action-state counter, substituting 0 when
// absent. With both counters absent the "counter decreased" comparison
// degrades to always-false, which is the accepted legacy behavior.
func (p *PlayerFrame) CounterOrZero() float64 {
	if p == nil || p.ActionStateCounter == nil {
		return 0
	}
	return *p.ActionStateCounter
}

// DidLoseStock reports whether the player lost a stock between prev and
// cur. False when either snapshot or stock count is unavailable.
func DidLoseStock(cur, prev *PlayerFrame) bool {
	if cur == nil || prev == nil || cur.StocksRemaining == nil || prev.StocksRemaining == nil {
		return false
	}
	return *prev.StocksRemaining > *cur.StocksRemaining
}

// Frame is one frame of the match: the frame number plus the snapshot of
// every occupied player slot. Slots may be absent mid-match (e.g. a
// disconnected player).
type Frame struct {
	Number  int32                `json:"frame"`
	Players map[int]*PlayerFrame `json:"players"`
}

// Player returns the snapshot for a slot, or nil if the slot is absent.
func (f *Frame) Player(index int) *PlayerFrame {
	if f == nil {
		return nil
	}
	return f.Players[index]
}

// PlayerType distinguishes occupied and empty ports in the settings.
type PlayerType int

// Player types as recorded in match settings.
const (
	PlayerHuman PlayerType = 0
	PlayerCPU   PlayerType = 1
	PlayerDemo  PlayerType = 2
	PlayerEmpty PlayerType = 3
)

// PlayerInfo describes one port in the match settings.
type PlayerInfo struct {
	Index       int        `json:"index"`
	Port        int        `json:"port"`
	CharacterID int        `json:"character_id"`
	TeamID      int        `json:"team_id"`
	NameTag     string     `json:"name_tag,omitempty"`
	Type        PlayerType `json:"type"`
}

// GameSettings describes the match being analyzed. The combo engine
// treats it as opaque beyond permutation resolution; it is echoed in
// emitted event payloads.
type GameSettings struct {
	StageID int          `json:"stage_id"`
	IsTeams bool         `json:"is_teams"`
	Players []PlayerInfo `json:"players"`
}

// ActivePlayers returns the occupied ports in index order.
func (s *GameSettings) ActivePlayers() []PlayerInfo {
	var active []PlayerInfo
	for _, p := range s.Players {
		if p.Type != PlayerEmpty {
			active = append(active, p)
		}
	}
	return active
}

// NormalizeTags applies Unicode NFKC normalization to all player name
// tags in place. In-game tags are entered with full-width characters;
// normalizing makes them comparable with ASCII input.
func (s *GameSettings) NormalizeTags() {
	for i := range s.Players {
		s.Players[i].NameTag = norm.NFKC.String(s.Players[i].NameTag)
	}
}
