package replay

import "fmt"

// PlayerPermutation is one tracked (victim, opponent) perspective. The
// engine evaluates each permutation independently; multiple permutations
// may share a PlayerIndex (free-for-all) but never share mutable state.
type PlayerPermutation struct {
	// PlayerIndex is the candidate victim's slot.
	PlayerIndex int `json:"player_index"`

	// OpponentIndex is the attacker slot this permutation attributes to.
	OpponentIndex int `json:"opponent_index"`

	// OpponentIndices is the full set of slots considered opponents of
	// the victim (all enemy slots in teams/free-for-all).
	OpponentIndices []int `json:"opponent_indices,omitempty"`
}

// Key returns a stable identifier with structural equality semantics,
// suitable for keying per-permutation state. Two permutations with the
// same victim and opponent are the same permutation.
func (p PlayerPermutation) Key() string {
	return fmt.Sprintf("%d:%d", p.PlayerIndex, p.OpponentIndex)
}

// Permutations derives the tracked perspectives from match settings.
//
//   - Singles and free-for-all: every ordered (victim, opponent) pair.
//   - Teams: every ordered (victim, cross-team opponent) pair.
//
// OpponentIndices carries the victim's full enemy set regardless of
// which single opponent the permutation attributes to. Fewer than two
// active players yields an empty set.
func Permutations(settings *GameSettings) []PlayerPermutation {
	if settings == nil {
		return nil
	}
	active := settings.ActivePlayers()
	if len(active) < 2 {
		return nil
	}

	var perms []PlayerPermutation
	for _, victim := range active {
		var opponents []int
		for _, opp := range active {
			if opp.Index == victim.Index {
				continue
			}
			if settings.IsTeams && opp.TeamID == victim.TeamID {
				continue
			}
			opponents = append(opponents, opp.Index)
		}
		for _, oppIndex := range opponents {
			perms = append(perms, PlayerPermutation{
				PlayerIndex:     victim.Index,
				OpponentIndex:   oppIndex,
				OpponentIndices: opponents,
			})
		}
	}
	return perms
}
