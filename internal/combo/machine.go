package combo

import (
	"github.com/replaylab/combotrace/internal/melee"
	"github.com/replaylab/combotrace/internal/replay"
)

// advance runs one state-machine transition for one permutation against
// the newly delivered frame.
//
// The transition needs the previous frame to compute a damage delta; if
// it has not been delivered (the very first frame of a recording) the
// machine deliberately does nothing. Likewise a victim slot absent from
// the frame is skipped, not an error - slots disappear mid-match when a
// player disconnects.
//
// combos is the engine's shared append-only list; an opened combo is
// appended immediately so Fetch observes it while still open.
func advance(
	perm replay.PlayerPermutation,
	st *machineState,
	frame *replay.Frame,
	index *replay.FrameIndex,
	combos *[]*Combo,
	resetFrames int,
) {
	prevFrame, ok := index.Frame(frame.Number - 1)
	if !ok {
		return
	}

	playerFrame := frame.Player(perm.PlayerIndex)
	if playerFrame == nil {
		return
	}
	prevPlayerFrame := prevFrame.Player(perm.PlayerIndex)

	// Classify the victim's condition on this frame.
	state := playerFrame.ActionStateID
	isDamaged := melee.IsDamaged(state)
	isGrabbed := melee.IsGrabbed(state)
	isCommandGrabbed := melee.IsCommandGrabbed(state)
	isTeching := melee.IsTeching(state)
	isDown := melee.IsDown(state)
	isDying := melee.IsDead(state)

	// Damage delta. Without a usable previous snapshot there is no
	// delta; percent reductions (healing, stock resets) clamp to 0.
	var damageTaken float64
	if prevPlayerFrame != nil {
		damageTaken = playerFrame.PercentOrZero() - prevPlayerFrame.PercentOrZero()
		if damageTaken < 0 {
			damageTaken = 0
		}
	}

	// Multi-hit deduplication. Raw frames only expose the attacker's
	// current action state, so lastHitAnimation distinguishes "the same
	// attack is still connecting" from "a new attack landed". A cleared
	// lastHitAnimation means the next damaging frame begins a new Move.
	//
	// The animation counter catches an attacker restarting the same
	// state (two fast jabs): the counter drops back down even though
	// the action state id never changed. Legacy recordings have no
	// counters; both sides substitute 0 and the check degrades to
	// always-false, leaving detection to the id comparison alone.
	attacker := playerFrame.LastHitBy
	var attackerFrame, prevAttackerFrame *replay.PlayerFrame
	if attacker != nil {
		attackerFrame = frame.Player(*attacker)
		prevAttackerFrame = prevFrame.Player(*attacker)
	}
	if attackerFrame == nil {
		st.lastHitAnimation = nil
	} else if st.lastHitAnimation == nil ||
		*st.lastHitAnimation != attackerFrame.ActionStateID ||
		attackerFrame.CounterOrZero() < prevAttackerFrame.CounterOrZero() {
		st.lastHitAnimation = nil
	}

	comboOpened := false
	if isDamaged || isGrabbed || isCommandGrabbed {
		if st.combo == nil {
			st.combo = &Combo{
				VictimIndex:    perm.PlayerIndex,
				StartFrame:     frame.Number,
				StartPercent:   prevPlayerFrame.PercentOrZero(),
				CurrentPercent: prevPlayerFrame.PercentOrZero(),
				LastHitBy:      playerFrame.LastHitBy,
			}
			*combos = append(*combos, st.combo)
			comboOpened = true
		}

		if damageTaken > 0 {
			if st.lastHitAnimation == nil {
				// Unknown-attacker fallback: without the attacker's
				// snapshot the move is attributed to the victim's own
				// index. A known approximation, kept as-is.
				attackerIndex := perm.PlayerIndex
				moveID := 0
				if attacker != nil && attackerFrame != nil {
					attackerIndex = *attacker
					if attackerFrame.LastAttackLanded != nil {
						moveID = *attackerFrame.LastAttackLanded
					}
				}
				st.move = &Move{
					AttackerIndex: attackerIndex,
					FrameNumber:   frame.Number,
					MoveID:        moveID,
				}
				st.combo.Moves = append(st.combo.Moves, st.move)

				// Opening already implies a move is present, so the
				// founding hit does not also signal an extend.
				if !comboOpened {
					st.event = EventComboExtend
					st.eventCombo = st.combo
				}
			}

			if st.move != nil {
				st.move.HitCount++
				st.move.Damage += damageTaken
			}

			// On a trade both players land hits in the same exchange;
			// the attacker's previous-frame state is the move that
			// actually connected, so that is what we remember.
			if prevAttackerFrame != nil {
				anim := prevAttackerFrame.ActionStateID
				st.lastHitAnimation = &anim
			} else {
				st.lastHitAnimation = nil
			}
		}

		if comboOpened {
			st.event = EventComboStart
			st.eventCombo = st.combo
		}
	}

	if st.combo == nil {
		return
	}

	// Percent is intentionally not sampled on the stock-loss frame:
	// percent resets to 0 on a new stock and that reset must not be
	// recorded as a percent change.
	lostStock := replay.DidLoseStock(playerFrame, prevPlayerFrame)
	if !lostStock {
		st.combo.CurrentPercent = playerFrame.PercentOrZero()
	}

	if isDamaged || isGrabbed || isCommandGrabbed || isTeching || isDown || isDying {
		st.resetCounter = 0
	} else {
		st.resetCounter++
	}

	shouldClose := lostStock || st.resetCounter > resetFrames
	if lostStock {
		st.combo.DidKill = true
	}

	if shouldClose {
		endFrame := frame.Number
		endPercent := prevPlayerFrame.PercentOrZero()
		st.combo.EndFrame = &endFrame
		st.combo.EndPercent = &endPercent
		st.event = EventComboEnd
		st.eventCombo = st.combo
		st.combo = nil
		st.move = nil
	}
}
