package combo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replaylab/combotrace/internal/melee"
	"github.com/replaylab/combotrace/internal/replay"
	"github.com/replaylab/combotrace/internal/testutil"
)

// Common action states used in scripted frames.
const (
	stateWait    melee.ActionStateID = 0x00E
	stateAttack  melee.ActionStateID = 0x02F
	stateAttack2 melee.ActionStateID = 0x030
	stateHitstun melee.ActionStateID = 0x04B
	stateGrabbed melee.ActionStateID = 0x0E0
	stateTech    melee.ActionStateID = 0x0C8
	stateDead    melee.ActionStateID = 0x000
)

// runMachine feeds frames through a single permutation's machine,
// collecting the combos list and the per-frame pending events.
func runMachine(frames []*replay.Frame, perm replay.PlayerPermutation, resetFrames int) ([]*Combo, []EventKind) {
	st := &machineState{}
	index := replay.NewFrameIndex()
	var combos []*Combo
	var events []EventKind
	for _, f := range frames {
		index.Add(f)
		advance(perm, st, f, index, &combos, resetFrames)
		if st.event != EventNone {
			events = append(events, st.event)
			st.event = EventNone
			st.eventCombo = nil
		}
	}
	return combos, events
}

func victimVsAttacker() replay.PlayerPermutation {
	return replay.PlayerPermutation{PlayerIndex: 0, OpponentIndex: 1, OpponentIndices: []int{1}}
}

func TestAdvance_NoPreviousFrame_NoOp(t *testing.T) {
	b := testutil.NewGameBuilder(2, 100)
	// Damaged on the very first frame of the recording: no delta can be
	// computed, so nothing happens.
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateHitstun, testutil.WithPercent(10), testutil.WithLastHitBy(1)),
		1: testutil.Player(stateAttack),
	})

	combos, events := runMachine(b.Frames(), victimVsAttacker(), melee.ComboStringResetFrames)
	assert.Empty(t, combos)
	assert.Empty(t, events)
}

func TestAdvance_ComboOpenAndCloseByTimeout(t *testing.T) {
	// Scenario: victim takes 20% over frames 100-102, then goes
	// untouched. The combo must close once the non-vulnerable streak
	// exceeds the reset window.
	b := testutil.NewGameBuilder(2, 98)
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateWait, testutil.WithPercent(0), testutil.WithStocks(4)),
		1: testutil.Player(stateWait, testutil.WithStocks(4)),
	})
	// Attacker starts the move one frame before it connects.
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateWait, testutil.WithPercent(0), testutil.WithStocks(4)),
		1: testutil.Player(stateAttack, testutil.WithCounter(0), testutil.WithStocks(4)),
	})
	damage := []float64{5, 12, 20}
	for i, percent := range damage {
		b.AddFrame(map[int]*replay.PlayerFrame{
			0: testutil.Player(stateHitstun, testutil.WithPercent(percent), testutil.WithStocks(4), testutil.WithLastHitBy(1)),
			1: testutil.Player(stateAttack, testutil.WithCounter(float64(i+1)), testutil.WithStocks(4), testutil.WithLastAttack(17)),
		})
	}
	// Hitstun continues without further damage through frame 105.
	for i := 0; i < 3; i++ {
		b.AddFrame(map[int]*replay.PlayerFrame{
			0: testutil.Player(stateHitstun, testutil.WithPercent(20), testutil.WithStocks(4), testutil.WithLastHitBy(1)),
			1: testutil.Player(stateWait, testutil.WithStocks(4)),
		})
	}
	// Non-vulnerable frames 106..151: the 46th exceeds the 45-frame window.
	for i := 0; i < melee.ComboStringResetFrames+1; i++ {
		b.AddFrame(map[int]*replay.PlayerFrame{
			0: testutil.Player(stateWait, testutil.WithPercent(20), testutil.WithStocks(4)),
			1: testutil.Player(stateWait, testutil.WithStocks(4)),
		})
	}

	combos, events := runMachine(b.Frames(), victimVsAttacker(), melee.ComboStringResetFrames)

	require.Len(t, combos, 1)
	c := combos[0]
	assert.Equal(t, 0, c.VictimIndex)
	assert.Equal(t, int32(100), c.StartFrame)
	assert.Equal(t, float64(0), c.StartPercent)
	require.NotNil(t, c.EndFrame)
	assert.Equal(t, int32(106+melee.ComboStringResetFrames), *c.EndFrame)
	require.NotNil(t, c.EndPercent)
	assert.Equal(t, float64(20), *c.EndPercent)
	assert.False(t, c.DidKill)
	assert.Equal(t, float64(20), c.CurrentPercent)

	// One continuous multi-hit: a single move accrues all three hits.
	require.Len(t, c.Moves, 1)
	m := c.Moves[0]
	assert.Equal(t, 1, m.AttackerIndex)
	assert.Equal(t, int32(100), m.FrameNumber)
	assert.Equal(t, 17, m.MoveID)
	assert.Equal(t, 3, m.HitCount)
	assert.Equal(t, float64(20), m.Damage)

	assert.Equal(t, []EventKind{EventComboStart, EventComboEnd}, events)
}

func TestAdvance_KillClosesCombo(t *testing.T) {
	// Scenario: the victim dies on frame 150 with 85% on the prior frame.
	b := testutil.NewGameBuilder(2, 146)
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateWait, testutil.WithPercent(80), testutil.WithStocks(4)),
		1: testutil.Player(stateWait, testutil.WithStocks(4)),
	})
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateWait, testutil.WithPercent(80), testutil.WithStocks(4)),
		1: testutil.Player(stateAttack, testutil.WithCounter(0), testutil.WithStocks(4)),
	})
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateHitstun, testutil.WithPercent(85), testutil.WithStocks(4), testutil.WithLastHitBy(1)),
		1: testutil.Player(stateAttack, testutil.WithCounter(1), testutil.WithStocks(4), testutil.WithLastAttack(21)),
	})
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateHitstun, testutil.WithPercent(85), testutil.WithStocks(4), testutil.WithLastHitBy(1)),
		1: testutil.Player(stateWait, testutil.WithStocks(4)),
	})
	// Frame 150: stock lost, percent reset to 0 by the game.
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateDead, testutil.WithPercent(0), testutil.WithStocks(3), testutil.WithLastHitBy(1)),
		1: testutil.Player(stateWait, testutil.WithStocks(4)),
	})

	combos, events := runMachine(b.Frames(), victimVsAttacker(), melee.ComboStringResetFrames)

	require.Len(t, combos, 1)
	c := combos[0]
	assert.True(t, c.DidKill)
	require.NotNil(t, c.EndFrame)
	assert.Equal(t, int32(150), *c.EndFrame)
	require.NotNil(t, c.EndPercent)
	assert.Equal(t, float64(85), *c.EndPercent)
	// Percent is not sampled on the stock-loss frame itself.
	assert.Equal(t, float64(85), c.CurrentPercent)

	assert.Equal(t, []EventKind{EventComboStart, EventComboEnd}, events)
}

func TestAdvance_MultiHitMoveCountedOnce(t *testing.T) {
	// Scenario: attacker's state and counter stay constant across four
	// damaging frames (a drill-style multi-hit). One Move, four hits.
	b := testutil.NewGameBuilder(2, 8)
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateWait, testutil.WithPercent(0)),
		1: testutil.Player(stateWait),
	})
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateWait, testutil.WithPercent(0)),
		1: testutil.Player(stateAttack, testutil.WithCounter(5)),
	})
	for i := 1; i <= 4; i++ {
		b.AddFrame(map[int]*replay.PlayerFrame{
			0: testutil.Player(stateHitstun, testutil.WithPercent(float64(2*i)), testutil.WithLastHitBy(1)),
			1: testutil.Player(stateAttack, testutil.WithCounter(5), testutil.WithLastAttack(3)),
		})
	}

	combos, events := runMachine(b.Frames(), victimVsAttacker(), melee.ComboStringResetFrames)

	require.Len(t, combos, 1)
	require.Len(t, combos[0].Moves, 1)
	m := combos[0].Moves[0]
	assert.Equal(t, 4, m.HitCount)
	assert.Equal(t, float64(8), m.Damage)
	assert.Equal(t, []EventKind{EventComboStart}, events)
}

func TestAdvance_NewMoveAfterAnimationChange(t *testing.T) {
	// Scenario: the attacker's animation changes between two damaging
	// frames - two distinct Moves, the second raising an extend.
	b := testutil.NewGameBuilder(2, 8)
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateWait, testutil.WithPercent(0)),
		1: testutil.Player(stateWait),
	})
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateWait, testutil.WithPercent(0)),
		1: testutil.Player(stateAttack, testutil.WithCounter(0)),
	})
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateHitstun, testutil.WithPercent(5), testutil.WithLastHitBy(1)),
		1: testutil.Player(stateAttack, testutil.WithCounter(1), testutil.WithLastAttack(17)),
	})
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateHitstun, testutil.WithPercent(5), testutil.WithLastHitBy(1)),
		1: testutil.Player(stateAttack2, testutil.WithCounter(0)),
	})
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateHitstun, testutil.WithPercent(9), testutil.WithLastHitBy(1)),
		1: testutil.Player(stateAttack2, testutil.WithCounter(1), testutil.WithLastAttack(18)),
	})

	combos, events := runMachine(b.Frames(), victimVsAttacker(), melee.ComboStringResetFrames)

	require.Len(t, combos, 1)
	require.Len(t, combos[0].Moves, 2)
	assert.Equal(t, 17, combos[0].Moves[0].MoveID)
	assert.Equal(t, 18, combos[0].Moves[1].MoveID)
	assert.Equal(t, []EventKind{EventComboStart, EventComboExtend}, events)
}

func TestAdvance_CounterResetDetectsFreshUseOfSameMove(t *testing.T) {
	// Two fast uses of the same move: the action state never changes,
	// but the per-state counter drops back down. That restart splits
	// the hits into two Moves.
	b := testutil.NewGameBuilder(2, 8)
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateWait, testutil.WithPercent(0)),
		1: testutil.Player(stateWait),
	})
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateWait, testutil.WithPercent(0)),
		1: testutil.Player(stateAttack, testutil.WithCounter(4)),
	})
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateHitstun, testutil.WithPercent(5), testutil.WithLastHitBy(1)),
		1: testutil.Player(stateAttack, testutil.WithCounter(5), testutil.WithLastAttack(2)),
	})
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateHitstun, testutil.WithPercent(5), testutil.WithLastHitBy(1)),
		1: testutil.Player(stateAttack, testutil.WithCounter(6)),
	})
	// Same state, counter restarted: a fresh use of the move.
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateHitstun, testutil.WithPercent(10), testutil.WithLastHitBy(1)),
		1: testutil.Player(stateAttack, testutil.WithCounter(0), testutil.WithLastAttack(2)),
	})

	combos, events := runMachine(b.Frames(), victimVsAttacker(), melee.ComboStringResetFrames)

	require.Len(t, combos, 1)
	assert.Len(t, combos[0].Moves, 2)
	assert.Equal(t, []EventKind{EventComboStart, EventComboExtend}, events)
}

func TestAdvance_LegacyDataWithoutCounters(t *testing.T) {
	// Legacy recordings carry no animation counters. Both sides
	// substitute 0, the restart check degrades to always-false, and two
	// fast uses of the same move merge into one Move. Accepted
	// precision loss, not a bug.
	b := testutil.NewGameBuilder(2, 8)
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateWait, testutil.WithPercent(0)),
		1: testutil.Player(stateWait),
	})
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateWait, testutil.WithPercent(0)),
		1: testutil.Player(stateAttack),
	})
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateHitstun, testutil.WithPercent(5), testutil.WithLastHitBy(1)),
		1: testutil.Player(stateAttack, testutil.WithLastAttack(2)),
	})
	// The attacker restarted the move here; without counters the
	// machine cannot tell.
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateHitstun, testutil.WithPercent(10), testutil.WithLastHitBy(1)),
		1: testutil.Player(stateAttack, testutil.WithLastAttack(2)),
	})

	combos, _ := runMachine(b.Frames(), victimVsAttacker(), melee.ComboStringResetFrames)

	require.Len(t, combos, 1)
	require.Len(t, combos[0].Moves, 1)
	assert.Equal(t, 2, combos[0].Moves[0].HitCount)
}

func TestAdvance_UnknownAttackerFallback(t *testing.T) {
	// lastHitBy points at an unoccupied slot: moves are attributed to
	// the victim's own index as the unknown-attacker placeholder, and
	// every damaging frame begins a new move since the attacker's
	// animation can never be tracked.
	b := testutil.NewGameBuilder(2, 8)
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateWait, testutil.WithPercent(0)),
		1: testutil.Player(stateWait),
	})
	for i := 1; i <= 2; i++ {
		b.AddFrame(map[int]*replay.PlayerFrame{
			0: testutil.Player(stateHitstun, testutil.WithPercent(float64(5*i)), testutil.WithLastHitBy(3)),
			1: testutil.Player(stateWait),
		})
	}

	combos, events := runMachine(b.Frames(), victimVsAttacker(), melee.ComboStringResetFrames)

	require.Len(t, combos, 1)
	require.Len(t, combos[0].Moves, 2)
	for _, m := range combos[0].Moves {
		assert.Equal(t, 0, m.AttackerIndex, "unknown attacker falls back to victim index")
		assert.Equal(t, 0, m.MoveID)
	}
	assert.Equal(t, []EventKind{EventComboStart, EventComboExtend}, events)
}

func TestAdvance_GrabOpensComboWithoutDamage(t *testing.T) {
	b := testutil.NewGameBuilder(2, 8)
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateWait, testutil.WithPercent(0)),
		1: testutil.Player(stateWait),
	})
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateGrabbed, testutil.WithPercent(0), testutil.WithLastHitBy(1)),
		1: testutil.Player(stateWait),
	})

	combos, events := runMachine(b.Frames(), victimVsAttacker(), melee.ComboStringResetFrames)

	require.Len(t, combos, 1)
	assert.Empty(t, combos[0].Moves)
	assert.True(t, combos[0].IsOpen())
	assert.Equal(t, []EventKind{EventComboStart}, events)
}

func TestAdvance_TechingAndDownHoldResetCounter(t *testing.T) {
	// Tech and knockdown frames are vulnerable: they zero the reset
	// counter, so the close fires relative to the last vulnerable
	// frame, not the last hit.
	const resetFrames = 5

	b := testutil.NewGameBuilder(2, 8)
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateWait, testutil.WithPercent(0)),
		1: testutil.Player(stateWait),
	})
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateWait, testutil.WithPercent(0)),
		1: testutil.Player(stateAttack, testutil.WithCounter(0)),
	})
	// Frame 10: hit connects.
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateHitstun, testutil.WithPercent(8), testutil.WithLastHitBy(1)),
		1: testutil.Player(stateAttack, testutil.WithCounter(1), testutil.WithLastAttack(12)),
	})
	// Frames 11-14: victim teching, still vulnerable.
	for i := 0; i < 4; i++ {
		b.AddFrame(map[int]*replay.PlayerFrame{
			0: testutil.Player(stateTech, testutil.WithPercent(8)),
			1: testutil.Player(stateWait),
		})
	}
	// Frames 15-20: neutral; the 6th non-vulnerable frame closes.
	for i := 0; i < resetFrames+1; i++ {
		b.AddFrame(map[int]*replay.PlayerFrame{
			0: testutil.Player(stateWait, testutil.WithPercent(8)),
			1: testutil.Player(stateWait),
		})
	}

	combos, _ := runMachine(b.Frames(), victimVsAttacker(), resetFrames)

	require.Len(t, combos, 1)
	require.NotNil(t, combos[0].EndFrame)
	assert.Equal(t, int32(15+resetFrames), *combos[0].EndFrame)
}

func TestAdvance_MoveFramesNonDecreasing(t *testing.T) {
	// Invariant: moves within a combo carry non-decreasing frame numbers.
	b := testutil.NewGameBuilder(2, 8)
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateWait, testutil.WithPercent(0)),
		1: testutil.Player(stateWait),
	})
	states := []melee.ActionStateID{stateAttack, stateAttack2, stateAttack}
	percent := float64(0)
	for _, s := range states {
		b.AddFrame(map[int]*replay.PlayerFrame{
			0: testutil.Player(stateHitstun, testutil.WithPercent(percent), testutil.WithLastHitBy(1)),
			1: testutil.Player(s, testutil.WithCounter(0)),
		})
		percent += 4
		b.AddFrame(map[int]*replay.PlayerFrame{
			0: testutil.Player(stateHitstun, testutil.WithPercent(percent), testutil.WithLastHitBy(1)),
			1: testutil.Player(s, testutil.WithCounter(1), testutil.WithLastAttack(7)),
		})
	}

	combos, _ := runMachine(b.Frames(), victimVsAttacker(), melee.ComboStringResetFrames)

	require.Len(t, combos, 1)
	moves := combos[0].Moves
	require.NotEmpty(t, moves)
	for i := 1; i < len(moves); i++ {
		assert.LessOrEqual(t, moves[i-1].FrameNumber, moves[i].FrameNumber)
	}
}

func TestAdvance_ClosedComboNeverMutates(t *testing.T) {
	const resetFrames = 3

	b := testutil.NewGameBuilder(2, 8)
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateWait, testutil.WithPercent(0)),
		1: testutil.Player(stateWait),
	})
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateWait, testutil.WithPercent(0)),
		1: testutil.Player(stateAttack, testutil.WithCounter(0)),
	})
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateHitstun, testutil.WithPercent(6), testutil.WithLastHitBy(1)),
		1: testutil.Player(stateAttack, testutil.WithCounter(1), testutil.WithLastAttack(9)),
	})
	for i := 0; i < resetFrames+1; i++ {
		b.AddFrame(map[int]*replay.PlayerFrame{
			0: testutil.Player(stateWait, testutil.WithPercent(6)),
			1: testutil.Player(stateWait),
		})
	}

	st := &machineState{}
	index := replay.NewFrameIndex()
	var combos []*Combo
	perm := victimVsAttacker()

	frames := b.Frames()
	for _, f := range frames {
		index.Add(f)
		advance(perm, st, f, index, &combos, resetFrames)
		st.event = EventNone
		st.eventCombo = nil
	}
	require.Len(t, combos, 1)
	require.NotNil(t, combos[0].EndFrame)
	closed := *combos[0]
	closedEnd := *combos[0].EndFrame

	// Feed another damaging exchange: a new combo opens; the closed one
	// is untouched.
	b2 := testutil.NewGameBuilder(2, frames[len(frames)-1].Number+1)
	b2.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateWait, testutil.WithPercent(6)),
		1: testutil.Player(stateAttack, testutil.WithCounter(0)),
	})
	b2.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateHitstun, testutil.WithPercent(11), testutil.WithLastHitBy(1)),
		1: testutil.Player(stateAttack, testutil.WithCounter(1), testutil.WithLastAttack(9)),
	})
	for _, f := range b2.Frames() {
		index.Add(f)
		advance(perm, st, f, index, &combos, resetFrames)
		st.event = EventNone
		st.eventCombo = nil
	}

	require.Len(t, combos, 2)
	assert.Equal(t, closedEnd, *combos[0].EndFrame)
	assert.Equal(t, closed.DidKill, combos[0].DidKill)
	assert.Equal(t, closed.CurrentPercent, combos[0].CurrentPercent)
	assert.Len(t, combos[0].Moves, len(closed.Moves))
}

func TestAdvance_VictimSlotAbsentIsSkipped(t *testing.T) {
	b := testutil.NewGameBuilder(2, 8)
	b.AddFrame(map[int]*replay.PlayerFrame{
		0: testutil.Player(stateWait, testutil.WithPercent(0)),
		1: testutil.Player(stateWait),
	})
	// Victim slot disappears mid-match (disconnect). Not an error.
	b.AddFrame(map[int]*replay.PlayerFrame{
		1: testutil.Player(stateWait),
	})

	combos, events := runMachine(b.Frames(), victimVsAttacker(), melee.ComboStringResetFrames)
	assert.Empty(t, combos)
	assert.Empty(t, events)
}
