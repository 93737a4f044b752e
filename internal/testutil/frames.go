// Package testutil provides deterministic replay fixtures for tests.
//
// The GameBuilder assembles settings and frame sequences by hand, frame
// by frame, with no randomness and no wall clocks - the same builder
// calls always produce the same frames, which keeps combo detection
// tests and golden traces reproducible.
package testutil

import (
	"github.com/replaylab/combotrace/internal/melee"
	"github.com/replaylab/combotrace/internal/replay"
)

// SnapOption customizes a player snapshot built by Player.
type SnapOption func(*replay.PlayerFrame)

// WithPercent sets the damage percent.
func WithPercent(percent float64) SnapOption {
	return func(p *replay.PlayerFrame) {
		p.Percent = &percent
	}
}

// WithCounter sets the action-state counter.
func WithCounter(counter float64) SnapOption {
	return func(p *replay.PlayerFrame) {
		p.ActionStateCounter = &counter
	}
}

// WithStocks sets the remaining stock count.
func WithStocks(stocks int) SnapOption {
	return func(p *replay.PlayerFrame) {
		p.StocksRemaining = &stocks
	}
}

// WithLastHitBy sets the last attacker slot index.
func WithLastHitBy(index int) SnapOption {
	return func(p *replay.PlayerFrame) {
		p.LastHitBy = &index
	}
}

// WithLastAttack sets the last-attack-landed move id.
func WithLastAttack(moveID int) SnapOption {
	return func(p *replay.PlayerFrame) {
		p.LastAttackLanded = &moveID
	}
}

// Player builds a snapshot in the given action state. Options set the
// optional fields; anything not set stays absent, which exercises the
// engine's legacy-data substitution paths.
func Player(state melee.ActionStateID, opts ...SnapOption) *replay.PlayerFrame {
	p := &replay.PlayerFrame{ActionStateID: state}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GameBuilder accumulates frames for a synthetic match.
type GameBuilder struct {
	settings *replay.GameSettings
	frames   []*replay.Frame
	next     int32
}

// NewGameBuilder creates a builder for a match with the given number of
// human players in slots 0..n-1. Frames start at startFrame.
func NewGameBuilder(playerCount int, startFrame int32) *GameBuilder {
	players := make([]replay.PlayerInfo, playerCount)
	for i := range players {
		players[i] = replay.PlayerInfo{
			Index: i,
			Port:  i + 1,
			Type:  replay.PlayerHuman,
		}
	}
	return &GameBuilder{
		settings: &replay.GameSettings{Players: players},
		frames:   nil,
		next:     startFrame,
	}
}

// Settings returns the match settings being built.
func (b *GameBuilder) Settings() *replay.GameSettings {
	return b.settings
}

// SetTeams marks the match as a team game and assigns team IDs by slot.
func (b *GameBuilder) SetTeams(teamBySlot map[int]int) {
	b.settings.IsTeams = true
	for i := range b.settings.Players {
		b.settings.Players[i].TeamID = teamBySlot[b.settings.Players[i].Index]
	}
}

// AddFrame appends one frame holding the given snapshots and returns it.
// Frame numbers and per-snapshot indices are filled in automatically.
// A nil snapshot leaves that slot absent from the frame.
func (b *GameBuilder) AddFrame(players map[int]*replay.PlayerFrame) *replay.Frame {
	f := &replay.Frame{
		Number:  b.next,
		Players: make(map[int]*replay.PlayerFrame, len(players)),
	}
	for index, snap := range players {
		if snap == nil {
			continue
		}
		snap.FrameNumber = b.next
		snap.PlayerIndex = index
		f.Players[index] = snap
	}
	b.frames = append(b.frames, f)
	b.next++
	return f
}

// Frames returns the accumulated frames in delivery order.
func (b *GameBuilder) Frames() []*replay.Frame {
	return b.frames
}

// File packages the settings and frames as a decoded replay file.
func (b *GameBuilder) File() *replay.File {
	return &replay.File{
		Settings: b.settings,
		Frames:   b.frames,
	}
}
