package combo

import (
	"sync"

	"github.com/google/uuid"
)

// GameIDGenerator generates unique game identifiers assigned at Setup.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type GameIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 game identifiers.
//
// UUIDv7 embeds a timestamp in the most significant bits, making game
// IDs sortable by creation time - helpful when exported combo databases
// accumulate many games.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined game IDs for testing.
//
// This enables deterministic test execution and golden trace comparison:
// tests provide a known sequence of IDs and verify exact trace output.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns IDs in order.
//
// Example:
//
//	gen := NewFixedGenerator("game-1", "game-2")
//	gen.Generate() // "game-1"
//	gen.Generate() // "game-2"
//	gen.Generate() // panic: all ids exhausted
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined ID.
//
// Panics if all IDs have been consumed. This is a fail-fast approach to
// catch test misconfiguration (test set up more games than expected).
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
