// Package combo implements the combotrace combo-detection engine.
//
// The engine owns one state machine per tracked (victim, opponent)
// permutation and drives every machine once per incoming frame. Each
// machine decides whether a combo is opening, continuing (a new move
// landing), or closing, and maintains the derived Combo/Move records.
//
// ARCHITECTURE:
//
// Single-Writer Frame Loop:
// All mutation happens on the goroutine calling ProcessFrame, strictly
// in frame-number order. Frame N's transition depends on frame N-1, so
// processing of frame N must complete before frame N+1 begins. This
// ensures:
//   - Deterministic combo records (same frames, same output)
//   - Reproducible event traces on replay
//   - Simple reasoning about per-permutation causality
//
// Frame Processing Flow:
//  1. Caller adds the frame to the FrameIndex, then calls ProcessFrame
//  2. Every permutation's machine advances against the new frame
//  3. Machines append to / close the shared combos list
//  4. Pending lifecycle events are published synchronously, in order,
//     stamped with a monotonic logical sequence number
//
// Permutations never share mutable state; a machine owns its state
// exclusively. The combos list is appended to only by the engine.
//
// MISSING DATA:
// Absent previous frames, percents, attackers, and animation counters
// are all expected (legacy recordings, mid-match disconnects) and are
// handled by documented default substitution, never by failing. The one
// fail-fast condition is processing frames before Setup.
package combo
