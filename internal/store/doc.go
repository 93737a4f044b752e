// Package store provides SQLite-backed durable storage for analyzed games.
//
// The store holds one row per game plus the combos and moves detected in
// it. Writes are idempotent: re-analyzing the same game ID is a no-op at
// the row level, so a crashed export can simply be rerun.
//
// Ordering is always deterministic. Combos are read back ordered by
// start frame, then by their position in the detection output; moves by
// their position within the combo. Wall-clock time never participates in
// ordering.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
