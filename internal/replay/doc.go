// Package replay holds the decoded replay data model and the boundary
// collaborators the combo engine consumes: per-frame player snapshots,
// the random-access frame index, match settings, and the player
// permutation resolver.
//
// Decoding the raw replay container is out of scope; this package starts
// from already-decoded structured frames. The JSON reader exists for the
// surrounding CLI tooling, not for the core engine.
//
// OPTIONAL FIELDS:
// Legacy recordings omit several post-frame fields (percent, the
// per-state animation counter, last-hit attribution). Optional fields
// are pointers with documented zero-substitution accessors; absence is
// expected data, never an error.
package replay
