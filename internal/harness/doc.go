// Package harness provides a scenario-driven conformance framework for
// combo detection.
//
// A scenario is a YAML file describing a synthetic match: the player
// slots, a frame-by-frame script of action states and percents, and
// assertions over the detected combos and the published event trace.
// The harness builds the frames, drives the detection engine over them
// with a fixed game ID, and evaluates the assertions.
//
// Scenarios are fully deterministic. The same scenario always produces
// the same combos and the same event trace, which makes the trace
// suitable for golden-file comparison: RunWithGolden snapshots the
// trace as JSON and compares it against testdata/golden/{name}.golden.
package harness
