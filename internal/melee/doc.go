// Package melee defines the fixed game-data taxonomy combotrace depends on:
// action-state identifiers, the classifier predicates over them, and the
// timing constants that govern combo detection.
//
// Action states are opaque numeric identifiers of a player's current
// animation/behavior mode. The predicates in this package are the ONLY
// sanctioned way to interpret them; everything else treats ActionStateID
// as an equality-comparable token.
//
// The ranges below follow the community-documented Melee action-state
// table. They are constants of the game, not configuration.
package melee
