package melee

// ActionStateID identifies a player's animation/behavior state at a frame.
// Only meaningful through the predicates in this package and equality.
type ActionStateID uint16

// Action-state range boundaries (inclusive).
const (
	// Death animations.
	deadStart ActionStateID = 0x000
	deadEnd   ActionStateID = 0x00A

	// DamageFall is tumbling after hitstun; counted as damaged.
	damageFall ActionStateID = 0x026

	// Standard damage (hitstun) animations.
	damageStart ActionStateID = 0x04B
	damageEnd   ActionStateID = 0x05B

	// Downed (knocked down) animations.
	downStart ActionStateID = 0x0B7
	downEnd   ActionStateID = 0x0C6

	// Tech (ukemi) animations.
	techStart ActionStateID = 0x0C7
	techEnd   ActionStateID = 0x0CC

	// Held in a standard grab.
	grabbedStart ActionStateID = 0x0DF
	grabbedEnd   ActionStateID = 0x0E8

	// Character-specific command grabs and captures.
	commandGrabRange1Start ActionStateID = 0x10A
	commandGrabRange1End   ActionStateID = 0x130
	commandGrabRange2Start ActionStateID = 0x147
	commandGrabRange2End   ActionStateID = 0x152

	// BarrelWait sits inside the capture range but is not a grab.
	barrelWait ActionStateID = 0x125
)

// Timing constants, in frames (60 per second).
const (
	// ComboStringResetFrames is the number of consecutive non-vulnerable
	// frames after which an in-progress combo string is considered over.
	ComboStringResetFrames = 45

	// FirstFrame is the frame number of the first recorded frame.
	// Frames -123..-1 are the pre-match countdown.
	FirstFrame = -123
)

// IsDamaged reports whether the player is in a hitstun animation.
func IsDamaged(state ActionStateID) bool {
	return (state >= damageStart && state <= damageEnd) || state == damageFall
}

// IsGrabbed reports whether the player is held in a standard grab.
func IsGrabbed(state ActionStateID) bool {
	return state >= grabbedStart && state <= grabbedEnd
}

// IsCommandGrabbed reports whether the player is captured by a command
// grab (e.g. Falcon's Grab-and-Punch, Kirby's Swallow). BarrelWait falls
// inside the capture range but is stage interaction, not a grab.
func IsCommandGrabbed(state ActionStateID) bool {
	inRange := (state >= commandGrabRange1Start && state <= commandGrabRange1End) ||
		(state >= commandGrabRange2Start && state <= commandGrabRange2End)
	return inRange && state != barrelWait
}

// IsTeching reports whether the player is in a tech animation.
func IsTeching(state ActionStateID) bool {
	return state >= techStart && state <= techEnd
}

// IsDown reports whether the player is lying on the ground.
func IsDown(state ActionStateID) bool {
	return state >= downStart && state <= downEnd
}

// IsDead reports whether the player is in a death animation.
// The dead range starts at 0, so only the upper bound matters.
func IsDead(state ActionStateID) bool {
	return state <= deadEnd
}
