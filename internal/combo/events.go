package combo

import "github.com/replaylab/combotrace/internal/replay"

// EventKind identifies a combo lifecycle notification. The set is
// closed: a combo starts, is extended by new moves, and ends.
type EventKind int

const (
	// EventNone means no event is pending. Zero value.
	EventNone EventKind = iota

	// EventComboStart fires on the frame a combo opens.
	EventComboStart

	// EventComboExtend fires when a new move lands in an open combo.
	// Suppressed on the opening frame (opening implies a move).
	EventComboExtend

	// EventComboEnd fires on the frame a combo closes. Overrides any
	// start/extend signal raised earlier on the same frame.
	EventComboEnd
)

// String returns the stable wire name for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventComboStart:
		return "combo-start"
	case EventComboExtend:
		return "combo-extend"
	case EventComboEnd:
		return "combo-end"
	default:
		return "none"
	}
}

// Event is a combo lifecycle notification.
//
// Combo references the live record: for EventComboStart and
// EventComboExtend the combo is still open and will keep mutating as
// frames arrive. Subscribers that need a stable snapshot must copy.
type Event struct {
	// Seq is the logical clock stamp. Strictly increasing per game.
	Seq int64 `json:"seq"`

	// Kind is the lifecycle stage.
	Kind EventKind `json:"kind"`

	// GameID identifies the game this event belongs to, assigned at Setup.
	GameID string `json:"game_id"`

	// Combo is the most recently appended or modified combo.
	Combo *Combo `json:"combo"`

	// Settings echoes the match settings the engine was set up with.
	Settings *replay.GameSettings `json:"settings,omitempty"`
}

// Subscriber receives combo lifecycle events. Delivery is synchronous
// and in seq order, from the engine's processing goroutine; subscribers
// must not call back into the engine.
type Subscriber interface {
	HandleComboEvent(ev Event)
}

// SubscriberFunc adapts a function to the Subscriber interface.
type SubscriberFunc func(ev Event)

// HandleComboEvent implements Subscriber.
func (f SubscriberFunc) HandleComboEvent(ev Event) {
	f(ev)
}
