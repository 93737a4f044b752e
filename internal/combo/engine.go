package combo

import (
	"fmt"
	"log/slog"

	"github.com/replaylab/combotrace/internal/melee"
	"github.com/replaylab/combotrace/internal/replay"
)

// Engine orchestrates combo detection for one match.
//
// Setup allocates one state machine per tracked permutation; ProcessFrame
// drives every machine against each newly available frame and publishes
// pending lifecycle events to subscribers, synchronously and in order.
//
// CRITICAL: ProcessFrame must be called from exactly one goroutine, in
// non-decreasing frame-number order, after the frame has been added to
// the FrameIndex. All mutation happens on that goroutine.
type Engine struct {
	clock       *Clock
	idGen       GameIDGenerator
	resetFrames int
	subscribers []Subscriber

	settings   *replay.GameSettings
	gameID     string
	perms      []replay.PlayerPermutation
	states     map[string]*machineState
	combos     []*Combo
	lastFrame  int32
	sawFrame   bool
	configured bool
}

// Option configures engine parameters at construction.
type Option func(*Engine)

// WithResetFrames overrides the combo string reset window. The default
// is melee.ComboStringResetFrames; tests use small windows to close
// combos quickly.
func WithResetFrames(frames int) Option {
	return func(e *Engine) {
		e.resetFrames = frames
	}
}

// WithIDGenerator overrides the game ID generator. Tests use
// FixedGenerator for deterministic golden traces.
func WithIDGenerator(gen GameIDGenerator) Option {
	return func(e *Engine) {
		e.idGen = gen
	}
}

// WithClock overrides the event sequence clock. Used to resume seq
// numbering when stitching traces across engine instances.
func WithClock(clock *Clock) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// New creates an Engine. The engine is not usable until Setup is called
// with the match settings.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock:       NewClock(),
		idGen:       UUIDv7Generator{},
		resetFrames: melee.ComboStringResetFrames,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subscribe registers a subscriber for lifecycle events. Subscribers
// must be registered before frame processing begins; registration is
// not synchronized against ProcessFrame.
func (e *Engine) Subscribe(s Subscriber) {
	if s == nil {
		return
	}
	e.subscribers = append(e.subscribers, s)
}

// Setup resets all state for a new match: clears the combos list,
// resolves the tracked permutations from settings, and allocates a
// fresh state machine per permutation. Calling it again fully discards
// prior state, which is how an engine is reused across matches.
//
// Returns the game ID assigned to this match.
func (e *Engine) Setup(settings *replay.GameSettings) string {
	e.settings = settings
	e.gameID = e.idGen.Generate()
	e.perms = replay.Permutations(settings)
	e.states = make(map[string]*machineState, len(e.perms))
	for _, p := range e.perms {
		e.states[p.Key()] = &machineState{}
	}
	e.combos = nil
	e.lastFrame = 0
	e.sawFrame = false
	e.configured = true

	slog.Debug("combo engine configured",
		"game_id", e.gameID,
		"permutations", len(e.perms),
		"reset_frames", e.resetFrames,
	)
	return e.gameID
}

// ProcessFrame advances every permutation's machine against the frame
// and publishes any pending events.
//
// The index must already contain the frame being processed. Returns
// ErrNotConfigured before Setup and FrameOrderError when the frame
// number decreases; all degraded data inside the frame is handled by
// substitution and never aborts processing.
func (e *Engine) ProcessFrame(frame *replay.Frame, index *replay.FrameIndex) error {
	if !e.configured {
		return ErrNotConfigured
	}
	if frame == nil {
		return fmt.Errorf("process frame: frame is nil")
	}
	if index == nil {
		return fmt.Errorf("process frame: frame index is nil")
	}
	if e.sawFrame && frame.Number < e.lastFrame {
		return &FrameOrderError{Got: frame.Number, Last: e.lastFrame}
	}
	e.lastFrame = frame.Number
	e.sawFrame = true

	for _, perm := range e.perms {
		st := e.states[perm.Key()]
		if st == nil {
			continue
		}

		advance(perm, st, frame, index, &e.combos, e.resetFrames)

		if st.event != EventNone {
			e.publish(Event{
				Seq:      e.clock.Next(),
				Kind:     st.event,
				GameID:   e.gameID,
				Combo:    st.eventCombo,
				Settings: e.settings,
			})
			st.event = EventNone
			st.eventCombo = nil
		}
	}
	return nil
}

// ProcessReplay feeds a fully decoded replay through the engine: Setup
// with the file's settings, then one ProcessFrame per frame in delivery
// order. Convenience driver for the CLI and tests.
func (e *Engine) ProcessReplay(file *replay.File) error {
	if file == nil {
		return fmt.Errorf("process replay: file is nil")
	}
	e.Setup(file.Settings)

	index := replay.NewFrameIndex()
	for _, frame := range file.Frames {
		index.Add(frame)
		if err := e.ProcessFrame(frame, index); err != nil {
			return fmt.Errorf("process frame %d: %w", frame.Number, err)
		}
	}
	return nil
}

// Fetch returns all combos recorded so far, open and closed, in the
// order they were opened. Safe to call at any time, including mid-match.
// The slice is a copy; the Combo records are the live ones.
func (e *Engine) Fetch() []*Combo {
	out := make([]*Combo, len(e.combos))
	copy(out, e.combos)
	return out
}

// GameID returns the ID assigned at the last Setup, or "" before Setup.
func (e *Engine) GameID() string {
	return e.gameID
}

// Permutations returns the tracked perspectives resolved at Setup.
// Used for introspection and testing.
func (e *Engine) Permutations() []replay.PlayerPermutation {
	return e.perms
}

// publish delivers an event to every subscriber, synchronously and in
// registration order.
func (e *Engine) publish(ev Event) {
	slog.Debug("combo event",
		"seq", ev.Seq,
		"kind", ev.Kind.String(),
		"game_id", ev.GameID,
		"victim", ev.Combo.VictimIndex,
		"start_frame", ev.Combo.StartFrame,
	)
	for _, s := range e.subscribers {
		s.HandleComboEvent(ev)
	}
}
