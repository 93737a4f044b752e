package replay

// FrameIndex is an append-ordered, random-access store of decoded frames
// keyed by frame number.
//
// The index must reflect every frame delivered so far, including the one
// currently being processed, before the engine advances on it. A lookup
// for a frame that has not arrived yet yields absent, never an error -
// the engine treats a missing predecessor as a deliberate no-op.
//
// Single-writer: the index is appended to only by the goroutine feeding
// the engine. No internal locking.
type FrameIndex struct {
	frames map[int32]*Frame
	order  []int32
}

// NewFrameIndex creates an empty frame index.
func NewFrameIndex() *FrameIndex {
	return &FrameIndex{
		frames: make(map[int32]*Frame, 1024),
	}
}

// Add stores a frame under its frame number. Re-adding a frame number
// replaces the previous entry (rollback frames in live recordings
// resend the same frame number with corrected data).
func (ix *FrameIndex) Add(f *Frame) {
	if f == nil {
		return
	}
	if _, exists := ix.frames[f.Number]; !exists {
		ix.order = append(ix.order, f.Number)
	}
	ix.frames[f.Number] = f
}

// Frame returns the frame with the given number, or (nil, false) if it
// has not been delivered yet.
func (ix *FrameIndex) Frame(number int32) (*Frame, bool) {
	f, ok := ix.frames[number]
	return f, ok
}

// Len returns the number of distinct frames stored.
func (ix *FrameIndex) Len() int {
	return len(ix.order)
}

// Latest returns the most recently added frame, or nil when empty.
func (ix *FrameIndex) Latest() *Frame {
	if len(ix.order) == 0 {
		return nil
	}
	return ix.frames[ix.order[len(ix.order)-1]]
}
