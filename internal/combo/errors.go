package combo

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when frames are processed before Setup.
// This is a programmer error and fails fast rather than silently
// evaluating an empty permutation set.
var ErrNotConfigured = errors.New("combo engine not configured: call Setup before processing frames")

// FrameOrderError reports a frame delivered out of order. The engine
// requires non-decreasing frame numbers: frame N's transition depends on
// the completed result of frame N-1.
type FrameOrderError struct {
	// Got is the offending frame number.
	Got int32

	// Last is the highest frame number processed so far.
	Last int32
}

// Error implements the error interface.
func (e *FrameOrderError) Error() string {
	return fmt.Sprintf("frame %d delivered after frame %d: frames must arrive in non-decreasing order", e.Got, e.Last)
}

// IsFrameOrderError returns true if the error is a frame ordering
// violation. Uses errors.As to handle wrapped errors.
func IsFrameOrderError(err error) bool {
	var fe *FrameOrderError
	return errors.As(err, &fe)
}
