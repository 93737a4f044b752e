package replay

import (
	"encoding/json"
	"fmt"
	"os"
)

// File is a fully decoded replay: match settings plus every frame in
// delivery order. This is the CLI's interchange format, not part of the
// core engine surface.
type File struct {
	Settings *GameSettings `json:"settings"`
	Frames   []*Frame      `json:"frames"`
}

// ReadFile loads a decoded replay from a JSON document on disk.
//
// Validation is limited to what the engine's contract requires: settings
// must be present and frames must arrive in non-decreasing frame-number
// order. Missing per-player fields are legitimate legacy data and pass
// through untouched. Name tags are NFKC-normalized on load.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read replay file: %w", err)
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse replay file %s: %w", path, err)
	}

	if err := file.Validate(); err != nil {
		return nil, fmt.Errorf("invalid replay file %s: %w", path, err)
	}

	file.Settings.NormalizeTags()
	return &file, nil
}

// Validate checks the structural contract the engine relies on.
func (f *File) Validate() error {
	if f.Settings == nil {
		return fmt.Errorf("settings are required")
	}
	if len(f.Settings.Players) == 0 {
		return fmt.Errorf("settings must list at least one player")
	}

	var prev int32
	for i, frame := range f.Frames {
		if frame == nil {
			return fmt.Errorf("frames[%d]: frame is nil", i)
		}
		if i > 0 && frame.Number < prev {
			return fmt.Errorf("frames[%d]: frame number %d decreases from %d (frames must be in non-decreasing order)", i, frame.Number, prev)
		}
		prev = frame.Number
	}
	return nil
}
