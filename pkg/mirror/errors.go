package mirror

import "errors"

var (
	// ErrUnknownEndingPhase is returned when parsing an unrecognized phase name.
	ErrUnknownEndingPhase = errors.New("unknown ending phase")

	// ErrUnknownPreset is returned when a tuning preset name is not recognized.
	ErrUnknownPreset = errors.New("unknown tuning preset")
)
