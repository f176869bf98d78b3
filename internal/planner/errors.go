package planner

import "errors"

// Sentinel errors for degenerate pools.
var (
	// ErrEmptyPool indicates there is nothing to select from.
	ErrEmptyPool = errors.New("source pool is empty")

	// ErrZeroDuration indicates every asset in the pool probed to 0 seconds.
	ErrZeroDuration = errors.New("source pool has zero total duration")

	// ErrPassLimit indicates the reshuffle bound was hit before the target.
	ErrPassLimit = errors.New("plan pass limit reached before target duration")

	// ErrNoEligibleTracks indicates no track is longer than the crossfade window plus one second.
	ErrNoEligibleTracks = errors.New("no audio track is long enough to crossfade")

	// ErrUnknownOrder indicates an unrecognised track order name.
	ErrUnknownOrder = errors.New("unknown track order")
)
