package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrInvalidCrossfade indicates a non-positive crossfade window.
	ErrInvalidCrossfade = errors.New("invalid crossfade duration")

	// ErrInvalidCurve indicates a curve name acrossfade does not accept.
	ErrInvalidCurve = errors.New("invalid crossfade curve")

	// ErrInvalidAudio indicates an empty audio codec or bitrate.
	ErrInvalidAudio = errors.New("invalid audio encoding settings")

	// ErrInvalidBuffer indicates a negative video buffer.
	ErrInvalidBuffer = errors.New("invalid video buffer")

	// ErrInvalidPassLimit indicates a non-positive planner pass bound.
	ErrInvalidPassLimit = errors.New("invalid plan pass limit")

	// ErrInvalidWorkers indicates a negative probe worker count.
	ErrInvalidWorkers = errors.New("invalid probe worker count")

	// ErrInvalidTimeout indicates a negative idle timeout.
	ErrInvalidTimeout = errors.New("invalid idle timeout")

	// ErrUnknownContainer indicates an output container outside the supported table.
	ErrUnknownContainer = errors.New("unknown output container")

	// ErrInvalidBatchJob indicates a batch entry missing required fields.
	ErrInvalidBatchJob = errors.New("invalid batch job")
)
