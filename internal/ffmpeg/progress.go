package ffmpeg

import (
	"regexp"

	"github.com/five82/mixit/internal/util"
)

var timeRegex = regexp.MustCompile(`time=\s*(\d+:\d{2}:\d{2}(?:\.\d+)?)`)

// ProgressState is a snapshot of one job's progress.
type ProgressState struct {
	ElapsedSecs float64
	// Fraction is ElapsedSecs over the target, clamped to [0, 1].
	Fraction float64
}

// Percent returns Fraction scaled to 0-100.
func (p ProgressState) Percent() float64 {
	return p.Fraction * 100
}

// ProgressTracker turns ffmpeg stats lines into a fraction that never
// decreases.
type ProgressTracker struct {
	target  float64
	current ProgressState
	seen    bool
}

// NewProgressTracker creates a tracker for a job of target seconds.
func NewProgressTracker(target float64) *ProgressTracker {
	return &ProgressTracker{target: target}
}

// Update parses line and reports the new state. ok is false when the line
// carries no timestamp or would move progress backwards.
func (t *ProgressTracker) Update(line string) (ProgressState, bool) {
	elapsed, found := ParseElapsed(line)
	if !found {
		return t.current, false
	}

	fraction := 0.0
	if t.target > 0 {
		fraction = min(max(elapsed/t.target, 0), 1)
	}
	if t.seen && fraction < t.current.Fraction {
		return t.current, false
	}

	t.current = ProgressState{ElapsedSecs: elapsed, Fraction: fraction}
	t.seen = true
	return t.current, true
}

// Current returns the latest reported state.
func (t *ProgressTracker) Current() ProgressState {
	return t.current
}

// Complete forces the fraction to 1.
func (t *ProgressTracker) Complete() ProgressState {
	t.current.Fraction = 1
	t.seen = true
	return t.current
}

// ParseElapsed extracts the time= field from an ffmpeg stats line.
func ParseElapsed(line string) (float64, bool) {
	matches := timeRegex.FindStringSubmatch(line)
	if len(matches) < 2 {
		return 0, false
	}
	return util.ParseFFmpegTime(matches[1])
}
