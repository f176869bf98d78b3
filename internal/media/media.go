// Package media defines the asset and playlist types shared by the planner,
// the command graph builder and the job engine.
package media

import "path/filepath"

// Kind distinguishes video sources from audio sources.
type Kind int

const (
	// Video assets are stream-copied into the output.
	Video Kind = iota
	// Audio assets form the soundtrack.
	Audio
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case Video:
		return "video"
	case Audio:
		return "audio"
	default:
		return "unknown"
	}
}

// Asset is a probed source file. Duration is in seconds; 0 means the probe
// failed or the file reported no duration.
type Asset struct {
	Path     string
	Kind     Kind
	Duration float64
}

// Name returns the asset's base filename.
func (a Asset) Name() string {
	return filepath.Base(a.Path)
}

// TotalDuration sums the durations of assets.
func TotalDuration(assets []Asset) float64 {
	var total float64
	for _, a := range assets {
		total += a.Duration
	}
	return total
}

// Paths returns the asset paths in order.
func Paths(assets []Asset) []string {
	paths := make([]string, len(assets))
	for i, a := range assets {
		paths[i] = a.Path
	}
	return paths
}

// Playlist is an ordered selection produced by one planning call.
type Playlist struct {
	Assets []Asset
	// Duration is the plain sum of selected durations.
	Duration float64
	// EffectiveDuration accounts for crossfade overlap. It equals Duration
	// for selections that are not crossfaded.
	EffectiveDuration float64
}

// Len returns the number of selected assets.
func (p Playlist) Len() int {
	return len(p.Assets)
}

// Paths returns the selected paths in playback order.
func (p Playlist) Paths() []string {
	return Paths(p.Assets)
}

// Empty reports whether nothing was selected.
func (p Playlist) Empty() bool {
	return len(p.Assets) == 0
}
