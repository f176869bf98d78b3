// Package planner selects and loops source assets until a duration target
// is met.
//
// All randomness comes from the *rand.Rand handed to New, so a fixed seed
// reproduces a plan exactly.
package planner

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/five82/mixit/internal/logging"
	"github.com/five82/mixit/internal/media"
)

const (
	// DefaultVideoBuffer is the surplus of planned video over the target.
	DefaultVideoBuffer = 60.0

	// DefaultMaxPasses bounds reshuffle passes over a pool.
	DefaultMaxPasses = 10000

	// eligibilityMargin is how much longer than the crossfade window a
	// track must be to take part in a crossfade.
	eligibilityMargin = 1.0
)

// Planner builds playlists. It is not safe for concurrent use because the
// underlying *rand.Rand is not.
type Planner struct {
	rng         *rand.Rand
	videoBuffer float64
	maxPasses   int
}

// Option configures a Planner.
type Option func(*Planner)

// WithVideoBuffer overrides the video surplus in seconds.
func WithVideoBuffer(seconds float64) Option {
	return func(p *Planner) {
		if seconds >= 0 {
			p.videoBuffer = seconds
		}
	}
}

// WithMaxPasses overrides the reshuffle pass bound.
func WithMaxPasses(n int) Option {
	return func(p *Planner) {
		if n > 0 {
			p.maxPasses = n
		}
	}
}

// New creates a planner drawing from rng. A nil rng is seeded from the clock.
func New(rng *rand.Rand, opts ...Option) *Planner {
	if rng == nil {
		rng = NewRand(uint64(time.Now().UnixNano()))
	}
	p := &Planner{
		rng:         rng,
		videoBuffer: DefaultVideoBuffer,
		maxPasses:   DefaultMaxPasses,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewRand returns a deterministic generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// VideoBuffer returns the configured video surplus in seconds.
func (p *Planner) VideoBuffer() float64 {
	return p.videoBuffer
}

func (p *Planner) shuffled(pool []media.Asset) []media.Asset {
	out := slices.Clone(pool)
	p.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// SelectVideo shuffles pool and appends assets until the accumulated
// duration reaches target plus the video buffer, reshuffling whenever the
// pool is exhausted. Zero-duration assets are kept but add nothing.
func (p *Planner) SelectVideo(pool []media.Asset, target float64) (media.Playlist, error) {
	if len(pool) == 0 {
		return media.Playlist{}, ErrEmptyPool
	}
	if media.TotalDuration(pool) <= 0 {
		return media.Playlist{}, ErrZeroDuration
	}

	need := target + p.videoBuffer
	var pl media.Playlist
	for pass := range p.maxPasses {
		for _, a := range p.shuffled(pool) {
			pl.Assets = append(pl.Assets, a)
			pl.Duration += a.Duration
			if pl.Duration >= need {
				pl.EffectiveDuration = pl.Duration
				logging.Debug("video plan ready",
					"clips", len(pl.Assets), "planned", pl.Duration, "target", target, "passes", pass+1)
				return pl, nil
			}
		}
	}
	return media.Playlist{}, fmt.Errorf("%w: video reached %.1fs of %.1fs after %d passes",
		ErrPassLimit, pl.Duration, need, p.maxPasses)
}

// SelectAudioConcat draws tracks in the caller's order, reshuffling and
// redrawing once the pool runs out, until the accumulated duration reaches
// target. Zero-duration tracks are skipped. The last track is not trimmed.
func (p *Planner) SelectAudioConcat(pool []media.Asset, target float64) (media.Playlist, error) {
	if len(pool) == 0 {
		return media.Playlist{}, ErrEmptyPool
	}
	if media.TotalDuration(pool) <= 0 {
		return media.Playlist{}, ErrZeroDuration
	}

	var pl media.Playlist
	order := pool
	for pass := range p.maxPasses {
		if pass > 0 {
			order = p.shuffled(pool)
		}
		for _, a := range order {
			if a.Duration <= 0 {
				continue
			}
			pl.Assets = append(pl.Assets, a)
			pl.Duration += a.Duration
			if pl.Duration >= target {
				pl.EffectiveDuration = pl.Duration
				logging.Debug("audio plan ready",
					"tracks", len(pl.Assets), "planned", pl.Duration, "target", target, "passes", pass+1)
				return pl, nil
			}
		}
	}
	return media.Playlist{}, fmt.Errorf("%w: audio reached %.1fs of %.1fs after %d passes",
		ErrPassLimit, pl.Duration, target, p.maxPasses)
}

// SelectAudioCrossfade selects tracks for a crossfade chain. Only tracks
// longer than window+1s qualify. A single qualifying track is returned alone.
// Otherwise the effective duration (first track in full, each later track
// minus the overlap) must reach target + 2*window.
func (p *Planner) SelectAudioCrossfade(pool []media.Asset, target, window float64) (media.Playlist, error) {
	if len(pool) == 0 {
		return media.Playlist{}, ErrEmptyPool
	}

	eligible := make([]media.Asset, 0, len(pool))
	for _, a := range pool {
		if a.Duration > window+eligibilityMargin {
			eligible = append(eligible, a)
		}
	}
	if skipped := len(pool) - len(eligible); skipped > 0 {
		logging.Debug("tracks too short to crossfade", "skipped", skipped, "window", window)
	}

	switch len(eligible) {
	case 0:
		return media.Playlist{}, ErrNoEligibleTracks
	case 1:
		a := eligible[0]
		return media.Playlist{Assets: []media.Asset{a}, Duration: a.Duration, EffectiveDuration: a.Duration}, nil
	}

	need := target + 2*window
	var pl media.Playlist
	order := eligible
	for pass := range p.maxPasses {
		if pass > 0 {
			order = p.shuffled(eligible)
		}
		for _, a := range order {
			pl.Assets = append(pl.Assets, a)
			pl.Duration += a.Duration
			if len(pl.Assets) == 1 {
				pl.EffectiveDuration += a.Duration
			} else {
				pl.EffectiveDuration += a.Duration - window
			}
			if pl.EffectiveDuration >= need {
				logging.Debug("crossfade plan ready",
					"tracks", len(pl.Assets), "effective", pl.EffectiveDuration, "target", target, "passes", pass+1)
				return pl, nil
			}
		}
	}
	return media.Playlist{}, fmt.Errorf("%w: crossfade reached %.1fs of %.1fs after %d passes",
		ErrPassLimit, pl.EffectiveDuration, need, p.maxPasses)
}
