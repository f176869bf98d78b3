// Package config provides configuration types and defaults for mixit.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Default constants
const (
	// DefaultCrossfadeSecs is the overlap between consecutive crossfaded tracks.
	DefaultCrossfadeSecs float64 = 3.0

	// DefaultCrossfadeCurve is the acrossfade curve used for both fade legs.
	DefaultCrossfadeCurve string = "tri"

	// DefaultAudioCodec is the encoder used when the audio path is re-encoded.
	DefaultAudioCodec string = "aac"

	// DefaultAudioBitrate is the bitrate for re-encoded audio.
	DefaultAudioBitrate string = "192k"

	// DefaultVideoBufferSecs is the minimum surplus of planned video over the
	// target duration. ffmpeg truncates the rest.
	DefaultVideoBufferSecs float64 = 60.0

	// DefaultMaxPlanPasses bounds reshuffle passes while planning one playlist.
	DefaultMaxPlanPasses int = 10000

	// DefaultProbeWorkers is the number of concurrent ffprobe processes.
	DefaultProbeWorkers int = 4

	// DefaultIdleTimeoutSecs disables the ffmpeg silence watchdog.
	DefaultIdleTimeoutSecs int = 0

	// DefaultContainer is the output container when none is requested.
	DefaultContainer string = "mp4"

	// DefaultOutputName is the output file stem when none is given.
	DefaultOutputName string = "mix_output"

	// ProgressLogIntervalPercent is the progress logging interval.
	ProgressLogIntervalPercent uint8 = 5
)

// crossfadeCurves lists the curve names ffmpeg's acrossfade filter accepts.
var crossfadeCurves = map[string]bool{
	"tri": true, "qsin": true, "hsin": true, "esin": true, "log": true,
	"ipar": true, "qua": true, "cub": true, "squ": true, "cbr": true,
	"par": true, "exp": true, "iqsin": true, "ihsin": true, "dese": true,
	"desi": true, "losi": true, "sinc": true, "isinc": true, "nofade": true,
}

// Containers lists the output container tags a caller may request.
var Containers = []string{"mp4", "mkv", "mov", "webm"}

// Tools holds explicit binary overrides. Empty values fall back to a bundled
// bin directory and then PATH.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Mix holds planning and assembly settings.
type Mix struct {
	CrossfadeSeconds   float64 `toml:"crossfade_seconds"`
	CrossfadeCurve     string  `toml:"crossfade_curve"`
	AudioCodec         string  `toml:"audio_codec"`
	AudioBitrate       string  `toml:"audio_bitrate"`
	VideoBufferSeconds float64 `toml:"video_buffer_seconds"`
	MaxPlanPasses      int     `toml:"max_plan_passes"`
	ProbeWorkers       int     `toml:"probe_workers"`
	IdleTimeoutSeconds int     `toml:"idle_timeout_seconds"`
	TempDir            string  `toml:"temp_dir"` // Optional, defaults to os.TempDir()
	Container          string  `toml:"container"`
	OutputName         string  `toml:"output_name"`
}

// Logging contains configuration for log output.
type Logging struct {
	Dir      string `toml:"dir"`
	Verbose  bool   `toml:"verbose"`
	Disabled bool   `toml:"disabled"`
}

// Config holds all configuration for mixing.
//
// Configuration sections:
//   - Tools: ffmpeg and ffprobe overrides
//   - Mix: crossfade, codec, planner and runner tuning
//   - Logging: run log location and verbosity
type Config struct {
	Tools   Tools   `toml:"tools"`
	Mix     Mix     `toml:"mix"`
	Logging Logging `toml:"logging"`
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	cfg := Default()
	return &cfg
}

// Default returns the default configuration value.
func Default() Config {
	return Config{
		Mix: Mix{
			CrossfadeSeconds:   DefaultCrossfadeSecs,
			CrossfadeCurve:     DefaultCrossfadeCurve,
			AudioCodec:         DefaultAudioCodec,
			AudioBitrate:       DefaultAudioBitrate,
			VideoBufferSeconds: DefaultVideoBufferSecs,
			MaxPlanPasses:      DefaultMaxPlanPasses,
			ProbeWorkers:       DefaultProbeWorkers,
			IdleTimeoutSeconds: DefaultIdleTimeoutSecs,
			Container:          DefaultContainer,
			OutputName:         DefaultOutputName,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	m := c.Mix
	if m.CrossfadeSeconds <= 0 {
		return fmt.Errorf("%w: mix.crossfade_seconds must be positive, got %g", ErrInvalidCrossfade, m.CrossfadeSeconds)
	}
	if !crossfadeCurves[m.CrossfadeCurve] {
		return fmt.Errorf("%w: '%s'", ErrInvalidCurve, m.CrossfadeCurve)
	}
	if strings.TrimSpace(m.AudioCodec) == "" || strings.TrimSpace(m.AudioBitrate) == "" {
		return fmt.Errorf("%w: mix.audio_codec and mix.audio_bitrate must be set", ErrInvalidAudio)
	}
	if m.VideoBufferSeconds < 0 {
		return fmt.Errorf("%w: mix.video_buffer_seconds must be >= 0, got %g", ErrInvalidBuffer, m.VideoBufferSeconds)
	}
	if m.MaxPlanPasses <= 0 {
		return fmt.Errorf("%w: mix.max_plan_passes must be positive, got %d", ErrInvalidPassLimit, m.MaxPlanPasses)
	}
	if m.ProbeWorkers < 0 {
		return fmt.Errorf("%w: mix.probe_workers must be >= 0, got %d", ErrInvalidWorkers, m.ProbeWorkers)
	}
	if m.IdleTimeoutSeconds < 0 {
		return fmt.Errorf("%w: mix.idle_timeout_seconds must be >= 0, got %d", ErrInvalidTimeout, m.IdleTimeoutSeconds)
	}
	if _, err := ParseContainer(m.Container); err != nil {
		return err
	}
	return nil
}

// ParseContainer normalizes a requested container tag.
func ParseContainer(s string) (string, error) {
	tag := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")
	if tag == "" {
		return DefaultContainer, nil
	}
	for _, c := range Containers {
		if c == tag {
			return tag, nil
		}
	}
	return "", fmt.Errorf("%w: '%s', valid options: %s", ErrUnknownContainer, s, strings.Join(Containers, ", "))
}

// GetTempDir returns the manifest directory, falling back to the system
// temp directory.
func (c *Config) GetTempDir() string {
	if c.Mix.TempDir != "" {
		return c.Mix.TempDir
	}
	return os.TempDir()
}
