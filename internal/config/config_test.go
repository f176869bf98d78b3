package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.Mix.CrossfadeSeconds != DefaultCrossfadeSecs {
		t.Errorf("expected CrossfadeSeconds=%v, got %v", DefaultCrossfadeSecs, cfg.Mix.CrossfadeSeconds)
	}
	if cfg.Mix.CrossfadeCurve != DefaultCrossfadeCurve {
		t.Errorf("expected CrossfadeCurve=%s, got %s", DefaultCrossfadeCurve, cfg.Mix.CrossfadeCurve)
	}
	if cfg.Mix.AudioCodec != "aac" || cfg.Mix.AudioBitrate != "192k" {
		t.Errorf("unexpected audio settings %s/%s", cfg.Mix.AudioCodec, cfg.Mix.AudioBitrate)
	}
	if cfg.Mix.VideoBufferSeconds != 60 {
		t.Errorf("expected VideoBufferSeconds=60, got %v", cfg.Mix.VideoBufferSeconds)
	}
	if cfg.Mix.MaxPlanPasses != DefaultMaxPlanPasses {
		t.Errorf("expected MaxPlanPasses=%d, got %d", DefaultMaxPlanPasses, cfg.Mix.MaxPlanPasses)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name         string
		modify       func(*Config)
		wantErr      bool
		wantSentinel error
	}{
		{
			name:    "default config is valid",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:         "zero crossfade is invalid",
			modify:       func(c *Config) { c.Mix.CrossfadeSeconds = 0 },
			wantErr:      true,
			wantSentinel: ErrInvalidCrossfade,
		},
		{
			name:         "unknown curve is invalid",
			modify:       func(c *Config) { c.Mix.CrossfadeCurve = "wobble" },
			wantErr:      true,
			wantSentinel: ErrInvalidCurve,
		},
		{
			name:    "qsin curve is valid",
			modify:  func(c *Config) { c.Mix.CrossfadeCurve = "qsin" },
			wantErr: false,
		},
		{
			name:         "empty codec is invalid",
			modify:       func(c *Config) { c.Mix.AudioCodec = "" },
			wantErr:      true,
			wantSentinel: ErrInvalidAudio,
		},
		{
			name:         "negative buffer is invalid",
			modify:       func(c *Config) { c.Mix.VideoBufferSeconds = -1 },
			wantErr:      true,
			wantSentinel: ErrInvalidBuffer,
		},
		{
			name:    "zero buffer is valid",
			modify:  func(c *Config) { c.Mix.VideoBufferSeconds = 0 },
			wantErr: false,
		},
		{
			name:         "zero pass limit is invalid",
			modify:       func(c *Config) { c.Mix.MaxPlanPasses = 0 },
			wantErr:      true,
			wantSentinel: ErrInvalidPassLimit,
		},
		{
			name:         "negative workers is invalid",
			modify:       func(c *Config) { c.Mix.ProbeWorkers = -2 },
			wantErr:      true,
			wantSentinel: ErrInvalidWorkers,
		},
		{
			name:         "negative idle timeout is invalid",
			modify:       func(c *Config) { c.Mix.IdleTimeoutSeconds = -1 },
			wantErr:      true,
			wantSentinel: ErrInvalidTimeout,
		},
		{
			name:         "avi container is invalid",
			modify:       func(c *Config) { c.Mix.Container = "avi" },
			wantErr:      true,
			wantSentinel: ErrUnknownContainer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantSentinel != nil && !errors.Is(err, tt.wantSentinel) {
				t.Errorf("Validate() error = %v, want errors.Is(%v)", err, tt.wantSentinel)
			}
		})
	}
}

func TestParseContainer(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"", "mp4", false},
		{"mp4", "mp4", false},
		{"MKV", "mkv", false},
		{".mov", "mov", false},
		{" webm ", "webm", false},
		{"flv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseContainer(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseContainer(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseContainer(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGetTempDir(t *testing.T) {
	cfg := NewConfig()
	if cfg.GetTempDir() != os.TempDir() {
		t.Errorf("expected system temp dir, got %s", cfg.GetTempDir())
	}
	cfg.Mix.TempDir = "/scratch"
	if cfg.GetTempDir() != "/scratch" {
		t.Errorf("expected /scratch, got %s", cfg.GetTempDir())
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "mixit.toml")

	contents := `
[tools]
ffmpeg = "` + filepath.ToSlash(filepath.Join(tempDir, "ffmpeg")) + `"

[mix]
crossfade_seconds = 5.5
crossfade_curve = "QSIN"
container = "MKV"
`
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Mix.CrossfadeSeconds != 5.5 {
		t.Fatalf("expected crossfade 5.5, got %v", cfg.Mix.CrossfadeSeconds)
	}
	if cfg.Mix.CrossfadeCurve != "qsin" {
		t.Fatalf("expected curve normalized to qsin, got %q", cfg.Mix.CrossfadeCurve)
	}
	if cfg.Mix.Container != "mkv" {
		t.Fatalf("expected container mkv, got %q", cfg.Mix.Container)
	}
	if cfg.Tools.FFmpeg != filepath.Join(tempDir, "ffmpeg") {
		t.Fatalf("unexpected ffmpeg path %q", cfg.Tools.FFmpeg)
	}
	// Untouched sections keep their defaults.
	if cfg.Mix.AudioBitrate != DefaultAudioBitrate {
		t.Fatalf("expected default bitrate, got %q", cfg.Mix.AudioBitrate)
	}
}

func TestLoadMissingExplicitPathUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected exists to be false")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.Mix.OutputName != DefaultOutputName {
		t.Fatalf("expected default output name, got %q", cfg.Mix.OutputName)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[mix]\nmax_plan_passes = -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, _, err := Load(path)
	if !errors.Is(err, ErrInvalidPassLimit) {
		t.Fatalf("expected ErrInvalidPassLimit, got %v", err)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("[mix\ncrossfade_seconds = "), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config should validate: %v", err)
	}
	if cfg.Mix.CrossfadeCurve != "tri" {
		t.Fatalf("expected tri curve in sample, got %q", cfg.Mix.CrossfadeCurve)
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandPath("~/music")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "music") {
		t.Errorf("ExpandPath(~/music) = %q", got)
	}
}
