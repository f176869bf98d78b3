// Package processing plans and runs mix jobs end to end.
package processing

import (
	"fmt"
	"strings"

	"github.com/five82/mixit/internal/config"
	"github.com/five82/mixit/internal/errors"
	"github.com/five82/mixit/internal/ffmpeg"
	"github.com/five82/mixit/internal/manifest"
	"github.com/five82/mixit/internal/planner"
	"github.com/five82/mixit/internal/util"
)

// MixJob describes one mix. Jobs are built per invocation and never
// persisted.
type MixJob struct {
	ID       string
	Name     string
	VideoDir string

	// MusicDir is scanned for the audio pool when AudioPaths is nil. Both
	// empty means the original video audio is kept.
	MusicDir   string
	AudioPaths []string

	// Target is the output duration in seconds.
	Target float64

	Policy     ffmpeg.BlendPolicy
	Crossfade  ffmpeg.Crossfade
	OutputPath string
	Container  string

	Order       planner.Order
	ManualOrder []string
}

// NewMixJob creates a job with a fresh ID and default policy settings.
// target is in seconds and must be positive.
func NewMixJob(videoDir, outputPath string, target float64) (*MixJob, error) {
	if !(target > 0) {
		return nil, errors.NewInvalidDurationError(target)
	}
	if strings.TrimSpace(videoDir) == "" {
		return nil, errors.NewPathError("video directory must be set")
	}
	return &MixJob{
		ID:         manifest.NewJobID(),
		VideoDir:   videoDir,
		Target:     target,
		Policy:     ffmpeg.BlendFastConcat,
		Crossfade:  ffmpeg.DefaultCrossfade(),
		OutputPath: outputPath,
		Container:  config.DefaultContainer,
		Order:      planner.OrderRandom,
	}, nil
}

// Validate re-checks a job that may have been modified after construction.
func (j *MixJob) Validate() error {
	if !(j.Target > 0) {
		return errors.NewInvalidDurationError(j.Target)
	}
	if strings.TrimSpace(j.VideoDir) == "" {
		return errors.NewPathError("video directory must be set")
	}
	if _, _, err := ffmpeg.ResolveContainer(j.Container); err != nil {
		return err
	}
	if j.Policy == ffmpeg.BlendCrossfade && j.Crossfade.Window <= 0 {
		return errors.NewConfigError(fmt.Sprintf("crossfade window must be positive, got %g", j.Crossfade.Window))
	}
	return nil
}

// DisplayName returns the job name, falling back to the output file name.
func (j *MixJob) DisplayName() string {
	if j.Name != "" {
		return j.Name
	}
	if j.OutputPath != "" {
		return util.GetFilename(j.OutputPath)
	}
	return j.ID
}

// JobFromBatch converts one batch entry into a job. Entries without an
// explicit output name are numbered so jobs sharing a directory do not
// overwrite each other.
func JobFromBatch(cfg *config.Config, entry config.BatchJob, index int) (*MixJob, error) {
	container := entry.Format
	if container == "" {
		container = cfg.Mix.Container
	}

	name := entry.Output
	if name == "" {
		name = fmt.Sprintf("batch_%d_%s", index+1, cfg.Mix.OutputName)
	}
	output := util.ResolveMixOutput(entry.OutputDir, name, cfg.Mix.OutputName, container, entry.VideoDir)

	job, err := NewMixJob(entry.VideoDir, output, entry.TargetSeconds())
	if err != nil {
		return nil, err
	}
	job.Name = entry.Name
	job.MusicDir = entry.MusicDir
	job.Container = container
	job.Crossfade = ffmpeg.Crossfade{Window: cfg.Mix.CrossfadeSeconds, Curve: cfg.Mix.CrossfadeCurve}
	job.ManualOrder = entry.ManualOrder

	if job.Policy, err = ffmpeg.ParseBlendPolicy(entry.Blend); err != nil {
		return nil, err
	}
	if job.Order, err = planner.ParseOrder(entry.Order); err != nil {
		return nil, errors.NewConfigError(err.Error())
	}
	return job, nil
}
