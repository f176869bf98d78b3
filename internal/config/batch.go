package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// BatchJob is one [[job]] table in a batch file.
type BatchJob struct {
	Name            string   `toml:"name"`
	VideoDir        string   `toml:"video_dir"`
	MusicDir        string   `toml:"music_dir"`
	DurationMinutes float64  `toml:"duration_minutes"`
	Blend           string   `toml:"blend"`
	Output          string   `toml:"output"`
	OutputDir       string   `toml:"output_dir"`
	Format          string   `toml:"format"`
	Order           string   `toml:"order"`
	ManualOrder     []string `toml:"manual_order"`
}

// TargetSeconds returns the job's target duration in seconds.
func (j BatchJob) TargetSeconds() float64 {
	return j.DurationMinutes * 60
}

// Batch is the top-level shape of a batch file.
type Batch struct {
	Jobs []BatchJob `toml:"job"`
}

// LoadBatch parses a batch file and expands its directory paths. Entries
// missing a video directory or a positive duration are rejected.
func LoadBatch(path string) ([]BatchJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}

	var batch Batch
	if err := toml.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("parse batch file: %w", err)
	}
	if len(batch.Jobs) == 0 {
		return nil, fmt.Errorf("%w: %s contains no [[job]] entries", ErrInvalidBatchJob, path)
	}

	for i := range batch.Jobs {
		job := &batch.Jobs[i]
		if strings.TrimSpace(job.VideoDir) == "" {
			return nil, fmt.Errorf("%w: job %d: video_dir must be set", ErrInvalidBatchJob, i+1)
		}
		if job.DurationMinutes <= 0 {
			return nil, fmt.Errorf("%w: job %d: duration_minutes must be positive, got %g", ErrInvalidBatchJob, i+1, job.DurationMinutes)
		}
		if job.VideoDir, err = expandPath(strings.TrimSpace(job.VideoDir)); err != nil {
			return nil, fmt.Errorf("job %d video_dir: %w", i+1, err)
		}
		if job.MusicDir, err = expandOptional(job.MusicDir); err != nil {
			return nil, fmt.Errorf("job %d music_dir: %w", i+1, err)
		}
		if job.OutputDir, err = expandOptional(job.OutputDir); err != nil {
			return nil, fmt.Errorf("job %d output_dir: %w", i+1, err)
		}
		if job.Format, err = ParseContainer(job.Format); err != nil {
			return nil, fmt.Errorf("job %d: %w", i+1, err)
		}
		if job.Name == "" {
			job.Name = fmt.Sprintf("job %d", i+1)
		}
	}
	return batch.Jobs, nil
}
