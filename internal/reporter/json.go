package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// JSONReporter outputs NDJSON events, one object per line.
type JSONReporter struct {
	writer             io.Writer
	mu                 sync.Mutex
	lastProgressBucket int
	lastProgressTime   time.Time
	now                func() time.Time
}

// NewJSONReporter creates a new JSON reporter that writes to stdout.
func NewJSONReporter() *JSONReporter {
	return NewJSONReporterWithWriter(os.Stdout)
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{
		writer:             w,
		lastProgressBucket: -1,
		now:                time.Now,
	}
}

func (r *JSONReporter) timestamp() int64 {
	return r.now().Unix()
}

func (r *JSONReporter) write(v map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) Hardware(summary HardwareSummary) {
	r.write(map[string]any{
		"type":      "hardware",
		"hostname":  summary.Hostname,
		"cpus":      summary.NumCPU,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Initialization(summary InitializationSummary) {
	r.write(map[string]any{
		"type":        "initialization",
		"job_id":      summary.JobID,
		"video_dir":   summary.VideoDir,
		"music_dir":   summary.MusicDir,
		"output_file": summary.OutputFile,
		"target":      summary.Target,
		"blend":       summary.Blend,
		"container":   summary.Container,
		"video_files": summary.VideoFiles,
		"audio_files": summary.AudioFiles,
		"timestamp":   r.timestamp(),
	})
}

func (r *JSONReporter) StageProgress(update StageProgress) {
	event := map[string]any{
		"type":      "stage_progress",
		"stage":     update.Stage,
		"percent":   update.Percent,
		"message":   update.Message,
		"timestamp": r.timestamp(),
	}
	if update.ETA != nil {
		event["eta_seconds"] = int64(update.ETA.Seconds())
	}
	r.write(event)
}

func (r *JSONReporter) PlanReady(summary PlanSummary) {
	event := map[string]any{
		"type":              "plan_ready",
		"video_clips":       summary.VideoClips,
		"video_seconds":     summary.VideoSeconds,
		"audio_tracks":      summary.AudioTracks,
		"audio_seconds":     summary.AudioSeconds,
		"effective_seconds": summary.EffectiveSeconds,
		"target_seconds":    summary.TargetSeconds,
		"policy":            summary.Policy,
		"container":         summary.Container,
		"stages":            summary.Stages,
		"command":           summary.CommandLine,
		"estimate_seconds":  int64(summary.Estimate.Seconds()),
		"timestamp":         r.timestamp(),
	}
	if summary.Substitution != "" {
		event["substitution"] = summary.Substitution
	}
	r.write(event)
}

func (r *JSONReporter) MixStarted(info MixStartInfo) {
	r.mu.Lock()
	r.lastProgressBucket = -1
	r.lastProgressTime = time.Time{}
	r.mu.Unlock()

	r.write(map[string]any{
		"type":           "mix_started",
		"output_file":    info.OutputFile,
		"target_seconds": info.TargetSeconds,
		"timestamp":      r.timestamp(),
	})
}

// MixProgress emits at most one event per percent bucket unless five
// seconds have passed since the last one.
func (r *JSONReporter) MixProgress(progress ProgressSnapshot) {
	const progressBucketSize = 1
	const minInterval = 5 * time.Second

	bucket := int(progress.Percent) / progressBucketSize
	now := r.now()

	r.mu.Lock()
	intervalElapsed := r.lastProgressTime.IsZero() || now.Sub(r.lastProgressTime) >= minInterval
	shouldEmit := bucket > r.lastProgressBucket || intervalElapsed || progress.Percent >= 99.0

	if !shouldEmit {
		r.mu.Unlock()
		return
	}

	if bucket > r.lastProgressBucket {
		r.lastProgressBucket = bucket
	}
	r.lastProgressTime = now
	r.mu.Unlock()

	r.write(map[string]any{
		"type":           "mix_progress",
		"stage":          "mixing",
		"percent":        progress.Percent,
		"elapsed":        progress.ElapsedSecs,
		"target_seconds": progress.TargetSeconds,
		"eta_seconds":    int64(progress.ETA.Seconds()),
		"timestamp":      r.timestamp(),
	})
}

func (r *JSONReporter) MixComplete(summary MixOutcome) {
	event := map[string]any{
		"type":             "mix_complete",
		"output_path":      summary.OutputPath,
		"target_seconds":   summary.TargetSeconds,
		"file_size":        summary.FileSize,
		"duration_seconds": int64(summary.TotalTime.Seconds()),
		"policy":           summary.Policy,
		"timestamp":        r.timestamp(),
	}
	if summary.Substitution != "" {
		event["substitution"] = summary.Substitution
	}
	r.write(event)
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]any{
		"type":      "warning",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write(map[string]any{
		"type":       "error",
		"title":      err.Title,
		"message":    err.Message,
		"context":    err.Context,
		"suggestion": err.Suggestion,
		"timestamp":  r.timestamp(),
	})
}

func (r *JSONReporter) OperationComplete(message string) {
	r.write(map[string]any{
		"type":      "operation_complete",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) BatchStarted(info BatchStartInfo) {
	r.write(map[string]any{
		"type":       "batch_started",
		"total_jobs": info.TotalJobs,
		"job_names":  info.JobNames,
		"timestamp":  r.timestamp(),
	})
}

func (r *JSONReporter) JobProgress(context JobProgressContext) {
	r.write(map[string]any{
		"type":        "job_progress",
		"current_job": context.CurrentJob,
		"total_jobs":  context.TotalJobs,
		"name":        context.Name,
		"timestamp":   r.timestamp(),
	})
}

func (r *JSONReporter) BatchComplete(summary BatchSummary) {
	results := make([]map[string]any, len(summary.JobResults))
	for i, res := range summary.JobResults {
		results[i] = map[string]any{
			"name":        res.Name,
			"output_path": res.OutputPath,
			"succeeded":   res.Succeeded,
			"error":       res.Error,
		}
	}
	r.write(map[string]any{
		"type":                   "batch_complete",
		"successful_count":       summary.SuccessfulCount,
		"total_jobs":             summary.TotalJobs,
		"total_duration_seconds": int64(summary.TotalDuration.Seconds()),
		"job_results":            results,
		"timestamp":              r.timestamp(),
	})
}

// Verbose messages are not part of the event stream.
func (r *JSONReporter) Verbose(string) {}
