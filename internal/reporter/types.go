// Package reporter provides progress reporting interfaces and implementations.
package reporter

import "time"

// HardwareSummary contains hardware information.
type HardwareSummary struct {
	Hostname string
	NumCPU   int
}

// InitializationSummary describes a job before planning.
type InitializationSummary struct {
	JobID      string
	VideoDir   string
	MusicDir   string
	OutputFile string
	Target     string
	Blend      string
	Container  string
	VideoFiles int
	AudioFiles int
}

// PlanSummary describes the selected playlists and the ffmpeg graph.
type PlanSummary struct {
	VideoClips       int
	VideoSeconds     float64
	AudioTracks      int
	AudioSeconds     float64
	EffectiveSeconds float64
	TargetSeconds    float64
	Policy           string
	Container        string
	Stages           int
	Substitution     string
	CommandLine      string
	Estimate         time.Duration
}

// MixStartInfo is sent right before ffmpeg starts.
type MixStartInfo struct {
	OutputFile    string
	TargetSeconds float64
}

// ProgressSnapshot contains mix progress information.
type ProgressSnapshot struct {
	Percent       float32
	ElapsedSecs   float64
	TargetSeconds float64
	WallTime      time.Duration
	ETA           time.Duration
}

// MixOutcome contains final mix results.
type MixOutcome struct {
	OutputPath    string
	TargetSeconds float64
	FileSize      uint64
	TotalTime     time.Duration
	Policy        string
	Substitution  string
}

// ReporterError contains error information.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}

// BatchStartInfo contains batch start metadata.
type BatchStartInfo struct {
	TotalJobs int
	JobNames  []string
}

// JobProgressContext contains the current job index within a batch.
type JobProgressContext struct {
	CurrentJob int
	TotalJobs  int
	Name       string
}

// BatchSummary contains batch completion information.
type BatchSummary struct {
	SuccessfulCount int
	TotalJobs       int
	TotalDuration   time.Duration
	JobResults      []JobResult
}

// JobResult contains a per-job outcome.
type JobResult struct {
	Name       string
	OutputPath string
	Succeeded  bool
	Error      string
}

// StageProgress represents a generic stage update.
type StageProgress struct {
	Stage   string
	Percent float32
	Message string
	ETA     *time.Duration
}
