package processing

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/five82/mixit/internal/config"
	"github.com/five82/mixit/internal/deps"
	"github.com/five82/mixit/internal/discovery"
	"github.com/five82/mixit/internal/errors"
	"github.com/five82/mixit/internal/ffmpeg"
	"github.com/five82/mixit/internal/ffprobe"
	"github.com/five82/mixit/internal/logging"
	"github.com/five82/mixit/internal/manifest"
	"github.com/five82/mixit/internal/media"
	"github.com/five82/mixit/internal/planner"
	"github.com/five82/mixit/internal/reporter"
	"github.com/five82/mixit/internal/util"
)

// Plan is a fully resolved job: selected playlists plus the ffmpeg graph.
type Plan struct {
	Job        *MixJob
	Video      media.Playlist
	Audio      media.Playlist
	Policy     ffmpeg.BlendPolicy
	Graph      *ffmpeg.CommandGraph
	VideoFiles int
	AudioFiles int
	Estimate   time.Duration
}

// MixResult describes a finished job.
type MixResult struct {
	JobID        string
	OutputPath   string
	Policy       ffmpeg.BlendPolicy
	Substitution *ffmpeg.Substitution
	Elapsed      time.Duration
	Lines        []string
	Plan         *Plan
}

// Engine runs mix jobs. The prober cache is shared by every job an engine
// runs, so repeated batch jobs over the same folders probe each file once.
type Engine struct {
	cfg     *config.Config
	prober  ffprobe.Prober
	runner  *ffmpeg.Runner
	planner *planner.Planner
	rep     reporter.Reporter
	fileLog *logging.FileLogger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithProber replaces the duration prober. It is wrapped in a cache unless
// it already is one.
func WithProber(p ffprobe.Prober) EngineOption {
	return func(e *Engine) {
		if p != nil {
			e.prober = p
		}
	}
}

// WithRunner replaces the ffmpeg runner.
func WithRunner(r *ffmpeg.Runner) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithPlanner replaces the playlist planner, typically to fix the seed.
func WithPlanner(p *planner.Planner) EngineOption {
	return func(e *Engine) {
		if p != nil {
			e.planner = p
		}
	}
}

// WithReporter sets the progress reporter.
func WithReporter(r reporter.Reporter) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.rep = r
		}
	}
}

// WithFileLogger sets the per-run log file.
func WithFileLogger(l *logging.FileLogger) EngineOption {
	return func(e *Engine) {
		e.fileLog = l
	}
}

// NewEngine creates an engine using the resolved tool paths.
func NewEngine(cfg *config.Config, tools deps.Tools, opts ...EngineOption) *Engine {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	e := &Engine{
		cfg: cfg,
		rep: reporter.NullReporter{},
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.prober == nil {
		e.prober = ffprobe.NewDurationProber(tools.FFprobe, ffprobe.WithDiagnostic(func(path string, err error) {
			e.fileLog.Warn("could not probe %s: %v", path, err)
		}))
	}
	if _, cached := e.prober.(*ffprobe.CachedProber); !cached {
		e.prober = ffprobe.NewCachedProber(e.prober)
	}

	if e.runner == nil {
		e.runner = ffmpeg.NewRunner(tools.FFmpeg,
			ffmpeg.WithIdleTimeout(time.Duration(cfg.Mix.IdleTimeoutSeconds)*time.Second))
	}
	if e.planner == nil {
		e.planner = planner.New(nil,
			planner.WithVideoBuffer(cfg.Mix.VideoBufferSeconds),
			planner.WithMaxPasses(cfg.Mix.MaxPlanPasses))
	}
	return e
}

// Reporter returns the engine's reporter.
func (e *Engine) Reporter() reporter.Reporter {
	return e.rep
}

// Plan scans, probes and selects playlists for job and builds its ffmpeg
// graph. Nothing is written to disk.
func (e *Engine) Plan(ctx context.Context, job *MixJob) (*Plan, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	e.rep.StageProgress(reporter.StageProgress{Stage: "scanning", Message: fmt.Sprintf("Scanning %s", job.VideoDir)})
	videoFiles := discovery.FindMediaFilesWithLogging(job.VideoDir, media.Video, e.fileLog).Files
	if len(videoFiles) == 0 {
		return nil, errors.NewNoFilesFoundError(job.VideoDir)
	}

	// BlendNone keeps the clips' audio, so music is neither scanned nor probed.
	var audioFiles []string
	if job.Policy != ffmpeg.BlendNone {
		audioFiles = job.AudioPaths
		if audioFiles == nil && job.MusicDir != "" {
			audioFiles = discovery.FindMediaFilesWithLogging(job.MusicDir, media.Audio, e.fileLog).Files
		}
		audioFiles = e.planner.ApplyOrder(audioFiles, job.Order, job.ManualOrder)
	}

	e.rep.Initialization(reporter.InitializationSummary{
		JobID:      job.ID,
		VideoDir:   job.VideoDir,
		MusicDir:   job.MusicDir,
		OutputFile: job.OutputPath,
		Target:     util.FormatMinutes(job.Target),
		Blend:      job.Policy.String(),
		Container:  job.Container,
		VideoFiles: len(videoFiles),
		AudioFiles: len(audioFiles),
	})

	workers := util.ProbeWorkers(e.cfg.Mix.ProbeWorkers)
	e.rep.StageProgress(reporter.StageProgress{
		Stage:   "probing",
		Message: fmt.Sprintf("Reading durations of %d video and %d audio files", len(videoFiles), len(audioFiles)),
	})
	videoPool, err := ffprobe.ProbeAll(ctx, e.prober, videoFiles, media.Video, workers)
	if err != nil {
		return nil, cancelled(ctx, err)
	}
	audioPool, err := ffprobe.ProbeAll(ctx, e.prober, audioFiles, media.Audio, workers)
	if err != nil {
		return nil, cancelled(ctx, err)
	}
	e.fileLog.Info("Video pool: %d files, %s", len(videoPool), util.FormatDuration(media.TotalDuration(videoPool)))
	e.fileLog.Info("Audio pool: %d files, %s", len(audioPool), util.FormatDuration(media.TotalDuration(audioPool)))

	policy := job.Policy
	if policy != ffmpeg.BlendNone && len(audioPool) == 0 {
		e.rep.Warning("No audio files found; keeping the original video audio")
		policy = ffmpeg.BlendNone
	}

	e.rep.StageProgress(reporter.StageProgress{Stage: "planning", Message: fmt.Sprintf("Planning %s of output", util.FormatMinutes(job.Target))})
	video, err := e.planner.SelectVideo(videoPool, job.Target)
	if err != nil {
		return nil, errors.NewPlanExhaustedError("could not plan video", err)
	}

	var audio media.Playlist
	switch policy {
	case ffmpeg.BlendFastConcat:
		audio, err = e.planner.SelectAudioConcat(audioPool, job.Target)
	case ffmpeg.BlendCrossfade:
		audio, err = e.planner.SelectAudioCrossfade(audioPool, job.Target, job.Crossfade.Window)
	}
	if err != nil {
		return nil, errors.NewPlanExhaustedError("could not plan audio", err)
	}

	graph, err := ffmpeg.BuildGraph(ffmpeg.GraphRequest{
		Video:      video,
		Audio:      audio,
		Target:     job.Target,
		Policy:     policy,
		Crossfade:  job.Crossfade,
		Encoding:   ffmpeg.AudioEncoding{Codec: e.cfg.Mix.AudioCodec, Bitrate: e.cfg.Mix.AudioBitrate},
		OutputPath: job.OutputPath,
		Container:  job.Container,
		Manifests:  manifest.NewSet(e.cfg.GetTempDir(), job.ID),
	})
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Job:        job,
		Video:      video,
		Audio:      audio,
		Policy:     policy,
		Graph:      graph,
		VideoFiles: len(videoFiles),
		AudioFiles: len(audioFiles),
		Estimate:   EstimateRuntime(job.Target, policy),
	}

	summary := reporter.PlanSummary{
		VideoClips:       video.Len(),
		VideoSeconds:     video.Duration,
		AudioTracks:      audio.Len(),
		AudioSeconds:     audio.Duration,
		EffectiveSeconds: audio.EffectiveDuration,
		TargetSeconds:    job.Target,
		Policy:           policy.String(),
		Container:        graph.Container,
		Stages:           graph.Stages,
		CommandLine:      graph.CommandLine(e.runner.Binary()),
		Estimate:         plan.Estimate,
	}
	if graph.Substitution != nil {
		summary.Substitution = graph.Substitution.String()
		e.rep.Warning(graph.Substitution.String())
	}
	e.rep.PlanReady(summary)
	e.fileLog.Info("Plan: %d clips (%s), %d tracks (%s), policy %s",
		video.Len(), util.FormatDuration(video.Duration), audio.Len(), util.FormatDuration(audio.Duration), policy)
	return plan, nil
}

// Run plans job and executes it. observe receives every raw ffmpeg line and
// progress update in addition to the reporter.
func (e *Engine) Run(ctx context.Context, job *MixJob, observe ffmpeg.Callbacks) (*MixResult, error) {
	plan, err := e.Plan(ctx, job)
	if err != nil {
		e.reportFailure(job, err)
		return nil, err
	}
	return e.Execute(ctx, plan, observe)
}

// Execute runs a plan produced by Plan.
func (e *Engine) Execute(ctx context.Context, plan *Plan, observe ffmpeg.Callbacks) (*MixResult, error) {
	job := plan.Job
	g := plan.Graph

	outDir := filepath.Dir(g.OutputPath)
	if err := util.EnsureDirectory(outDir); err != nil {
		err = errors.NewIOError("could not create output directory", err)
		e.reportFailure(job, err)
		return nil, err
	}
	if err := util.CheckWritableDir(outDir); err != nil {
		err = errors.NewPathError(err.Error())
		e.reportFailure(job, err)
		return nil, err
	}

	e.rep.MixStarted(reporter.MixStartInfo{OutputFile: g.OutputPath, TargetSeconds: job.Target})
	start := time.Now()

	cb := ffmpeg.Callbacks{
		OnLine: func(line string) {
			e.fileLog.Debug("ffmpeg: %s", line)
			if observe.OnLine != nil {
				observe.OnLine(line)
			}
		},
		OnProgress: func(state ffmpeg.ProgressState) {
			e.rep.MixProgress(snapshot(state, job.Target, time.Since(start)))
			if observe.OnProgress != nil {
				observe.OnProgress(state)
			}
		},
	}

	run, err := e.runner.Run(ctx, g, job.Target, cb)
	result := &MixResult{
		JobID:        job.ID,
		OutputPath:   g.OutputPath,
		Policy:       plan.Policy,
		Substitution: g.Substitution,
		Plan:         plan,
	}
	if run != nil {
		result.Elapsed = run.Elapsed
		result.Lines = run.Lines
	}
	if err != nil {
		e.reportFailure(job, err)
		return result, err
	}

	size, _ := util.GetFileSize(g.OutputPath)
	outcome := reporter.MixOutcome{
		OutputPath:    g.OutputPath,
		TargetSeconds: job.Target,
		FileSize:      size,
		TotalTime:     result.Elapsed,
		Policy:        plan.Policy.String(),
	}
	if g.Substitution != nil {
		outcome.Substitution = g.Substitution.String()
	}
	e.rep.MixComplete(outcome)
	e.fileLog.Info("Mix complete: %s in %s", g.OutputPath, result.Elapsed.Round(time.Second))
	return result, nil
}

func (e *Engine) reportFailure(job *MixJob, err error) {
	e.fileLog.Error("%s: %v", job.DisplayName(), err)
	if errors.IsCancelled(err) {
		e.rep.Warning("Mix cancelled")
		return
	}
	e.rep.Error(describeError(job, err))
}

func describeError(job *MixJob, err error) reporter.ReporterError {
	re := reporter.ReporterError{
		Title:   "Mix Error",
		Message: err.Error(),
		Context: fmt.Sprintf("Job: %s", job.DisplayName()),
	}
	switch {
	case errors.IsNoFilesFound(err):
		re.Title = "No Videos"
		re.Suggestion = "Supported video formats are mp4, mov, avi and mkv"
	case errors.IsKind(err, errors.KindPlanExhausted):
		re.Title = "Planning Error"
		re.Suggestion = "Check that the source files are readable media with a known duration"
		if stderrors.Is(err, planner.ErrNoEligibleTracks) {
			re.Suggestion = "Use longer tracks or a shorter crossfade window"
		}
	case errors.IsMixFailed(err):
		re.Title = "FFmpeg Error"
		re.Suggestion = errors.MixFailedHint
	case errors.IsKind(err, errors.KindIdleTimeout):
		re.Title = "FFmpeg Stalled"
		re.Suggestion = "Increase mix.idle_timeout_seconds or check the source files"
	}
	return re
}

func snapshot(state ffmpeg.ProgressState, target float64, wall time.Duration) reporter.ProgressSnapshot {
	s := reporter.ProgressSnapshot{
		Percent:       float32(state.Percent()),
		ElapsedSecs:   state.ElapsedSecs,
		TargetSeconds: target,
		WallTime:      wall,
	}
	if state.Fraction > 0 && state.Fraction < 1 {
		total := float64(wall) / state.Fraction
		s.ETA = time.Duration(total - float64(wall)).Round(time.Second)
	}
	return s
}

func cancelled(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		cerr := errors.NewCancelledError()
		cerr.Underlying = ctx.Err()
		return cerr
	}
	return errors.NewIOError("probing failed", err)
}
