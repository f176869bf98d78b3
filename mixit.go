// Package mixit assembles long-form videos from folders of short clips and
// music tracks without re-encoding the video.
//
// Basic usage:
//
//	mixer, err := mixit.New(mixit.WithSeed(42))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := mixer.Mix(ctx, mixit.Job{
//	    VideoDir: "clips/",
//	    MusicDir: "music/",
//	    Duration: time.Hour,
//	    Blend:    mixit.BlendCrossfade,
//	}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Wrote", result.OutputPath)
package mixit

import (
	"context"
	"time"

	"github.com/five82/mixit/internal/config"
	"github.com/five82/mixit/internal/deps"
	"github.com/five82/mixit/internal/discovery"
	"github.com/five82/mixit/internal/errors"
	"github.com/five82/mixit/internal/ffmpeg"
	"github.com/five82/mixit/internal/ffprobe"
	"github.com/five82/mixit/internal/logging"
	"github.com/five82/mixit/internal/media"
	"github.com/five82/mixit/internal/planner"
	"github.com/five82/mixit/internal/processing"
	"github.com/five82/mixit/internal/reporter"
	"github.com/five82/mixit/internal/util"
)

// eventBuffer is the capacity of the channel returned by Submit.
const eventBuffer = 64

// Blend selects how the audio path is assembled.
type Blend = ffmpeg.BlendPolicy

const (
	BlendNone       = ffmpeg.BlendNone
	BlendFastConcat = ffmpeg.BlendFastConcat
	BlendCrossfade  = ffmpeg.BlendCrossfade
)

// ParseBlend converts "none", "fast" or "crossfade" to a Blend.
func ParseBlend(s string) (Blend, error) {
	return ffmpeg.ParseBlendPolicy(s)
}

// Reporter receives detailed progress updates.
type Reporter = reporter.Reporter

// Job describes one mix.
type Job struct {
	VideoDir string
	// MusicDir is scanned for audio when AudioFiles is nil. Leave both empty
	// to keep the clips' own audio.
	MusicDir   string
	AudioFiles []string

	Duration time.Duration
	Blend    Blend

	// CrossfadeSeconds overrides the configured window when positive.
	CrossfadeSeconds float64

	// Output is a file name or path. A bare name is placed in OutputDir, or
	// in VideoDir when OutputDir is empty.
	Output    string
	OutputDir string
	Format    string

	// Order is "random", "alphabetical" or "manual".
	Order       string
	ManualOrder []string
}

// Result describes a finished mix.
type Result struct {
	OutputPath   string
	Substitution string
	Blend        Blend
	Elapsed      time.Duration
}

// Mixer runs mix jobs. It is safe for concurrent use; every job gets its own
// planner and manifests.
type Mixer struct {
	cfg     *config.Config
	tools   deps.Tools
	prober  *ffprobe.CachedProber
	runner  *ffmpeg.Runner
	rep     reporter.Reporter
	fileLog *logging.FileLogger
	seed    *uint64

	ffmpegPath  string
	ffprobePath string
}

// Option configures a Mixer.
type Option func(*Mixer)

// WithConfig replaces the default configuration.
func WithConfig(cfg *config.Config) Option {
	return func(m *Mixer) {
		if cfg != nil {
			m.cfg = cfg
		}
	}
}

// WithTools sets explicit ffmpeg and ffprobe paths.
func WithTools(ffmpegPath, ffprobePath string) Option {
	return func(m *Mixer) {
		m.ffmpegPath = ffmpegPath
		m.ffprobePath = ffprobePath
	}
}

// WithSeed makes playlist selection reproducible.
func WithSeed(seed uint64) Option {
	return func(m *Mixer) {
		m.seed = &seed
	}
}

// WithReporter forwards detailed progress to r.
func WithReporter(r Reporter) Option {
	return func(m *Mixer) {
		m.rep = r
	}
}

// WithLogFile records each run in the given file logger.
func WithLogFile(l *logging.FileLogger) Option {
	return func(m *Mixer) {
		m.fileLog = l
	}
}

// New creates a Mixer. It fails when ffmpeg or ffprobe cannot be found.
func New(opts ...Option) (*Mixer, error) {
	m := &Mixer{cfg: config.NewConfig()}
	for _, opt := range opts {
		opt(m)
	}

	cfg := *m.cfg
	if m.ffmpegPath != "" {
		cfg.Tools.FFmpeg = m.ffmpegPath
	}
	if m.ffprobePath != "" {
		cfg.Tools.FFprobe = m.ffprobePath
	}
	m.cfg = &cfg
	if err := m.cfg.Validate(); err != nil {
		return nil, errors.NewConfigError(err.Error())
	}

	tools, err := deps.ResolveTools(m.cfg.Tools.FFmpeg, m.cfg.Tools.FFprobe)
	if err != nil {
		return nil, err
	}
	m.tools = tools
	m.prober = ffprobe.NewCachedProber(ffprobe.NewDurationProber(tools.FFprobe,
		ffprobe.WithDiagnostic(func(path string, err error) {
			m.fileLog.Warn("could not probe %s: %v", path, err)
		})))
	m.runner = ffmpeg.NewRunner(tools.FFmpeg,
		ffmpeg.WithIdleTimeout(time.Duration(m.cfg.Mix.IdleTimeoutSeconds)*time.Second))
	return m, nil
}

// Tools returns the resolved binary paths.
func (m *Mixer) Tools() (ffmpegPath, ffprobePath string) {
	return m.tools.FFmpeg, m.tools.FFprobe
}

func (m *Mixer) newJob(j Job) (*processing.MixJob, error) {
	format, err := config.ParseContainer(firstNonEmpty(j.Format, m.cfg.Mix.Container))
	if err != nil {
		return nil, errors.NewConfigError(err.Error())
	}
	output := util.ResolveMixOutput(j.OutputDir, j.Output, m.cfg.Mix.OutputName, format, j.VideoDir)

	job, err := processing.NewMixJob(j.VideoDir, output, j.Duration.Seconds())
	if err != nil {
		return nil, err
	}
	job.MusicDir = j.MusicDir
	job.AudioPaths = j.AudioFiles
	job.Policy = j.Blend
	job.Container = format
	job.Crossfade = ffmpeg.Crossfade{Window: m.cfg.Mix.CrossfadeSeconds, Curve: m.cfg.Mix.CrossfadeCurve}
	if j.CrossfadeSeconds > 0 {
		job.Crossfade.Window = j.CrossfadeSeconds
	}
	if job.Order, err = planner.ParseOrder(j.Order); err != nil {
		return nil, errors.NewConfigError(err.Error())
	}
	job.ManualOrder = j.ManualOrder
	return job, nil
}

func (m *Mixer) engine(rep reporter.Reporter) *processing.Engine {
	rng := planner.NewRand(uint64(time.Now().UnixNano()))
	if m.seed != nil {
		rng = planner.NewRand(*m.seed)
	}
	return processing.NewEngine(m.cfg, m.tools,
		processing.WithProber(m.prober),
		processing.WithRunner(m.runner),
		processing.WithPlanner(planner.New(rng,
			planner.WithVideoBuffer(m.cfg.Mix.VideoBufferSeconds),
			planner.WithMaxPasses(m.cfg.Mix.MaxPlanPasses))),
		processing.WithReporter(reporter.NewCompositeReporter(m.rep, rep)),
		processing.WithFileLogger(m.fileLog),
	)
}

// Submit starts job on its own goroutine. The channel yields line, progress
// and warning events followed by exactly one DoneEvent, then closes. After
// ctx is cancelled intermediate events may be dropped and the job never
// blocks on the channel, so a caller that cancels may stop reading.
func (m *Mixer) Submit(ctx context.Context, j Job) <-chan Event {
	events := make(chan Event, eventBuffer)

	go func() {
		defer close(events)
		// Once ctx is cancelled intermediate events are dropped so an
		// abandoned channel cannot block the job.
		send := func(ev Event) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		}

		job, err := m.newJob(j)
		if err != nil {
			finish(ctx, events, DoneEvent{BaseEvent: newBase(EventTypeDone), Err: err})
			return
		}

		eng := m.engine(&eventReporter{send: send})
		res, err := eng.Run(ctx, job, ffmpeg.Callbacks{
			OnLine: func(line string) {
				send(LineEvent{BaseEvent: newBase(EventTypeLine), Line: line})
			},
			OnProgress: func(s ffmpeg.ProgressState) {
				send(ProgressEvent{BaseEvent: newBase(EventTypeProgress), Fraction: s.Fraction, ElapsedSecs: s.ElapsedSecs})
			},
		})

		done := DoneEvent{BaseEvent: newBase(EventTypeDone), Err: err}
		if res != nil {
			done.OutputPath = res.OutputPath
			done.Elapsed = res.Elapsed
			done.Blend = res.Policy
			if res.Substitution != nil {
				done.Substitution = res.Substitution.String()
			}
		}
		finish(ctx, events, done)
	}()

	return events
}

// finish delivers the DoneEvent. If ctx is cancelled first, undelivered
// events are discarded to make room so the send cannot block.
func finish(ctx context.Context, events chan Event, done DoneEvent) {
	select {
	case events <- done:
		return
	case <-ctx.Done():
	}
	for {
		select {
		case <-events:
		default:
			events <- done
			return
		}
	}
}

// Mix runs job and blocks until it finishes. handler may be nil; an error
// from handler cancels the job and is returned.
func (m *Mixer) Mix(ctx context.Context, j Job, handler EventHandler) (*Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var handlerErr error
	var done DoneEvent
	for ev := range m.Submit(ctx, j) {
		if d, ok := ev.(DoneEvent); ok {
			done = d
		}
		if handler == nil || handlerErr != nil {
			continue
		}
		if err := handler(ev); err != nil {
			handlerErr = err
			cancel()
		}
	}

	if handlerErr != nil {
		return nil, handlerErr
	}
	if done.Err != nil {
		return nil, done.Err
	}
	return &Result{
		OutputPath:   done.OutputPath,
		Substitution: done.Substitution,
		Blend:        done.Blend,
		Elapsed:      done.Elapsed,
	}, nil
}

// PlanInfo previews a job without running ffmpeg.
type PlanInfo struct {
	OutputPath   string
	VideoClips   []string
	AudioTracks  []string
	VideoSeconds float64
	AudioSeconds float64
	Blend        Blend
	Stages       int
	Substitution string
	Command      string
	Estimate     time.Duration
}

// Plan scans, probes and plans job and returns the ffmpeg command it would
// run.
func (m *Mixer) Plan(ctx context.Context, j Job) (*PlanInfo, error) {
	job, err := m.newJob(j)
	if err != nil {
		return nil, err
	}
	plan, err := m.engine(reporter.NullReporter{}).Plan(ctx, job)
	if err != nil {
		return nil, err
	}
	info := &PlanInfo{
		OutputPath:   plan.Graph.OutputPath,
		VideoClips:   plan.Video.Paths(),
		AudioTracks:  plan.Audio.Paths(),
		VideoSeconds: plan.Video.Duration,
		AudioSeconds: plan.Audio.Duration,
		Blend:        plan.Policy,
		Stages:       plan.Graph.Stages,
		Command:      plan.Graph.CommandLine(m.runner.Binary()),
		Estimate:     plan.Estimate,
	}
	if plan.Graph.Substitution != nil {
		info.Substitution = plan.Graph.Substitution.String()
	}
	return info, nil
}

// FindVideos lists the video files directly inside dir.
func FindVideos(dir string) []string {
	return discovery.FindMediaFiles(dir, media.Video)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// eventReporter turns reporter warnings into job events.
type eventReporter struct {
	reporter.NullReporter
	send func(Event)
}

func (r *eventReporter) Warning(message string) {
	r.send(WarningEvent{BaseEvent: newBase(EventTypeWarning), Message: message})
}
