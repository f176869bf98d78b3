package ffmpeg

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/five82/mixit/internal/errors"
	"github.com/five82/mixit/internal/logging"
)

// errIdle is the cancellation cause recorded by the idle watchdog.
var errIdle = stderrors.New("ffmpeg produced no output within the idle timeout")

// stderrTailLines is how much of ffmpeg's output a failure error quotes.
const stderrTailLines = 5

// LineCallback receives every raw stderr line.
type LineCallback func(line string)

// ProgressCallback is called whenever the progress fraction advances.
type ProgressCallback func(ProgressState)

// Callbacks groups the per-run observers. Either may be nil.
type Callbacks struct {
	OnLine     LineCallback
	OnProgress ProgressCallback
}

// RunResult describes a finished run. It is returned on failure too, so the
// raw lines stay available.
type RunResult struct {
	OutputPath string
	ExitCode   int
	Lines      []string
	Progress   ProgressState
	Elapsed    time.Duration
}

// Runner executes command graphs.
type Runner struct {
	binary      string
	spawner     Spawner
	idleTimeout time.Duration
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithSpawner replaces the process spawner.
func WithSpawner(s Spawner) RunnerOption {
	return func(r *Runner) {
		if s != nil {
			r.spawner = s
		}
	}
}

// WithIdleTimeout kills ffmpeg when it writes nothing for d. Zero disables
// the watchdog.
func WithIdleTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.idleTimeout = max(d, 0)
	}
}

// NewRunner creates a runner for binary. An empty binary means "ffmpeg" on
// PATH.
func NewRunner(binary string, opts ...RunnerOption) *Runner {
	if binary == "" {
		binary = "ffmpeg"
	}
	r := &Runner{binary: binary, spawner: ExecSpawner{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Binary returns the ffmpeg path the runner invokes.
func (r *Runner) Binary() string {
	return r.binary
}

// Run writes the graph's manifests, runs ffmpeg to completion and removes
// the manifests again whatever the outcome. target is the output duration in
// seconds used to normalize progress.
//
// Cancelling ctx kills the process. A nonzero exit yields a KindMixFailed
// error; the returned RunResult still carries every stderr line.
func (r *Runner) Run(ctx context.Context, g *CommandGraph, target float64, cb Callbacks) (*RunResult, error) {
	result := &RunResult{OutputPath: g.OutputPath, ExitCode: -1}

	if err := ctx.Err(); err != nil {
		return result, cancelledError(ctx)
	}

	if g.Manifests != nil {
		defer g.Manifests.Cleanup()
		if err := g.Manifests.Write(); err != nil {
			return result, errors.NewIOError("failed to write concat manifests", err)
		}
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	log := logging.Global().Component("ffmpeg")
	log.Info("starting", "command", g.CommandLine(r.binary))
	start := time.Now()

	proc, err := r.spawner.Spawn(runCtx, r.binary, g.Args())
	if err != nil {
		return result, errors.NewCommandStartError(r.binary, err)
	}

	// Kill the process as soon as the run is cancelled; Lines then ends
	// because the pipe closes.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-runCtx.Done():
			_ = proc.Kill()
		case <-stop:
		}
	}()

	var idle *time.Timer
	if r.idleTimeout > 0 {
		idle = time.AfterFunc(r.idleTimeout, func() { cancel(errIdle) })
	}

	tracker := NewProgressTracker(target)
	for line := range proc.Lines() {
		if idle != nil {
			idle.Reset(r.idleTimeout)
		}
		result.Lines = append(result.Lines, line)
		if cb.OnLine != nil {
			cb.OnLine(line)
		}
		if state, ok := tracker.Update(line); ok && cb.OnProgress != nil {
			cb.OnProgress(state)
		}
	}
	if idle != nil {
		idle.Stop()
	}

	exitCode, waitErr := proc.Wait()
	close(stop)
	wg.Wait()

	result.ExitCode = exitCode
	result.Elapsed = time.Since(start)
	result.Progress = tracker.Current()

	if exitCode != 0 && runCtx.Err() != nil {
		if context.Cause(runCtx) == errIdle {
			log.Warn("idle timeout", "timeout", r.idleTimeout)
			return result, errors.NewIdleTimeoutError(fmt.Sprintf("no output from ffmpeg for %s", r.idleTimeout))
		}
		return result, cancelledError(ctx)
	}
	if waitErr != nil {
		return result, errors.NewCommandWaitError(r.binary, waitErr)
	}
	if exitCode != 0 {
		log.Error("exited with error", "exit_code", exitCode)
		cmdErr := &errors.CommandError{
			Command:  r.binary,
			Kind:     errors.CommandFailed,
			ExitCode: exitCode,
			Stderr:   tail(result.Lines, stderrTailLines),
		}
		return result, errors.NewMixFailedError(exitCode, cmdErr)
	}

	result.Progress = tracker.Complete()
	if cb.OnProgress != nil {
		cb.OnProgress(result.Progress)
	}
	log.Info("finished", "output", g.OutputPath, "elapsed", result.Elapsed.Round(time.Millisecond))
	return result, nil
}

func cancelledError(ctx context.Context) error {
	err := errors.NewCancelledError()
	err.Underlying = ctx.Err()
	return err
}

func tail(lines []string, n int) string {
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
