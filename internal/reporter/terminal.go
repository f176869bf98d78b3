package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/five82/mixit/internal/config"
	"github.com/five82/mixit/internal/util"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu          sync.Mutex
	out         io.Writer
	errOut      io.Writer
	interactive bool
	verbose     bool

	progress   *progressbar.ProgressBar
	maxPercent float32
	lastLogged int
	lastStage  string
	cyan       *color.Color
	green      *color.Color
	greenBold  *color.Color
	yellow     *color.Color
	red        *color.Color
	magenta    *color.Color
	bold       *color.Color
	faint      *color.Color
}

// NewTerminalReporter creates a reporter on stdout and stderr. The progress
// bar and colours are only used when stderr is a terminal.
func NewTerminalReporter(verbose bool) *TerminalReporter {
	fd := os.Stderr.Fd()
	interactive := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	return NewTerminalReporterWithWriters(os.Stdout, os.Stderr, interactive, verbose)
}

// NewTerminalReporterWithWriters creates a terminal reporter with custom
// writers. Non-interactive reporters print plain progress lines instead of a
// bar.
func NewTerminalReporterWithWriters(out, errOut io.Writer, interactive, verbose bool) *TerminalReporter {
	r := &TerminalReporter{
		out:         out,
		errOut:      errOut,
		interactive: interactive,
		verbose:     verbose,
		lastLogged:  -1,
		cyan:        color.New(color.FgCyan, color.Bold),
		green:       color.New(color.FgGreen),
		greenBold:   color.New(color.FgGreen, color.Bold),
		yellow:      color.New(color.FgYellow, color.Bold),
		red:         color.New(color.FgRed, color.Bold),
		magenta:     color.New(color.FgMagenta),
		bold:        color.New(color.Bold),
		faint:       color.New(color.Faint),
	}
	if !interactive {
		for _, c := range []*color.Color{r.cyan, r.green, r.greenBold, r.yellow, r.red, r.magenta, r.bold, r.faint} {
			c.DisableColor()
		}
	}
	return r
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.maxPercent = 0
	r.lastLogged = -1
}

func (r *TerminalReporter) println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

func (r *TerminalReporter) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

func (r *TerminalReporter) header(title string) {
	r.println()
	_, _ = r.cyan.Fprintln(r.out, title)
}

// printLabel prints a bold label with fixed width padding followed by a value.
// Width is applied to the plain text before styling to ensure proper alignment.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	r.printf("  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) Hardware(summary HardwareSummary) {
	r.header("HARDWARE")
	r.printLabel(10, "Hostname:", summary.Hostname)
	r.printLabel(10, "CPUs:", fmt.Sprint(summary.NumCPU))
}

func (r *TerminalReporter) Initialization(summary InitializationSummary) {
	r.header("JOB")
	r.printLabel(10, "Videos:", fmt.Sprintf("%s (%d files)", summary.VideoDir, summary.VideoFiles))
	if summary.MusicDir != "" {
		r.printLabel(10, "Music:", fmt.Sprintf("%s (%d files)", summary.MusicDir, summary.AudioFiles))
	} else {
		r.printLabel(10, "Music:", r.faint.Sprint("none, keeping original audio"))
	}
	r.printLabel(10, "Target:", summary.Target)
	r.printLabel(10, "Blend:", summary.Blend)
	r.printLabel(10, "Format:", summary.Container)
	r.printLabel(10, "Output:", summary.OutputFile)
}

func (r *TerminalReporter) StageProgress(update StageProgress) {
	r.mu.Lock()
	newStage := r.lastStage != update.Stage
	r.lastStage = update.Stage
	r.mu.Unlock()

	if newStage {
		r.header(strings.ToUpper(update.Stage))
	}
	r.printf("  %s %s\n", r.magenta.Sprint("›"), update.Message)
}

func (r *TerminalReporter) PlanReady(summary PlanSummary) {
	r.header("PLAN")
	const w = 10
	r.printLabel(w, "Video:", fmt.Sprintf("%d clips, %s", summary.VideoClips, util.FormatDuration(summary.VideoSeconds)))
	if summary.AudioTracks > 0 {
		audio := fmt.Sprintf("%d tracks, %s", summary.AudioTracks, util.FormatDuration(summary.AudioSeconds))
		if summary.Stages > 0 {
			audio += fmt.Sprintf(" (%s after %d crossfades)", util.FormatDuration(summary.EffectiveSeconds), summary.Stages)
		}
		r.printLabel(w, "Audio:", audio)
	}
	r.printLabel(w, "Target:", util.FormatDuration(summary.TargetSeconds))
	r.printLabel(w, "Blend:", summary.Policy)
	r.printLabel(w, "Format:", summary.Container)
	if summary.Estimate > 0 {
		r.printLabel(w, "Estimate:", "~"+util.FormatDuration(summary.Estimate.Seconds()))
	}
	if r.verbose && summary.CommandLine != "" {
		r.printLabel(w, "Command:", r.faint.Sprint(summary.CommandLine))
	}
}

func (r *TerminalReporter) MixStarted(info MixStartInfo) {
	r.finishProgress()

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.interactive {
		r.printf("Mixing %s (%s)\n", info.OutputFile, util.FormatDuration(info.TargetSeconds))
		return
	}

	r.progress = progressbar.NewOptions64(
		100,
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(r.errOut),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "Mixing [",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) MixProgress(progress ProgressSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clamped := min(max(progress.Percent, 0), 100)
	if clamped < r.maxPercent {
		return
	}
	r.maxPercent = clamped

	desc := fmt.Sprintf("%s / %s, eta %s",
		util.FormatDuration(progress.ElapsedSecs),
		util.FormatDuration(progress.TargetSeconds),
		util.FormatDuration(progress.ETA.Seconds()))

	if r.progress != nil {
		_ = r.progress.Set64(int64(clamped))
		r.progress.Describe(desc)
		return
	}

	// Plain output: one line per interval.
	step := int(clamped) / int(config.ProgressLogIntervalPercent)
	if step > r.lastLogged {
		r.lastLogged = step
		r.printf("  %3.0f%% %s\n", clamped, desc)
	}
}

func (r *TerminalReporter) MixComplete(summary MixOutcome) {
	r.finishProgress()

	r.header("RESULTS")
	r.printf("  %s %s\n", r.bold.Sprint("Output:"), r.bold.Sprint(summary.OutputPath))
	r.printLabel(9, "Length:", util.FormatDuration(summary.TargetSeconds))
	if summary.FileSize > 0 {
		r.printLabel(9, "Size:", util.FormatBytes(summary.FileSize))
	}
	r.printLabel(9, "Blend:", summary.Policy)
	r.printLabel(9, "Time:", util.FormatDuration(summary.TotalTime.Seconds()))
	if summary.Substitution != "" {
		r.printLabel(9, "Note:", summary.Substitution)
	}
	r.printf("  %s %s\n", r.bold.Sprint("Saved to"), r.green.Sprint(summary.OutputPath))
}

func (r *TerminalReporter) Warning(message string) {
	r.println()
	_, _ = r.yellow.Fprintf(r.out, "WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	r.finishProgress()

	_, _ = fmt.Fprintln(r.errOut)
	_, _ = r.red.Fprintf(r.errOut, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(r.errOut, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) OperationComplete(message string) {
	r.println()
	r.printf("%s %s\n", r.greenBold.Sprint("✓"), r.bold.Sprint(message))
}

func (r *TerminalReporter) BatchStarted(info BatchStartInfo) {
	r.header("BATCH")
	r.printf("  Running %d jobs\n", info.TotalJobs)
	for i, name := range info.JobNames {
		r.printf("  %d. %s\n", i+1, name)
	}
}

func (r *TerminalReporter) JobProgress(context JobProgressContext) {
	r.printf("\nJob %s of %d: %s\n",
		r.bold.Sprint(context.CurrentJob),
		context.TotalJobs,
		context.Name)
}

func (r *TerminalReporter) BatchComplete(summary BatchSummary) {
	r.header("BATCH SUMMARY")
	r.printf("  %s\n", r.bold.Sprintf("%d of %d succeeded", summary.SuccessfulCount, summary.TotalJobs))
	r.printf("  Time: %s\n", util.FormatDuration(summary.TotalDuration.Seconds()))

	for _, result := range summary.JobResults {
		if result.Succeeded {
			r.printf("  %s %s -> %s\n", r.green.Sprint("✓"), result.Name, result.OutputPath)
		} else {
			r.printf("  %s %s: %s\n", r.red.Sprint("✗"), result.Name, result.Error)
		}
	}
}

func (r *TerminalReporter) Verbose(message string) {
	if !r.verbose {
		return
	}
	r.printf("  %s\n", r.faint.Sprint(message))
}
