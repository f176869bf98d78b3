package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/five82/mixit"
	"github.com/five82/mixit/internal/config"
	"github.com/five82/mixit/internal/ffmpeg"
	"github.com/five82/mixit/internal/reporter"
	"github.com/five82/mixit/internal/util"
)

type mixFlags struct {
	videoDir    string
	musicDir    string
	minutes     float64
	blend       string
	crossfade   float64
	format      string
	output      string
	outputDir   string
	order       string
	manualOrder []string
	seed        uint64
}

func (f *mixFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.videoDir, "video-dir", "i", "", "Folder of video clips (required)")
	fs.StringVarP(&f.musicDir, "music-dir", "m", "", "Folder of music tracks (omit to keep the clips' audio)")
	fs.Float64VarP(&f.minutes, "duration", "d", 0, "Target duration in minutes (required)")
	fs.StringVarP(&f.blend, "blend", "b", "fast", "Audio blending: none, fast or crossfade")
	fs.Float64Var(&f.crossfade, "crossfade", 0, "Crossfade window in seconds (default from config)")
	fs.StringVarP(&f.format, "format", "f", "", "Output container: mp4, mkv, mov or webm")
	fs.StringVarP(&f.output, "output", "o", "", "Output file name")
	fs.StringVar(&f.outputDir, "output-dir", "", "Output directory (default: the video folder)")
	fs.StringVar(&f.order, "order", "random", "Track order: random, alphabetical or manual")
	fs.StringSliceVar(&f.manualOrder, "manual-order", nil, "Track file names in play order (with --order manual)")
	fs.Uint64Var(&f.seed, "seed", 0, "Seed for reproducible clip and track selection")
	_ = cmd.MarkFlagRequired("video-dir")
	_ = cmd.MarkFlagRequired("duration")
}

func (f *mixFlags) job() (mixit.Job, error) {
	blend, err := mixit.ParseBlend(f.blend)
	if err != nil {
		return mixit.Job{}, err
	}
	videoDir, err := filepath.Abs(f.videoDir)
	if err != nil {
		return mixit.Job{}, fmt.Errorf("invalid video directory: %w", err)
	}
	job := mixit.Job{
		VideoDir:         videoDir,
		Duration:         time.Duration(f.minutes * float64(time.Minute)),
		Blend:            blend,
		CrossfadeSeconds: f.crossfade,
		Output:           f.output,
		Format:           f.format,
		Order:            f.order,
		ManualOrder:      f.manualOrder,
	}
	if f.musicDir != "" {
		if job.MusicDir, err = filepath.Abs(f.musicDir); err != nil {
			return mixit.Job{}, fmt.Errorf("invalid music directory: %w", err)
		}
	}
	if f.outputDir != "" {
		if job.OutputDir, err = filepath.Abs(f.outputDir); err != nil {
			return mixit.Job{}, fmt.Errorf("invalid output directory: %w", err)
		}
	}
	return job, nil
}

// outputPath mirrors the path the mixer will write, so the CLI can lock it
// and place logs beside it before the job starts.
func (f *mixFlags) outputPath(cfg *config.Config, job mixit.Job) (string, error) {
	format, err := config.ParseContainer(firstNonEmpty(job.Format, cfg.Mix.Container))
	if err != nil {
		return "", err
	}
	actual, _, err := ffmpeg.ResolveContainer(format)
	if err != nil {
		return "", err
	}
	return util.ResolveMixOutput(job.OutputDir, job.Output, cfg.Mix.OutputName, actual, job.VideoDir), nil
}

func (f *mixFlags) mixerOptions(cmd *cobra.Command, cfg *config.Config, s *session) []mixit.Option {
	opts := []mixit.Option{
		mixit.WithConfig(cfg),
		mixit.WithReporter(s.reporter),
		mixit.WithLogFile(s.fileLog),
	}
	if cmd.Flags().Changed("seed") {
		opts = append(opts, mixit.WithSeed(f.seed))
	}
	return opts
}

func newMixCommand(ctx *commandContext) *cobra.Command {
	var flags mixFlags

	cmd := &cobra.Command{
		Use:   "mix",
		Short: "Assemble a mix from a clip folder and an optional music folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			job, err := flags.job()
			if err != nil {
				return err
			}
			output, err := flags.outputPath(cfg, job)
			if err != nil {
				return err
			}
			if err := util.EnsureDirectory(filepath.Dir(output)); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			unlock, err := lockOutput(output)
			if err != nil {
				return err
			}
			defer unlock()

			s, err := ctx.openSession(cmd, filepath.Dir(output))
			if err != nil {
				return err
			}
			defer s.Close()

			mixer, err := mixit.New(flags.mixerOptions(cmd, cfg, s)...)
			if err != nil {
				s.reporter.Error(reporter.ReporterError{Title: "Setup Error", Message: err.Error()})
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := mixer.Mix(runCtx, job, nil)
			if err != nil {
				s.fileLog.Error("Mix failed: %v", err)
				if runCtx.Err() != nil {
					return context.Canceled
				}
				return err
			}
			s.fileLog.Info("Mix written to %s in %s", res.OutputPath, util.FormatDuration(res.Elapsed.Seconds()))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// lockOutput takes an exclusive lock beside output so two mixit processes
// never write the same file.
func lockOutput(output string) (func(), error) {
	lockPath := output + ".lock"
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another mixit process is already writing %s", output)
	}
	return func() {
		_ = lock.Unlock()
		_ = os.Remove(lockPath)
	}, nil
}

func describeOrder(order string, manual []string) string {
	if len(manual) == 0 {
		return order
	}
	return fmt.Sprintf("%s (%s)", order, strings.Join(manual, ", "))
}
