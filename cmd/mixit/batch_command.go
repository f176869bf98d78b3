package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/mixit/internal/config"
	"github.com/five82/mixit/internal/deps"
	"github.com/five82/mixit/internal/errors"
	"github.com/five82/mixit/internal/planner"
	"github.com/five82/mixit/internal/processing"
	"github.com/five82/mixit/internal/reporter"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var seed uint64

	cmd := &cobra.Command{
		Use:   "batch <file.toml>",
		Short: "Run every [[job]] in a batch file, one after another",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			entries, err := config.LoadBatch(args[0])
			if err != nil {
				return err
			}
			jobs := make([]*processing.MixJob, 0, len(entries))
			for i, entry := range entries {
				job, err := processing.JobFromBatch(cfg, entry, i)
				if err != nil {
					return fmt.Errorf("batch job %d (%s): %w", i+1, entry.Name, err)
				}
				jobs = append(jobs, job)
			}

			batchPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("invalid batch path: %w", err)
			}
			s, err := ctx.openSession(cmd, filepath.Dir(batchPath))
			if err != nil {
				return err
			}
			defer s.Close()
			s.fileLog.Info("Batch file: %s (%d jobs)", batchPath, len(jobs))

			tools, err := deps.ResolveTools(cfg.Tools.FFmpeg, cfg.Tools.FFprobe)
			if err != nil {
				s.reporter.Error(reporter.ReporterError{Title: "Missing Tools", Message: err.Error()})
				return err
			}

			rngSeed := uint64(time.Now().UnixNano())
			if cmd.Flags().Changed("seed") {
				rngSeed = seed
			}
			engine := processing.NewEngine(cfg, tools,
				processing.WithReporter(s.reporter),
				processing.WithFileLogger(s.fileLog),
				processing.WithPlanner(planner.New(planner.NewRand(rngSeed),
					planner.WithVideoBuffer(cfg.Mix.VideoBufferSeconds),
					planner.WithMaxPasses(cfg.Mix.MaxPlanPasses))),
			)

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := engine.RunBatch(runCtx, jobs)
			if err != nil {
				if errors.IsCancelled(err) {
					return context.Canceled
				}
				return err
			}
			if failed := len(jobs) - result.SuccessCount(); failed > 0 {
				return fmt.Errorf("%d of %d batch jobs failed", failed, len(jobs))
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for reproducible clip and track selection")
	return cmd
}
