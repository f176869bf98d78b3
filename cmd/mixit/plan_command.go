package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/five82/mixit"
	"github.com/five82/mixit/internal/logging"
	"github.com/five82/mixit/internal/util"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var flags mixFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the clips, tracks and ffmpeg command a mix would use",
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

			if ctx.verbose() {
				logging.Init(logging.LevelDebug, cmd.ErrOrStderr())
			} else {
				logging.SetGlobal(logging.Discard())
			}

			opts := []mixit.Option{mixit.WithConfig(cfg)}
			if cmd.Flags().Changed("seed") {
				opts = append(opts, mixit.WithSeed(flags.seed))
			}
			mixer, err := mixit.New(opts...)
			if err != nil {
				return err
			}

			info, err := mixer.Plan(cmd.Context(), job)
			if err != nil {
				return err
			}
			if ctx.flags.json {
				return writeJSON(cmd, planJSON(info))
			}
			renderPlan(cmd, info, describeOrder(flags.order, flags.manualOrder), ctx.verbose())
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func renderPlan(cmd *cobra.Command, info *mixit.PlanInfo, order string, verbose bool) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, renderTable(
		[]string{"#", "Video clip"},
		numberedRows(info.VideoClips),
		[]columnAlignment{alignRight, alignLeft},
	))
	if len(info.AudioTracks) > 0 {
		fmt.Fprintln(out, renderTable(
			[]string{"#", "Audio track"},
			numberedRows(info.AudioTracks),
			[]columnAlignment{alignRight, alignLeft},
		))
	}

	rows := [][]string{
		{"Output", info.OutputPath},
		{"Video", fmt.Sprintf("%d clips, %s", len(info.VideoClips), util.FormatDuration(info.VideoSeconds))},
		{"Audio", fmt.Sprintf("%d tracks, %s", len(info.AudioTracks), util.FormatDuration(info.AudioSeconds))},
		{"Blend", info.Blend.String()},
		{"Order", order},
		{"Crossfades", strconv.Itoa(info.Stages)},
		{"Estimated time", info.Estimate.String()},
	}
	if info.Substitution != "" {
		rows = append(rows, []string{"Container", info.Substitution})
	}
	fmt.Fprintln(out, renderTable([]string{"Plan", ""}, rows, nil))

	if verbose {
		fmt.Fprintf(out, "\nCommand: %s\n", info.Command)
	}
}

func numberedRows(paths []string) [][]string {
	rows := make([][]string, len(paths))
	for i, p := range paths {
		rows[i] = []string{strconv.Itoa(i + 1), filepath.Base(p)}
	}
	return rows
}

type planOutput struct {
	OutputPath      string   `json:"output_path"`
	VideoClips      []string `json:"video_clips"`
	AudioTracks     []string `json:"audio_tracks"`
	VideoSeconds    float64  `json:"video_seconds"`
	AudioSeconds    float64  `json:"audio_seconds"`
	Blend           string   `json:"blend"`
	Stages          int      `json:"crossfade_stages"`
	Substitution    string   `json:"substitution,omitempty"`
	Command         string   `json:"command"`
	EstimateSeconds float64  `json:"estimate_seconds"`
}

func planJSON(info *mixit.PlanInfo) planOutput {
	return planOutput{
		OutputPath:      info.OutputPath,
		VideoClips:      info.VideoClips,
		AudioTracks:     info.AudioTracks,
		VideoSeconds:    info.VideoSeconds,
		AudioSeconds:    info.AudioSeconds,
		Blend:           info.Blend.String(),
		Stages:          info.Stages,
		Substitution:    info.Substitution,
		Command:         info.Command,
		EstimateSeconds: info.Estimate.Seconds(),
	}
}
