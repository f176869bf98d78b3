package processing

import (
	"context"
	"fmt"
	"time"

	"github.com/five82/mixit/internal/errors"
	"github.com/five82/mixit/internal/ffmpeg"
	"github.com/five82/mixit/internal/reporter"
)

// JobOutcome is the result of one batch entry.
type JobOutcome struct {
	Job    *MixJob
	Result *MixResult
	Err    error
}

// Succeeded reports whether the job produced an output.
func (o JobOutcome) Succeeded() bool {
	return o.Err == nil
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	Outcomes []JobOutcome
	Elapsed  time.Duration
}

// SuccessCount returns the number of jobs that succeeded.
func (b *BatchResult) SuccessCount() int {
	n := 0
	for _, o := range b.Outcomes {
		if o.Succeeded() {
			n++
		}
	}
	return n
}

// RunBatch runs jobs one after another. A failed job is reported and the
// batch moves on; cancellation stops the batch and is returned.
func (e *Engine) RunBatch(ctx context.Context, jobs []*MixJob) (*BatchResult, error) {
	start := time.Now()
	result := &BatchResult{}

	names := make([]string, len(jobs))
	for i, j := range jobs {
		names[i] = j.DisplayName()
	}
	e.rep.BatchStarted(reporter.BatchStartInfo{TotalJobs: len(jobs), JobNames: names})

	var runErr error
	for i, job := range jobs {
		if ctx.Err() != nil {
			runErr = cancelled(ctx, ctx.Err())
			break
		}

		e.rep.JobProgress(reporter.JobProgressContext{CurrentJob: i + 1, TotalJobs: len(jobs), Name: job.DisplayName()})
		e.fileLog.Section(fmt.Sprintf("Job %d of %d: %s", i+1, len(jobs), job.DisplayName()))

		res, err := e.Run(ctx, job, ffmpeg.Callbacks{})
		result.Outcomes = append(result.Outcomes, JobOutcome{Job: job, Result: res, Err: err})
		if errors.IsCancelled(err) {
			runErr = err
			break
		}
	}
	result.Elapsed = time.Since(start)

	summary := reporter.BatchSummary{
		SuccessfulCount: result.SuccessCount(),
		TotalJobs:       len(jobs),
		TotalDuration:   result.Elapsed,
	}
	for _, o := range result.Outcomes {
		jr := reporter.JobResult{Name: o.Job.DisplayName(), Succeeded: o.Succeeded()}
		if o.Result != nil {
			jr.OutputPath = o.Result.OutputPath
		}
		if o.Err != nil {
			jr.Error = o.Err.Error()
		}
		summary.JobResults = append(summary.JobResults, jr)
	}
	e.rep.BatchComplete(summary)

	if runErr == nil {
		e.rep.OperationComplete(fmt.Sprintf("Batch complete: %d of %d mixes created", summary.SuccessfulCount, len(jobs)))
	}
	return result, runErr
}
