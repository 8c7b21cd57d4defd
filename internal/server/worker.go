package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/evosolve/internal/bench"
	"github.com/cwbudde/evosolve/internal/de"
	"github.com/cwbudde/evosolve/internal/opt"
	"github.com/cwbudde/evosolve/internal/store"
)

// progressInterval throttles SSE broadcasts so fast generations do not
// flood clients.
const progressInterval = 250 * time.Millisecond

// runJob executes an optimization run in the background. When resultStore is
// not nil, the completed result is persisted; when dataDir is set, a
// per-generation fitness trace is written alongside it.
func runJob(ctx context.Context, jm *JobManager, resultStore store.Store, dataDir, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	}); err != nil {
		return err
	}

	slog.Info("Starting run",
		"run_id", jobID,
		"algorithm", job.Config.Algorithm,
		"benchmark", job.Config.Benchmark,
	)

	b, err := bench.Lookup(job.Config.Benchmark)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	lower, upper := b.Lower, b.Upper
	if job.Config.Lower < job.Config.Upper {
		lower, upper = job.Config.Lower, job.Config.Upper
	}

	var trace *store.TraceWriter
	if dataDir != "" {
		trace, err = store.NewTraceWriter(dataDir, jobID)
		if err != nil {
			markJobFailed(jm, jobID, err)
			return err
		}
		defer trace.Close()
	}

	lastBroadcast := time.Now()
	progress := func(s de.GenerationStats) {
		jm.UpdateJob(jobID, func(j *Job) {
			j.Generations = s.Generation
			j.Evaluations = s.Evaluations
			j.BestFitness = s.BestFitness
		})
		if trace != nil {
			trace.Write(store.TraceEntry{
				Generation:  s.Generation,
				Evaluations: s.Evaluations,
				BestFitness: s.BestFitness,
				Timestamp:   time.Now(),
			})
		}
		if time.Since(lastBroadcast) >= progressInterval {
			lastBroadcast = time.Now()
			jm.broadcaster.Broadcast(ProgressEvent{
				RunID:       jobID,
				State:       StateRunning,
				Generation:  s.Generation,
				Evaluations: s.Evaluations,
				BestFitness: s.BestFitness,
				Timestamp:   time.Now(),
			})
		}
	}

	algorithm, err := opt.New(job.Config.Algorithm, opt.Options{
		PopSize:  job.Config.PopSize,
		MaxEvals: job.Config.MaxEvals,
		Tao:      job.Config.Tao,
		F:        0.5,
		Cr:       0.9,
		Progress: progress,
		Seed:     job.Config.Seed,
	})
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	start := time.Now()
	result, err := algorithm.Run(ctx, opt.Problem{
		Dim:       job.Config.Dim,
		Lower:     lower,
		Upper:     upper,
		Objective: b.Objective,
	})
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}
	elapsed := time.Since(start)

	// Make the full trace visible before the job reads as completed.
	if trace != nil {
		if err := trace.Flush(); err != nil {
			slog.Warn("Failed to flush trace", "run_id", jobID, "error", err)
		}
	}

	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.BestVector = result.BestVector
		j.BestFitness = result.BestFitness
		j.Evaluations = result.Evaluations
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	slog.Info("Run completed",
		"run_id", jobID,
		"elapsed", elapsed,
		"best_fitness", result.BestFitness,
		"evaluations", result.Evaluations,
	)

	if resultStore != nil {
		saved := &store.RunResult{
			ID: jobID,
			Config: store.RunConfig{
				Algorithm: job.Config.Algorithm,
				Benchmark: job.Config.Benchmark,
				Dim:       job.Config.Dim,
				PopSize:   job.Config.PopSize,
				MaxEvals:  job.Config.MaxEvals,
				Tao:       job.Config.Tao,
				Lower:     lower,
				Upper:     upper,
				Seed:      job.Config.Seed,
			},
			BestVector:  result.BestVector,
			BestFitness: result.BestFitness,
			Evaluations: result.Evaluations,
			Elapsed:     elapsed,
			Timestamp:   endTime,
		}
		if err := resultStore.SaveResult(saved); err != nil {
			slog.Error("Failed to persist run result", "run_id", jobID, "error", err)
		}
	}

	// Final completion event
	job, _ = jm.GetJob(jobID)
	jm.broadcaster.Broadcast(ProgressEvent{
		RunID:       jobID,
		State:       StateCompleted,
		Generation:  job.Generations,
		Evaluations: result.Evaluations,
		BestFitness: result.BestFitness,
		Timestamp:   time.Now(),
	})

	return nil
}

// markJobFailed records the failure and notifies stream subscribers.
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})

	slog.Error("Run failed", "run_id", jobID, "error", err)

	jm.broadcaster.Broadcast(ProgressEvent{
		RunID:     jobID,
		State:     StateFailed,
		Timestamp: time.Now(),
	})
}
