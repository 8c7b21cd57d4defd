package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/evosolve/internal/bench"
	"github.com/cwbudde/evosolve/internal/de"
	"github.com/cwbudde/evosolve/internal/opt"
	"github.com/cwbudde/evosolve/internal/store"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	runAlgo    string
	runBench   string
	runDim     int
	runPop     int
	runEvals   int
	runTao     float64
	runLower   float64
	runUpper   float64
	runSeed    int64
	runDataDir string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single optimization",
	Long:  `Runs one optimizer against one benchmark and prints the best solution found.`,
	RunE:  runOptimization,
}

func init() {
	runCmd.Flags().StringVar(&runAlgo, "algo", "jde", fmt.Sprintf("Algorithm %v", opt.Names()))
	runCmd.Flags().StringVar(&runBench, "bench", "sphere", fmt.Sprintf("Benchmark %v", bench.Names()))
	runCmd.Flags().IntVar(&runDim, "dim", 10, "Search-space dimension")
	runCmd.Flags().IntVar(&runPop, "pop", 30, "Population size")
	runCmd.Flags().IntVar(&runEvals, "evals", 10000, "Objective evaluation budget")
	runCmd.Flags().Float64Var(&runTao, "tao", 0.1, "Self-adaptation probability for F and Cr")
	runCmd.Flags().Float64Var(&runLower, "lower", 0, "Lower bound override (used when lower < upper)")
	runCmd.Flags().Float64Var(&runUpper, "upper", 0, "Upper bound override (used when lower < upper)")
	runCmd.Flags().Int64Var(&runSeed, "seed", 42, "Random seed")
	runCmd.Flags().StringVar(&runDataDir, "data", "", "Persist result and fitness trace under this directory")

	rootCmd.AddCommand(runCmd)
}

func runOptimization(cmd *cobra.Command, args []string) error {
	b, err := bench.Lookup(runBench)
	if err != nil {
		return err
	}

	lower, upper := b.Lower, b.Upper
	if runLower < runUpper {
		lower, upper = runLower, runUpper
	}

	slog.Info("Starting optimization",
		"algorithm", runAlgo,
		"benchmark", runBench,
		"dim", runDim,
		"pop", runPop,
		"evals", runEvals,
	)

	runID := uuid.New().String()

	var trace *store.TraceWriter
	if runDataDir != "" {
		trace, err = store.NewTraceWriter(runDataDir, runID)
		if err != nil {
			return err
		}
		defer trace.Close()
	}

	progress := func(s de.GenerationStats) {
		slog.Debug("Generation complete",
			"generation", s.Generation,
			"evaluations", s.Evaluations,
			"best", s.BestFitness,
		)
		if trace != nil {
			trace.Write(store.TraceEntry{
				Generation:  s.Generation,
				Evaluations: s.Evaluations,
				BestFitness: s.BestFitness,
				Timestamp:   time.Now(),
			})
		}
	}

	algorithm, err := opt.New(runAlgo, opt.Options{
		PopSize:  runPop,
		MaxEvals: runEvals,
		Tao:      runTao,
		F:        0.5,
		Cr:       0.9,
		Progress: progress,
		Seed:     runSeed,
	})
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := algorithm.Run(cmd.Context(), opt.Problem{
		Dim:       runDim,
		Lower:     lower,
		Upper:     upper,
		Objective: b.Objective,
	})
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}
	elapsed := time.Since(start)

	slog.Info("Optimization complete",
		"elapsed", elapsed,
		"best_fitness", result.BestFitness,
		"evaluations", result.Evaluations,
		"evals_per_second", fmt.Sprintf("%.0f", float64(result.Evaluations)/elapsed.Seconds()),
	)

	if runDataDir != "" {
		st, err := store.NewFSStore(runDataDir)
		if err != nil {
			return err
		}
		saved := &store.RunResult{
			ID: runID,
			Config: store.RunConfig{
				Algorithm: runAlgo,
				Benchmark: runBench,
				Dim:       runDim,
				PopSize:   runPop,
				MaxEvals:  runEvals,
				Tao:       runTao,
				Lower:     lower,
				Upper:     upper,
				Seed:      runSeed,
			},
			BestVector:  result.BestVector,
			BestFitness: result.BestFitness,
			Evaluations: result.Evaluations,
			Elapsed:     elapsed,
			Timestamp:   time.Now(),
		}
		if err := st.SaveResult(saved); err != nil {
			return err
		}
		fmt.Printf("Saved result %s under %s\n", runID, runDataDir)
	}

	fmt.Printf("%s on %s (D=%d): best fitness %.6g after %d evaluations (%s)\n",
		runAlgo, runBench, runDim, result.BestFitness, result.Evaluations, elapsed.Round(time.Millisecond))
	fmt.Printf("Best vector: %v\n", result.BestVector)

	return nil
}
