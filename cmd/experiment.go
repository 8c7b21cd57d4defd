package main

import (
	"os"

	"github.com/cwbudde/evosolve/internal/runner"
	"github.com/spf13/cobra"
)

var (
	expConfigPath string
	expAlgos      []string
	expBenches    []string
	expDim        int
	expPop        int
	expEvals      int
	expRuns       int
	expSeed       int64
	expWorkers    int
	expExport     string
	expOut        string
)

var experimentCmd = &cobra.Command{
	Use:   "experiment",
	Short: "Run an algorithm-by-benchmark experiment grid",
	Long: `Runs every configured algorithm against every configured benchmark with
repeated, independently seeded runs, then exports the aggregated results.
The experiment can be described in a YAML file or entirely by flags.`,
	RunE: runExperiment,
}

func init() {
	experimentCmd.Flags().StringVar(&expConfigPath, "config", "", "Experiment YAML file (flags are ignored when set)")
	experimentCmd.Flags().StringSliceVar(&expAlgos, "algos", []string{"jde"}, "Algorithms to run")
	experimentCmd.Flags().StringSliceVar(&expBenches, "benches", []string{"sphere"}, "Benchmarks to run")
	experimentCmd.Flags().IntVar(&expDim, "dim", 10, "Search-space dimension")
	experimentCmd.Flags().IntVar(&expPop, "pop", 30, "Population size")
	experimentCmd.Flags().IntVar(&expEvals, "evals", 10000, "Objective evaluation budget per run")
	experimentCmd.Flags().IntVar(&expRuns, "runs", 10, "Repetitions per algorithm/benchmark cell")
	experimentCmd.Flags().Int64Var(&expSeed, "seed", 42, "Base random seed")
	experimentCmd.Flags().IntVar(&expWorkers, "workers", 4, "Concurrent repetitions")
	experimentCmd.Flags().StringVar(&expExport, "export", "console", "Export format: console, json, csv, xlsx")
	experimentCmd.Flags().StringVar(&expOut, "out", "results.json", "Output path for file exports")

	rootCmd.AddCommand(experimentCmd)
}

func runExperiment(cmd *cobra.Command, args []string) error {
	var cfg runner.Config
	var err error

	if expConfigPath != "" {
		cfg, err = runner.LoadConfig(expConfigPath)
		if err != nil {
			return err
		}
	} else {
		cfg = runner.Config{
			Algorithms: expAlgos,
			Benchmarks: expBenches,
			Dim:        expDim,
			PopSize:    expPop,
			MaxEvals:   expEvals,
			Runs:       expRuns,
			Seed:       expSeed,
			Workers:    expWorkers,
		}
		cfg.ApplyDefaults()
	}

	results, err := runner.Run(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	return runner.Export(results, expExport, expOut, os.Stdout)
}
