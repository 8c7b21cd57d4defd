package main

import (
	"fmt"
	"os"
	"time"

	"github.com/cwbudde/evosolve/internal/store"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var resultsDataDir string

var resultsCmd = &cobra.Command{
	Use:   "results [run-id]",
	Short: "List or inspect stored run results",
	Long: `Lists all results persisted under the data directory.
If a run-id is provided, shows that result in full.`,
	RunE: runResults,
}

func init() {
	resultsCmd.Flags().StringVar(&resultsDataDir, "data", "./data", "Data directory")
	rootCmd.AddCommand(resultsCmd)
}

func runResults(cmd *cobra.Command, args []string) error {
	st, err := store.NewFSStore(resultsDataDir)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return listResults(st)
	}
	return showResult(st, args[0])
}

func listResults(st store.Store) error {
	infos, err := st.ListResults()
	if err != nil {
		return err
	}

	if len(infos) == 0 {
		fmt.Println("No results found")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run ID", "Algorithm", "Benchmark", "Dim", "Best Fitness", "Evaluations", "When"})
	for _, info := range infos {
		t.AppendRow(table.Row{
			info.ID,
			info.Algorithm,
			info.Benchmark,
			info.Dim,
			fmt.Sprintf("%.6g", info.BestFitness),
			info.Evaluations,
			info.Timestamp.Format(time.RFC3339),
		})
	}
	t.Render()

	return nil
}

func showResult(st store.Store, id string) error {
	result, err := st.LoadResult(id)
	if err != nil {
		return err
	}

	fmt.Printf("Run: %s\n", result.ID)
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("  Algorithm:  %s\n", result.Config.Algorithm)
	fmt.Printf("  Benchmark:  %s\n", result.Config.Benchmark)
	fmt.Printf("  Dimension:  %d\n", result.Config.Dim)
	fmt.Printf("  Population: %d\n", result.Config.PopSize)
	fmt.Printf("  Budget:     %d\n", result.Config.MaxEvals)
	if result.Config.Tao > 0 {
		fmt.Printf("  Tao:        %g\n", result.Config.Tao)
	}
	fmt.Printf("  Bounds:     [%g, %g]\n", result.Config.Lower, result.Config.Upper)
	fmt.Printf("  Seed:       %d\n", result.Config.Seed)
	fmt.Println()
	fmt.Println("Outcome:")
	fmt.Printf("  Best Fitness: %.6g\n", result.BestFitness)
	fmt.Printf("  Evaluations:  %d\n", result.Evaluations)
	fmt.Printf("  Elapsed:      %s\n", result.Elapsed.Round(time.Millisecond))
	fmt.Printf("  Best Vector:  %v\n", result.BestVector)

	return nil
}
