package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var serverURL string

var statusCmd = &cobra.Command{
	Use:   "status [run-id]",
	Short: "Query server status or a specific run",
	Long: `Queries the job server for run status information.
If no run-id is provided, lists all runs.
If run-id is provided, shows detailed status for that run.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return listRuns(fmt.Sprintf("%s/api/v1/runs", serverURL))
	}
	runID := args[0]
	return getRunStatus(fmt.Sprintf("%s/api/v1/runs/%s/status", serverURL, runID), runID)
}

func listRuns(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var runs []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&runs); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	fmt.Printf("Found %d run(s):\n\n", len(runs))
	for _, run := range runs {
		config := run["config"].(map[string]interface{})
		fmt.Printf("Run ID: %s\n", run["id"])
		fmt.Printf("  State: %s\n", run["state"])
		fmt.Printf("  Algorithm: %s\n", config["algorithm"])
		fmt.Printf("  Benchmark: %s\n", config["benchmark"])
		if run["bestFitness"] != nil && run["evaluations"].(float64) > 0 {
			fmt.Printf("  Best: %.6g after %v evaluations\n", run["bestFitness"], run["evaluations"])
		}
		fmt.Println()
	}

	return nil
}

func getRunStatus(url, runID string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("run not found: %s", runID)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("Run: %s\n", status["id"])
	fmt.Printf("State: %s\n", status["state"])
	fmt.Println()

	config := status["config"].(map[string]interface{})
	fmt.Println("Configuration:")
	fmt.Printf("  Algorithm: %s\n", config["algorithm"])
	fmt.Printf("  Benchmark: %s\n", config["benchmark"])
	fmt.Printf("  Dimension: %v\n", config["dim"])
	fmt.Printf("  Population: %v\n", config["popSize"])
	fmt.Printf("  Budget: %v\n", config["maxEvals"])
	fmt.Println()

	fmt.Println("Progress:")
	if status["generations"] != nil {
		fmt.Printf("  Generations: %v\n", status["generations"])
	}
	if status["evaluations"] != nil {
		fmt.Printf("  Evaluations: %v\n", status["evaluations"])
	}
	if status["bestFitness"] != nil && status["evaluations"].(float64) > 0 {
		fmt.Printf("  Best Fitness: %.6g\n", status["bestFitness"])
	}
	if status["elapsed"] != nil {
		elapsed := time.Duration(status["elapsed"].(float64) * float64(time.Second))
		fmt.Printf("  Elapsed: %s\n", elapsed.Round(time.Millisecond))
	}
	if status["error"] != nil && status["error"].(string) != "" {
		fmt.Printf("\nError: %s\n", status["error"])
	}

	return nil
}
