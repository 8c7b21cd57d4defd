package runner

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/xuri/excelize/v2"
)

// Export writes the results in the requested format. "console" renders a
// summary table to w; the file formats write to outPath.
func Export(res *Results, format, outPath string, w io.Writer) error {
	switch format {
	case "console":
		return exportConsole(res, w)
	case "json":
		return exportJSON(res, outPath)
	case "csv":
		return exportCSV(res, outPath)
	case "xlsx":
		return exportXLSX(res, outPath)
	default:
		return fmt.Errorf("unsupported export format %q (available: console, json, csv, xlsx)", format)
	}
}

// exportConsole renders the per-cell summary as a table.
func exportConsole(res *Results, w io.Writer) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Algorithm", "Benchmark", "Runs", "Best", "Mean", "Worst", "Mean Evals", "Mean Time"})

	for _, s := range res.Summaries {
		t.AppendRow(table.Row{
			s.Algorithm,
			s.Benchmark,
			s.Runs,
			fmt.Sprintf("%.6g", s.Best),
			fmt.Sprintf("%.6g", s.Mean),
			fmt.Sprintf("%.6g", s.Worst),
			fmt.Sprintf("%.0f", s.MeanEvals),
			fmt.Sprintf("%.3fs", s.MeanSeconds),
		})
	}

	t.Render()
	return nil
}

func exportJSON(res *Results, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize results: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}

	slog.Info("Exported results", "format", "json", "path", path)
	return nil
}

// exportCSV writes one flat row per repetition.
func exportCSV(res *Results, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"algorithm", "benchmark", "run", "seed", "best_fitness", "evaluations", "seconds"}); err != nil {
		return err
	}
	for _, r := range res.Records {
		row := []string{
			r.Algorithm,
			r.Benchmark,
			strconv.Itoa(r.Run),
			strconv.FormatInt(r.Seed, 10),
			strconv.FormatFloat(r.BestFitness, 'g', -1, 64),
			strconv.Itoa(r.Evaluations),
			strconv.FormatFloat(r.Duration.Seconds(), 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}

	slog.Info("Exported results", "format", "csv", "path", path)
	return nil
}

// exportXLSX writes a workbook with a Summary sheet and a per-run Runs sheet.
func exportXLSX(res *Results, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const summarySheet = "Summary"
	const runsSheet = "Runs"

	fx.SetSheetName(fx.GetSheetName(0), summarySheet)
	if _, err := fx.NewSheet(runsSheet); err != nil {
		return fmt.Errorf("failed to create runs sheet: %w", err)
	}

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	summaryHeader := []interface{}{"Algorithm", "Benchmark", "Runs", "Best", "Mean", "Worst", "Mean Evals", "Mean Seconds"}
	if err := fx.SetSheetRow(summarySheet, "A1", &summaryHeader); err != nil {
		return err
	}
	if err := fx.SetCellStyle(summarySheet, "A1", "H1", headerStyle); err != nil {
		return err
	}
	for i, s := range res.Summaries {
		row := []interface{}{s.Algorithm, s.Benchmark, s.Runs, s.Best, s.Mean, s.Worst, s.MeanEvals, s.MeanSeconds}
		cell := fmt.Sprintf("A%d", i+2)
		if err := fx.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}

	runsHeader := []interface{}{"Algorithm", "Benchmark", "Run", "Seed", "Best Fitness", "Evaluations", "Seconds"}
	if err := fx.SetSheetRow(runsSheet, "A1", &runsHeader); err != nil {
		return err
	}
	if err := fx.SetCellStyle(runsSheet, "A1", "G1", headerStyle); err != nil {
		return err
	}
	for i, r := range res.Records {
		row := []interface{}{r.Algorithm, r.Benchmark, r.Run, r.Seed, r.BestFitness, r.Evaluations, r.Duration.Seconds()}
		cell := fmt.Sprintf("A%d", i+2)
		if err := fx.SetSheetRow(runsSheet, cell, &row); err != nil {
			return err
		}
	}

	if err := fx.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	slog.Info("Exported results", "format", "xlsx", "path", path)
	return nil
}

func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	return nil
}
