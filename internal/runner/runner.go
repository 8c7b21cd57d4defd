// Package runner executes algorithm-by-benchmark experiment grids with
// repeated, independently seeded runs and exports the results in several
// formats.
package runner

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/cwbudde/evosolve/internal/bench"
	"github.com/cwbudde/evosolve/internal/opt"
	"github.com/sourcegraph/conc/pool"
)

// RunRecord is one completed repetition.
type RunRecord struct {
	Algorithm   string        `json:"algorithm"`
	Benchmark   string        `json:"benchmark"`
	Run         int           `json:"run"`
	Seed        int64         `json:"seed"`
	BestFitness float64       `json:"bestFitness"`
	BestVector  []float64     `json:"bestVector"`
	Evaluations int           `json:"evaluations"`
	Duration    time.Duration `json:"duration"`
}

// CellSummary aggregates the repetitions of one algorithm/benchmark cell.
type CellSummary struct {
	Algorithm   string  `json:"algorithm"`
	Benchmark   string  `json:"benchmark"`
	Runs        int     `json:"runs"`
	Best        float64 `json:"best"`
	Mean        float64 `json:"mean"`
	Worst       float64 `json:"worst"`
	MeanEvals   float64 `json:"meanEvals"`
	MeanSeconds float64 `json:"meanSeconds"`
}

// Results is the full outcome of one experiment.
type Results struct {
	Config    Config        `json:"config"`
	Records   []RunRecord   `json:"records"`
	Summaries []CellSummary `json:"summaries"`
	StartedAt time.Time     `json:"startedAt"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Run executes the experiment grid. Repetitions run concurrently on a
// bounded pool; each gets its own optimizer instance seeded with
// cfg.Seed + run index, so results are independent of scheduling order.
func Run(ctx context.Context, cfg Config) (*Results, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Resolve names up front so a typo fails before any work is spent.
	benchmarks := make([]bench.Benchmark, len(cfg.Benchmarks))
	for i, name := range cfg.Benchmarks {
		b, err := bench.Lookup(name)
		if err != nil {
			return nil, err
		}
		benchmarks[i] = b
	}
	for _, name := range cfg.Algorithms {
		if _, err := opt.New(name, opt.DefaultOptions()); err != nil {
			return nil, err
		}
	}

	total := len(cfg.Algorithms) * len(benchmarks) * cfg.Runs
	records := make([]RunRecord, total)
	started := time.Now()

	slog.Info("Starting experiment",
		"algorithms", cfg.Algorithms,
		"benchmarks", cfg.Benchmarks,
		"runs", cfg.Runs,
		"total_cells", total,
	)

	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(cfg.Workers)
	idx := 0
	for _, algName := range cfg.Algorithms {
		for _, b := range benchmarks {
			for run := 0; run < cfg.Runs; run++ {
				slot := idx
				idx++

				p.Go(func(ctx context.Context) error {
					seed := cfg.Seed + int64(run)
					o := opt.Options{
						PopSize:  cfg.PopSize,
						MaxEvals: cfg.MaxEvals,
						Tao:      cfg.Tao,
						F:        0.5,
						Cr:       0.9,
						Seed:     seed,
					}
					alg, err := opt.New(algName, o)
					if err != nil {
						return err
					}

					start := time.Now()
					res, err := alg.Run(ctx, opt.Problem{
						Dim:       cfg.Dim,
						Lower:     b.Lower,
						Upper:     b.Upper,
						Objective: b.Objective,
					})
					if err != nil {
						return err
					}

					records[slot] = RunRecord{
						Algorithm:   algName,
						Benchmark:   b.Name,
						Run:         run,
						Seed:        seed,
						BestFitness: res.BestFitness,
						BestVector:  res.BestVector,
						Evaluations: res.Evaluations,
						Duration:    time.Since(start),
					}
					slog.Debug("Repetition complete",
						"algorithm", algName, "benchmark", b.Name,
						"run", run, "best", res.BestFitness,
					)
					return nil
				})
			}
		}
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}

	results := &Results{
		Config:    cfg,
		Records:   records,
		Summaries: summarize(cfg, records),
		StartedAt: started,
		Elapsed:   time.Since(started),
	}
	slog.Info("Experiment complete", "elapsed", results.Elapsed)
	return results, nil
}

// summarize folds records into per-cell aggregates, preserving the
// algorithm-major, benchmark-minor order of the config.
func summarize(cfg Config, records []RunRecord) []CellSummary {
	type key struct{ alg, bench string }
	cells := make(map[key]*CellSummary)
	order := make([]key, 0, len(cfg.Algorithms)*len(cfg.Benchmarks))

	for _, alg := range cfg.Algorithms {
		for _, b := range cfg.Benchmarks {
			k := key{alg, b}
			order = append(order, k)
			cells[k] = &CellSummary{
				Algorithm: alg,
				Benchmark: b,
				Best:      math.Inf(1),
				Worst:     math.Inf(-1),
			}
		}
	}

	for _, r := range records {
		c := cells[key{r.Algorithm, r.Benchmark}]
		c.Runs++
		c.Mean += r.BestFitness
		c.MeanEvals += float64(r.Evaluations)
		c.MeanSeconds += r.Duration.Seconds()
		if r.BestFitness < c.Best {
			c.Best = r.BestFitness
		}
		if r.BestFitness > c.Worst {
			c.Worst = r.BestFitness
		}
	}

	out := make([]CellSummary, 0, len(order))
	for _, k := range order {
		c := cells[k]
		if c.Runs > 0 {
			n := float64(c.Runs)
			c.Mean /= n
			c.MeanEvals /= n
			c.MeanSeconds /= n
		}
		out = append(out, *c)
	}
	return out
}
