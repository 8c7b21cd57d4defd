// Package de implements the self-adaptive differential evolution (jDE)
// algorithm of Brest et al. for black-box continuous minimization. Each
// candidate carries its own mutation factor F and crossover rate Cr, which
// are re-randomized with probability Tao each generation and travel with
// whichever candidate wins selection.
package de

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrEvaluationFailed marks a run aborted because the objective returned an
// error or a non-finite fitness. There is no retry: a corrupted fitness
// would invalidate both selection and best-tracking.
var ErrEvaluationFailed = errors.New("objective evaluation failed")

// Config holds the engine's construction parameters. All fields except Seed
// and OnGeneration are required.
type Config struct {
	// Dim is the search-space dimension (>= 1).
	Dim int
	// PopSize is the population size NP (>= 4, required for distinct donor
	// triple sampling to terminate).
	PopSize int
	// MaxEvals is the total objective-evaluation budget (nFES, >= 1).
	MaxEvals int
	// Lower and Upper are scalar box bounds applied uniformly to every
	// dimension; Lower must be strictly less than Upper.
	Lower, Upper float64
	// Tao is the self-adaptation probability gating the per-generation
	// re-draw of F and Cr. Required, in (0, 1]; 0.1 is the published jDE
	// setting.
	Tao float64
	// Seed seeds the engine's single sequential random stream. Same seed,
	// same result.
	Seed int64
	// OnGeneration, when set, is invoked after each completed generation.
	OnGeneration func(GenerationStats)
}

// GenerationStats is the per-generation progress snapshot passed to the
// OnGeneration hook.
type GenerationStats struct {
	Generation  int
	Evaluations int
	BestFitness float64
}

// Validate rejects configurations that would make the run degenerate or
// non-terminating.
func (c Config) Validate() error {
	if c.Dim < 1 {
		return fmt.Errorf("dimension must be >= 1, got %d", c.Dim)
	}
	if c.PopSize < 4 {
		return fmt.Errorf("population size must be >= 4 for donor sampling, got %d", c.PopSize)
	}
	if c.MaxEvals < 1 {
		return fmt.Errorf("evaluation budget must be >= 1, got %d", c.MaxEvals)
	}
	if c.Lower >= c.Upper {
		return fmt.Errorf("invalid bounds: lower (%g) must be < upper (%g)", c.Lower, c.Upper)
	}
	if c.Tao <= 0 || c.Tao > 1 {
		return fmt.Errorf("tao must be in (0, 1], got %g", c.Tao)
	}
	return nil
}

// Result is the outcome of a completed run.
type Result struct {
	BestVector  []float64
	BestFitness float64
	Evaluations int
	Generations int
}

// Engine orchestrates initialization, evaluation, the generational
// transition and budget-bounded termination. It owns exactly one population
// at a time, one best-ever snapshot, and a single sequential random stream;
// the objective binding is shared read-only across the run.
type Engine struct {
	cfg   Config
	obj   Objective
	rng   *rand.Rand
	pop   Population
	best  *Candidate
	evals int
	gens  int
}

// NewEngine binds an objective to a validated configuration.
func NewEngine(cfg Config, obj Objective) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if obj == nil {
		return nil, errors.New("objective function is required")
	}
	return &Engine{
		cfg: cfg,
		obj: obj,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Run executes the optimization to budget exhaustion and returns the
// best-ever fitness and vector observed. The budget check happens between
// full generations, so the run performs the smallest multiple of PopSize
// evaluations that reaches MaxEvals. A budget smaller than the population
// size still initializes and evaluates once, returning an immediate result.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	e.pop = NewPopulation(e.rng, e.cfg.PopSize, e.cfg.Dim, e.cfg.Lower, e.cfg.Upper)
	e.best = &Candidate{Fitness: math.Inf(1)}
	e.evals = 0
	e.gens = 0

	err := e.pop.Evaluate(e.obj, func(c *Candidate) {
		e.evals++
		e.trackBest(c)
	})
	if err != nil {
		return Result{}, err
	}

	for e.evals < e.cfg.MaxEvals {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		next, err := e.generation()
		if err != nil {
			return Result{}, err
		}
		e.pop = next
		e.gens++
		if e.cfg.OnGeneration != nil {
			e.cfg.OnGeneration(GenerationStats{
				Generation:  e.gens,
				Evaluations: e.evals,
				BestFitness: e.best.Fitness,
			})
		}
	}

	return Result{
		BestVector:  e.best.Vector,
		BestFitness: e.best.Fitness,
		Evaluations: e.evals,
		Generations: e.gens,
	}, nil
}

// generation builds the next population index-by-index from the current one.
// Each index consumes exactly one evaluation.
func (e *Engine) generation() (Population, error) {
	next := make(Population, e.cfg.PopSize)
	for i := range e.pop {
		trial, err := e.makeOffspring(i)
		if err != nil {
			return nil, err
		}
		e.evals++
		e.trackBest(trial)

		// Greedy per-index selection: the parent survives unless the
		// offspring is strictly better.
		if trial.Fitness < e.pop[i].Fitness {
			next[i] = trial
		} else {
			next[i] = e.pop[i]
		}
	}
	return next, nil
}

// makeOffspring constructs, repairs and evaluates the trial candidate for
// parent index i.
func (e *Engine) makeOffspring(i int) (*Candidate, error) {
	parent := e.pop[i]
	trial := NewCandidate(e.rng, e.cfg.Dim, e.cfg.Lower, e.cfg.Upper)

	// Self-adaptation: with probability Tao re-draw the control parameter,
	// otherwise inherit the parent's current value.
	if e.rng.Float64() < e.cfg.Tao {
		trial.F = e.rng.Float64()
	} else {
		trial.F = parent.F
	}
	if e.rng.Float64() < e.cfg.Tao {
		trial.Cr = e.rng.Float64()
	} else {
		trial.Cr = parent.Cr
	}

	r0, r1, r2 := e.donors(i)
	// jrand forces at least one mutant dimension so the trial cannot
	// degenerate to an exact parent copy even when Cr is near zero.
	jrand := e.rng.Intn(e.cfg.Dim)

	for j := 0; j < e.cfg.Dim; j++ {
		if e.rng.Float64() < trial.Cr || j == jrand {
			trial.Vector[j] = e.pop[r0].Vector[j] + trial.F*(e.pop[r1].Vector[j]-e.pop[r2].Vector[j])
		} else {
			trial.Vector[j] = parent.Vector[j]
		}
	}

	trial.Repair(e.cfg.Lower, e.cfg.Upper)
	if err := trial.Evaluate(e.obj); err != nil {
		return nil, err
	}
	return trial, nil
}

// donors picks three pairwise-distinct indices, none equal to i, by
// resampling the whole triple until it is valid. Terminates because
// PopSize >= 4.
func (e *Engine) donors(i int) (int, int, int) {
	for {
		r0 := e.rng.Intn(e.cfg.PopSize)
		r1 := e.rng.Intn(e.cfg.PopSize)
		r2 := e.rng.Intn(e.cfg.PopSize)
		if r0 == r1 || r0 == r2 || r1 == r2 {
			continue
		}
		if r0 == i || r1 == i || r2 == i {
			continue
		}
		return r0, r1, r2
	}
}

// trackBest snapshots c as the new best-ever on a strict improvement. Ties
// keep the earlier candidate.
func (e *Engine) trackBest(c *Candidate) {
	if c.Fitness < e.best.Fitness {
		e.best = c.Clone()
	}
}
