package opt

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// Mayfly wraps the external mayfly swarm library as a peer algorithm. The
// library has no evaluation-budget stop, so the budget is mapped to
// iterations over the population.
type Mayfly struct {
	opts Options
}

// NewMayfly creates a mayfly optimizer adapter with the given options.
func NewMayfly(o Options) *Mayfly {
	return &Mayfly{opts: o}
}

func (m *Mayfly) Name() string { return "mayfly" }

func (m *Mayfly) Run(ctx context.Context, p Problem) (Result, error) {
	if p.Dim < 1 || p.Lower >= p.Upper {
		return Result{}, fmt.Errorf("invalid problem: dim=%d bounds=[%g, %g]", p.Dim, p.Lower, p.Upper)
	}

	// The library evaluates roughly once per individual per iteration.
	iters := m.opts.MaxEvals / m.opts.PopSize
	if iters < 1 {
		iters = 1
	}

	evals := 0
	var evalErr error
	eval := func(x []float64) float64 {
		if evalErr != nil {
			return math.Inf(1)
		}
		fit, err := p.Objective(x)
		if err != nil || math.IsNaN(fit) {
			evalErr = fmt.Errorf("objective evaluation failed: %v", err)
			return math.Inf(1)
		}
		evals++
		return fit
	}

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = eval
	config.ProblemSize = p.Dim
	config.MaxIterations = iters
	config.NPop = m.opts.PopSize
	config.LowerBound = p.Lower
	config.UpperBound = p.Upper
	config.Rand = rand.New(rand.NewSource(m.opts.Seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		return Result{}, fmt.Errorf("mayfly optimization failed: %w", err)
	}
	if evalErr != nil {
		return Result{}, evalErr
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	return Result{
		BestVector:  result.GlobalBest.Position,
		BestFitness: result.GlobalBest.Cost,
		Evaluations: evals,
	}, nil
}
