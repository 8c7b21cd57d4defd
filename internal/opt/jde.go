package opt

import (
	"context"

	"github.com/cwbudde/evosolve/internal/de"
)

// JDE adapts the self-adaptive differential evolution engine to the
// Optimizer interface.
type JDE struct {
	opts Options
}

// NewJDE creates a jDE optimizer with the given options.
func NewJDE(o Options) *JDE {
	return &JDE{opts: o}
}

func (j *JDE) Name() string { return "jde" }

// Run builds a fresh engine for the problem and executes it to budget
// exhaustion.
func (j *JDE) Run(ctx context.Context, p Problem) (Result, error) {
	eng, err := de.NewEngine(de.Config{
		Dim:          p.Dim,
		PopSize:      j.opts.PopSize,
		MaxEvals:     j.opts.MaxEvals,
		Lower:        p.Lower,
		Upper:        p.Upper,
		Tao:          j.opts.Tao,
		Seed:         j.opts.Seed,
		OnGeneration: j.opts.Progress,
	}, p.Objective)
	if err != nil {
		return Result{}, err
	}

	res, err := eng.Run(ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{
		BestVector:  res.BestVector,
		BestFitness: res.BestFitness,
		Evaluations: res.Evaluations,
	}, nil
}
