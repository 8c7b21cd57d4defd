package opt

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/evosolve/internal/de"
)

// RandomSearch draws uniform random points for the whole budget. It is the
// baseline every population-based algorithm has to beat.
type RandomSearch struct {
	opts Options
}

// NewRandomSearch creates a random-search baseline with the given options.
func NewRandomSearch(o Options) *RandomSearch {
	return &RandomSearch{opts: o}
}

func (r *RandomSearch) Name() string { return "random" }

func (r *RandomSearch) Run(ctx context.Context, p Problem) (Result, error) {
	if p.Dim < 1 || p.Lower >= p.Upper {
		return Result{}, fmt.Errorf("invalid problem: dim=%d bounds=[%g, %g]", p.Dim, p.Lower, p.Upper)
	}

	rng := rand.New(rand.NewSource(r.opts.Seed))
	best := &de.Candidate{Fitness: math.Inf(1)}

	evals := 0
	for evals < r.opts.MaxEvals {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		c := de.NewCandidate(rng, p.Dim, p.Lower, p.Upper)
		if err := c.Evaluate(p.Objective); err != nil {
			return Result{}, err
		}
		evals++
		if c.Fitness < best.Fitness {
			best = c
		}
	}

	return Result{
		BestVector:  best.Vector,
		BestFitness: best.Fitness,
		Evaluations: evals,
	}, nil
}
