package opt

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/evosolve/internal/de"
)

// Rand1Bin is classic DE/rand/1/bin: the jDE transition with the
// self-adaptation removed, F and Cr held fixed for the whole run. Kept as a
// peer algorithm so experiments can measure what self-adaptation buys.
type Rand1Bin struct {
	opts Options
}

// NewRand1Bin creates a classic DE optimizer with the given options.
func NewRand1Bin(o Options) *Rand1Bin {
	return &Rand1Bin{opts: o}
}

func (d *Rand1Bin) Name() string { return "de" }

func (d *Rand1Bin) Run(ctx context.Context, p Problem) (Result, error) {
	np := d.opts.PopSize
	if np < 4 {
		return Result{}, fmt.Errorf("population size must be >= 4 for donor sampling, got %d", np)
	}
	if p.Dim < 1 || p.Lower >= p.Upper {
		return Result{}, fmt.Errorf("invalid problem: dim=%d bounds=[%g, %g]", p.Dim, p.Lower, p.Upper)
	}

	rng := rand.New(rand.NewSource(d.opts.Seed))
	pop := de.NewPopulation(rng, np, p.Dim, p.Lower, p.Upper)
	best := &de.Candidate{Fitness: math.Inf(1)}
	evals := 0

	err := pop.Evaluate(p.Objective, func(c *de.Candidate) {
		evals++
		if c.Fitness < best.Fitness {
			best = c.Clone()
		}
	})
	if err != nil {
		return Result{}, err
	}

	for evals < d.opts.MaxEvals {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		next := make(de.Population, np)
		for i, parent := range pop {
			trial := de.NewCandidate(rng, p.Dim, p.Lower, p.Upper)

			var r0, r1, r2 int
			for {
				r0, r1, r2 = rng.Intn(np), rng.Intn(np), rng.Intn(np)
				if r0 != r1 && r0 != r2 && r1 != r2 && r0 != i && r1 != i && r2 != i {
					break
				}
			}
			jrand := rng.Intn(p.Dim)

			for j := 0; j < p.Dim; j++ {
				if rng.Float64() < d.opts.Cr || j == jrand {
					trial.Vector[j] = pop[r0].Vector[j] + d.opts.F*(pop[r1].Vector[j]-pop[r2].Vector[j])
				} else {
					trial.Vector[j] = parent.Vector[j]
				}
			}

			trial.Repair(p.Lower, p.Upper)
			if err := trial.Evaluate(p.Objective); err != nil {
				return Result{}, err
			}
			evals++

			if trial.Fitness < best.Fitness {
				best = trial.Clone()
			}
			if trial.Fitness < parent.Fitness {
				next[i] = trial
			} else {
				next[i] = parent
			}
		}
		pop = next
	}

	return Result{
		BestVector:  best.Vector,
		BestFitness: best.Fitness,
		Evaluations: evals,
	}, nil
}
