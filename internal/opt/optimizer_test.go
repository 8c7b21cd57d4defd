package opt

import (
	"context"
	"testing"

	"github.com/cwbudde/evosolve/internal/bench"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sphereProblem(dim int) Problem {
	return Problem{Dim: dim, Lower: -5, Upper: 5, Objective: bench.Sphere}
}

func TestNewUnknownAlgorithm(t *testing.T) {
	_, err := New("annealing", DefaultOptions())
	assert.Error(t, err)
}

func TestNamesStable(t *testing.T) {
	assert.Equal(t, []string{"de", "jde", "mayfly", "random"}, Names())
}

func TestJDEOnSphere(t *testing.T) {
	o := DefaultOptions()
	o.PopSize = 20
	o.MaxEvals = 5000
	o.Seed = 7

	jde := NewJDE(o)
	res, err := jde.Run(context.Background(), sphereProblem(3))
	require.NoError(t, err)

	assert.Len(t, res.BestVector, 3)
	assert.Less(t, res.BestFitness, 0.1)
	assert.GreaterOrEqual(t, res.Evaluations, o.MaxEvals)
}

func TestJDERejectsBadConfig(t *testing.T) {
	o := DefaultOptions()
	o.PopSize = 2

	_, err := NewJDE(o).Run(context.Background(), sphereProblem(2))
	assert.Error(t, err)
}

func TestRand1BinOnSphere(t *testing.T) {
	o := DefaultOptions()
	o.PopSize = 20
	o.MaxEvals = 5000
	o.Seed = 7

	res, err := NewRand1Bin(o).Run(context.Background(), sphereProblem(3))
	require.NoError(t, err)

	assert.Less(t, res.BestFitness, 0.1)
	assert.GreaterOrEqual(t, res.Evaluations, o.MaxEvals)
	assert.Less(t, res.Evaluations, o.MaxEvals+o.PopSize)
}

func TestRand1BinRejectsSmallPopulation(t *testing.T) {
	o := DefaultOptions()
	o.PopSize = 3

	_, err := NewRand1Bin(o).Run(context.Background(), sphereProblem(2))
	assert.Error(t, err)
}

func TestRandomSearchOnSphere(t *testing.T) {
	o := DefaultOptions()
	o.MaxEvals = 2000
	o.Seed = 7

	res, err := NewRandomSearch(o).Run(context.Background(), sphereProblem(2))
	require.NoError(t, err)

	assert.Equal(t, o.MaxEvals, res.Evaluations)
	// Worst case inside [-5,5]^2 is 50; random search should do far better.
	assert.Less(t, res.BestFitness, 5.0)
}

func TestRandomSearchHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRandomSearch(DefaultOptions()).Run(ctx, sphereProblem(2))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptimizersAreReproducible(t *testing.T) {
	for _, name := range []string{"jde", "de", "random"} {
		t.Run(name, func(t *testing.T) {
			o := DefaultOptions()
			o.MaxEvals = 1000
			o.Seed = 99

			run := func() Result {
				alg, err := New(name, o)
				require.NoError(t, err)
				res, err := alg.Run(context.Background(), sphereProblem(2))
				require.NoError(t, err)
				return res
			}

			first, second := run(), run()
			assert.Equal(t, first.BestFitness, second.BestFitness)
			assert.Equal(t, first.BestVector, second.BestVector)
		})
	}
}
