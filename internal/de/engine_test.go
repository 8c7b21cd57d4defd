package de

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sphere(x []float64) (float64, error) {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum, nil
}

func testConfig() Config {
	return Config{
		Dim:      2,
		PopSize:  4,
		MaxEvals: 20,
		Lower:    -1,
		Upper:    1,
		Tao:      0.1,
		Seed:     42,
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"dim_zero", func(c *Config) { c.Dim = 0 }, false},
		{"pop_too_small", func(c *Config) { c.PopSize = 3 }, false},
		{"no_budget", func(c *Config) { c.MaxEvals = 0 }, false},
		{"inverted_bounds", func(c *Config) { c.Lower, c.Upper = 1, -1 }, false},
		{"equal_bounds", func(c *Config) { c.Lower, c.Upper = 2, 2 }, false},
		{"tao_zero", func(c *Config) { c.Tao = 0 }, false},
		{"tao_above_one", func(c *Config) { c.Tao = 1.5 }, false},
		{"tao_one", func(c *Config) { c.Tao = 1 }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestNewEngineRequiresObjective(t *testing.T) {
	_, err := NewEngine(testConfig(), nil)
	assert.Error(t, err)
}

func TestRunOnSphere(t *testing.T) {
	cfg := testConfig()
	eng, err := NewEngine(cfg, sphere)
	require.NoError(t, err)

	res, err := eng.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.BestVector, cfg.Dim)
	assert.GreaterOrEqual(t, res.BestFitness, 0.0)
	// Worst case inside [-1,1]^2 is 2.
	assert.LessOrEqual(t, res.BestFitness, 2.0)
	assert.Equal(t, 20, res.Evaluations)
	assert.Equal(t, 4, res.Generations)

	// The returned vector must reproduce the returned fitness.
	fit, err := sphere(res.BestVector)
	require.NoError(t, err)
	assert.Equal(t, fit, res.BestFitness)
}

func TestRunConvergesOnSphere(t *testing.T) {
	eng, err := NewEngine(Config{
		Dim: 5, PopSize: 20, MaxEvals: 10000,
		Lower: -5, Upper: 5, Tao: 0.1, Seed: 1,
	}, sphere)
	require.NoError(t, err)

	res, err := eng.Run(context.Background())
	require.NoError(t, err)
	assert.Less(t, res.BestFitness, 0.01, "jDE should get close to the origin on sphere")
}

func TestBudgetRespect(t *testing.T) {
	cases := []struct {
		name      string
		maxEvals  int
		wantEvals int
		wantGens  int
	}{
		{"exact_multiple", 20, 20, 4},
		{"rounds_up", 19, 20, 4},
		{"one_over_init", 5, 8, 1},
		{"smaller_than_population", 2, 4, 0},
		{"equals_population", 4, 4, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.MaxEvals = tc.maxEvals
			eng, err := NewEngine(cfg, sphere)
			require.NoError(t, err)

			res, err := eng.Run(context.Background())
			require.NoError(t, err)

			assert.Equal(t, tc.wantEvals, res.Evaluations)
			assert.Equal(t, tc.wantGens, res.Generations)
			assert.GreaterOrEqual(t, res.Evaluations, tc.maxEvals)
			assert.Less(t, res.Evaluations, tc.maxEvals+cfg.PopSize)
		})
	}
}

func TestDonorsDistinct(t *testing.T) {
	cfg := testConfig()
	eng, err := NewEngine(cfg, sphere)
	require.NoError(t, err)
	eng.pop = NewPopulation(eng.rng, cfg.PopSize, cfg.Dim, cfg.Lower, cfg.Upper)

	for i := 0; i < cfg.PopSize; i++ {
		for trial := 0; trial < 200; trial++ {
			r0, r1, r2 := eng.donors(i)
			assert.NotEqual(t, i, r0)
			assert.NotEqual(t, i, r1)
			assert.NotEqual(t, i, r2)
			assert.NotEqual(t, r0, r1)
			assert.NotEqual(t, r0, r2)
			assert.NotEqual(t, r1, r2)
		}
	}
}

func TestSelectionNeverRegresses(t *testing.T) {
	cfg := testConfig()
	cfg.PopSize = 10
	eng, err := NewEngine(cfg, sphere)
	require.NoError(t, err)

	eng.pop = NewPopulation(eng.rng, cfg.PopSize, cfg.Dim, cfg.Lower, cfg.Upper)
	eng.best = &Candidate{Fitness: math.Inf(1)}
	require.NoError(t, eng.pop.Evaluate(eng.obj, func(c *Candidate) { eng.trackBest(c) }))

	before := make([]float64, cfg.PopSize)
	for i, c := range eng.pop {
		before[i] = c.Fitness
	}

	next, err := eng.generation()
	require.NoError(t, err)

	for i, c := range next {
		assert.LessOrEqual(t, c.Fitness, before[i], "fitness regressed at index %d", i)
	}
}

func TestBestFitnessMonotone(t *testing.T) {
	cfg := testConfig()
	cfg.MaxEvals = 400
	cfg.PopSize = 8

	var history []float64
	cfg.OnGeneration = func(s GenerationStats) {
		history = append(history, s.BestFitness)
	}

	eng, err := NewEngine(cfg, sphere)
	require.NoError(t, err)
	res, err := eng.Run(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, history)
	for i := 1; i < len(history); i++ {
		assert.LessOrEqual(t, history[i], history[i-1], "best fitness rose at generation %d", i)
	}
	assert.Equal(t, res.BestFitness, history[len(history)-1])
}

func TestForcedMutationDimension(t *testing.T) {
	// With Cr pinned to 0 and Tao vanishingly small, crossover takes the
	// parent's value everywhere except the forced jrand dimension, so the
	// offspring must still differ from its parent.
	cfg := testConfig()
	cfg.Tao = 1e-12
	eng, err := NewEngine(cfg, sphere)
	require.NoError(t, err)

	eng.pop = NewPopulation(eng.rng, cfg.PopSize, cfg.Dim, cfg.Lower, cfg.Upper)
	eng.best = &Candidate{Fitness: math.Inf(1)}
	require.NoError(t, eng.pop.Evaluate(eng.obj, nil))
	for _, c := range eng.pop {
		c.Cr = 0
	}

	for i := range eng.pop {
		trial, err := eng.makeOffspring(i)
		require.NoError(t, err)

		differing := 0
		for j := range trial.Vector {
			if trial.Vector[j] != eng.pop[i].Vector[j] {
				differing++
			}
		}
		assert.GreaterOrEqual(t, differing, 1, "offspring %d degenerated to a parent copy", i)
	}
}

func TestFullMutantCrossover(t *testing.T) {
	// With Cr pinned to 1 every dimension comes from the mutant; no parent
	// value survives except by coincidence of clamping.
	cfg := testConfig()
	cfg.Tao = 1e-12
	cfg.Dim = 6
	eng, err := NewEngine(cfg, sphere)
	require.NoError(t, err)

	eng.pop = NewPopulation(eng.rng, cfg.PopSize, cfg.Dim, cfg.Lower, cfg.Upper)
	eng.best = &Candidate{Fitness: math.Inf(1)}
	require.NoError(t, eng.pop.Evaluate(eng.obj, nil))
	for _, c := range eng.pop {
		c.Cr = 1
	}

	for i := range eng.pop {
		trial, err := eng.makeOffspring(i)
		require.NoError(t, err)

		for j := range trial.Vector {
			atBound := trial.Vector[j] == cfg.Lower || trial.Vector[j] == cfg.Upper
			if !atBound {
				assert.NotEqual(t, eng.pop[i].Vector[j], trial.Vector[j],
					"dimension %d of offspring %d retained the parent value", j, i)
			}
		}
	}
}

func TestConstantObjective(t *testing.T) {
	const plateau = 42.0
	constant := func([]float64) (float64, error) { return plateau, nil }

	cfg := testConfig()
	cfg.MaxEvals = 100
	eng, err := NewEngine(cfg, constant)
	require.NoError(t, err)

	res, err := eng.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, plateau, res.BestFitness)
}

func TestTiesPreferParent(t *testing.T) {
	constant := func([]float64) (float64, error) { return 1.0, nil }

	cfg := testConfig()
	eng, err := NewEngine(cfg, constant)
	require.NoError(t, err)

	eng.pop = NewPopulation(eng.rng, cfg.PopSize, cfg.Dim, cfg.Lower, cfg.Upper)
	eng.best = &Candidate{Fitness: math.Inf(1)}
	require.NoError(t, eng.pop.Evaluate(eng.obj, func(c *Candidate) { eng.trackBest(c) }))

	parents := append(Population(nil), eng.pop...)
	next, err := eng.generation()
	require.NoError(t, err)

	for i := range next {
		assert.Same(t, parents[i], next[i], "selection must keep the parent on equal fitness")
	}
}

func TestEvaluationFailureAbortsRun(t *testing.T) {
	boom := errors.New("sensor offline")
	calls := 0
	failing := func(x []float64) (float64, error) {
		calls++
		if calls > 6 {
			return 0, boom
		}
		return sphere(x)
	}

	eng, err := NewEngine(testConfig(), failing)
	require.NoError(t, err)

	_, err = eng.Run(context.Background())
	require.ErrorIs(t, err, ErrEvaluationFailed)
}

func TestNaNObjectiveAbortsRun(t *testing.T) {
	eng, err := NewEngine(testConfig(), func([]float64) (float64, error) {
		return math.NaN(), nil
	})
	require.NoError(t, err)

	_, err = eng.Run(context.Background())
	require.ErrorIs(t, err, ErrEvaluationFailed)
}

func TestRunIsReproducible(t *testing.T) {
	cfg := testConfig()
	cfg.MaxEvals = 200

	run := func() Result {
		eng, err := NewEngine(cfg, sphere)
		require.NoError(t, err)
		res, err := eng.Run(context.Background())
		require.NoError(t, err)
		return res
	}

	first, second := run(), run()
	assert.Equal(t, first.BestFitness, second.BestFitness)
	assert.Equal(t, first.BestVector, second.BestVector)
	assert.Equal(t, first.Evaluations, second.Evaluations)
}

func TestRunHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig()
	cfg.MaxEvals = 1000
	eng, err := NewEngine(cfg, sphere)
	require.NoError(t, err)

	_, err = eng.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
