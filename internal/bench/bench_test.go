package bench

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnown(t *testing.T) {
	b, err := Lookup("ackley")
	require.NoError(t, err)
	assert.Equal(t, "ackley", b.Name)
	assert.Less(t, b.Lower, b.Upper)
	assert.NotNil(t, b.Objective)
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("does-not-exist")
	assert.Error(t, err)
}

func TestNamesSortedAndComplete(t *testing.T) {
	names := Names()
	require.NotEmpty(t, names)
	assert.IsNonDecreasing(t, names)

	for _, name := range names {
		b, err := Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, name, b.Name)
	}
}

func TestGlobalMinima(t *testing.T) {
	origin := make([]float64, 4)
	ones := []float64{1, 1, 1, 1}

	cases := []struct {
		name string
		at   []float64
		want float64
	}{
		{"sphere", origin, 0},
		{"ackley", origin, 0},
		{"rastrigin", origin, 0},
		{"griewank", origin, 0},
		{"rosenbrock", ones, 0},
		{"schwefel", []float64{420.9687, 420.9687, 420.9687, 420.9687}, 0},
		{"styblinski-tang", []float64{-2.903534, -2.903534, -2.903534, -2.903534}, -39.16617 * 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := Lookup(tc.name)
			require.NoError(t, err)

			got, err := b.Objective(tc.at)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-3)
		})
	}
}

func TestObjectivesFiniteInsideBounds(t *testing.T) {
	for _, name := range Names() {
		b, err := Lookup(name)
		require.NoError(t, err)

		for _, point := range [][]float64{
			{b.Lower, b.Lower, b.Lower},
			{b.Upper, b.Upper, b.Upper},
			{b.Lower, 0, b.Upper},
		} {
			got, err := b.Objective(point)
			require.NoError(t, err)
			assert.False(t, math.IsNaN(got) || math.IsInf(got, 0),
				"%s returned non-finite value at %v", name, point)
		}
	}
}
