package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallConfig() Config {
	return Config{
		Algorithms: []string{"jde", "random"},
		Benchmarks: []string{"sphere", "rastrigin"},
		Dim:        2,
		PopSize:    8,
		MaxEvals:   200,
		Tao:        0.1,
		Runs:       3,
		Seed:       42,
		Workers:    2,
	}
}

func TestRunGrid(t *testing.T) {
	cfg := smallConfig()
	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Len(t, res.Records, 2*2*3)
	assert.Len(t, res.Summaries, 2*2)

	for _, r := range res.Records {
		assert.NotEmpty(t, r.Algorithm)
		assert.NotEmpty(t, r.Benchmark)
		assert.GreaterOrEqual(t, r.Evaluations, cfg.MaxEvals)
		assert.Len(t, r.BestVector, cfg.Dim)
	}

	for _, s := range res.Summaries {
		assert.Equal(t, cfg.Runs, s.Runs)
		assert.LessOrEqual(t, s.Best, s.Mean)
		assert.LessOrEqual(t, s.Mean, s.Worst)
	}
}

func TestRunIsReproducible(t *testing.T) {
	cfg := smallConfig()
	cfg.Runs = 2

	first, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	second, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, second.Records, len(first.Records))
	for i := range first.Records {
		assert.Equal(t, first.Records[i].BestFitness, second.Records[i].BestFitness,
			"record %d differs between identical experiments", i)
	}
}

func TestRunRejectsUnknownNames(t *testing.T) {
	cfg := smallConfig()
	cfg.Algorithms = []string{"warp-drive"}
	_, err := Run(context.Background(), cfg)
	assert.Error(t, err)

	cfg = smallConfig()
	cfg.Benchmarks = []string{"everest"}
	_, err = Run(context.Background(), cfg)
	assert.Error(t, err)
}

func TestRunRejectsEmptyConfig(t *testing.T) {
	_, err := Run(context.Background(), Config{})
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "experiment.yaml")
	doc := `
algorithms: [jde, de]
benchmarks: [sphere]
dim: 4
popSize: 10
maxEvals: 500
runs: 2
seed: 7
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"jde", "de"}, cfg.Algorithms)
	assert.Equal(t, 4, cfg.Dim)
	assert.Equal(t, 2, cfg.Runs)
	// Defaults fill the unset knobs.
	assert.Equal(t, 0.1, cfg.Tao)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("benchmarks: [sphere]\n"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
