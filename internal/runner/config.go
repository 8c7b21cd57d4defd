package runner

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes one experiment: which algorithms to run against which
// benchmarks, with how many repetitions. Loadable from YAML or built
// programmatically.
type Config struct {
	Algorithms []string `yaml:"algorithms" json:"algorithms"`
	Benchmarks []string `yaml:"benchmarks" json:"benchmarks"`
	Dim        int      `yaml:"dim" json:"dim"`
	PopSize    int      `yaml:"popSize" json:"popSize"`
	MaxEvals   int      `yaml:"maxEvals" json:"maxEvals"`
	Tao        float64  `yaml:"tao" json:"tao"`
	Runs       int      `yaml:"runs" json:"runs"`
	// Seed is the base seed; repetition k of any cell runs with Seed+k so
	// experiments are reproducible end to end.
	Seed int64 `yaml:"seed" json:"seed"`
	// Workers bounds the number of concurrently executing repetitions.
	Workers int `yaml:"workers" json:"workers"`
}

// LoadConfig reads and validates an experiment config from a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read experiment config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse experiment config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyDefaults fills unset numeric knobs with the standard settings.
func (c *Config) ApplyDefaults() {
	if c.Dim == 0 {
		c.Dim = 10
	}
	if c.PopSize == 0 {
		c.PopSize = 30
	}
	if c.MaxEvals == 0 {
		c.MaxEvals = 10000
	}
	if c.Tao == 0 {
		c.Tao = 0.1
	}
	if c.Runs == 0 {
		c.Runs = 1
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
}

// Validate rejects experiments that cannot run.
func (c Config) Validate() error {
	if len(c.Algorithms) == 0 {
		return fmt.Errorf("experiment needs at least one algorithm")
	}
	if len(c.Benchmarks) == 0 {
		return fmt.Errorf("experiment needs at least one benchmark")
	}
	if c.Dim < 1 {
		return fmt.Errorf("dimension must be >= 1, got %d", c.Dim)
	}
	if c.Runs < 1 {
		return fmt.Errorf("runs must be >= 1, got %d", c.Runs)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	return nil
}
