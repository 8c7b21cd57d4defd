// Package opt defines the common optimizer interface and the adapters that
// put the self-adaptive DE core, a few peer algorithms and the external
// mayfly library behind it, so the runner and the server can treat them
// uniformly.
package opt

import (
	"context"
	"fmt"
	"sort"

	"github.com/cwbudde/evosolve/internal/de"
)

// Problem is one black-box minimization instance: dimension, uniform scalar
// box bounds and the objective to minimize.
type Problem struct {
	Dim          int
	Lower, Upper float64
	Objective    de.Objective
}

// Result is the outcome of one optimizer run.
type Result struct {
	BestVector  []float64 `json:"bestVector"`
	BestFitness float64   `json:"bestFitness"`
	Evaluations int       `json:"evaluations"`
}

// Optimizer is an optimization algorithm bound to its control parameters.
// Implementations are safe for sequential reuse but not for concurrent Run
// calls on the same value.
type Optimizer interface {
	Name() string
	Run(ctx context.Context, p Problem) (Result, error)
}

// Options carries the knobs shared across algorithm constructors. Fields an
// algorithm does not use are ignored by it.
type Options struct {
	PopSize  int
	MaxEvals int
	// Tao is the jDE self-adaptation probability.
	Tao float64
	// F and Cr are the fixed control parameters of classic DE.
	F, Cr float64
	// Progress, when set, receives per-generation updates from algorithms
	// that report them.
	Progress func(de.GenerationStats)
	Seed     int64
}

// DefaultOptions returns the settings used when the caller leaves a knob
// unset. Tao follows the published jDE value.
func DefaultOptions() Options {
	return Options{
		PopSize:  30,
		MaxEvals: 10000,
		Tao:      0.1,
		F:        0.5,
		Cr:       0.9,
		Seed:     42,
	}
}

type factory func(Options) Optimizer

var registry = map[string]factory{
	"jde":    func(o Options) Optimizer { return NewJDE(o) },
	"de":     func(o Options) Optimizer { return NewRand1Bin(o) },
	"random": func(o Options) Optimizer { return NewRandomSearch(o) },
	"mayfly": func(o Options) Optimizer { return NewMayfly(o) },
}

// New constructs the named optimizer with the given options.
func New(name string, o Options) (Optimizer, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown algorithm %q (available: %v)", name, Names())
	}
	return f(o), nil
}

// Names lists the registered algorithms in stable order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
