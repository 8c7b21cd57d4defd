// Package bench provides the catalogue of standard continuous minimization
// benchmarks used to exercise the optimizers. Every function is pure,
// deterministic, and minimized at a known point, so runs are comparable
// across algorithms and repetitions.
package bench

import (
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/evosolve/internal/de"
)

// Benchmark couples an objective with its canonical box bounds. Bounds are
// scalar and applied uniformly to every dimension.
type Benchmark struct {
	Name         string
	Lower, Upper float64
	Objective    de.Objective
}

var catalogue = map[string]Benchmark{
	"sphere": {
		Name: "sphere", Lower: -5.12, Upper: 5.12,
		Objective: Sphere,
	},
	"ackley": {
		Name: "ackley", Lower: -32.768, Upper: 32.768,
		Objective: Ackley,
	},
	"rastrigin": {
		Name: "rastrigin", Lower: -5.12, Upper: 5.12,
		Objective: Rastrigin,
	},
	"rosenbrock": {
		Name: "rosenbrock", Lower: -5, Upper: 10,
		Objective: Rosenbrock,
	},
	"griewank": {
		Name: "griewank", Lower: -600, Upper: 600,
		Objective: Griewank,
	},
	"schwefel": {
		Name: "schwefel", Lower: -500, Upper: 500,
		Objective: Schwefel,
	},
	"styblinski-tang": {
		Name: "styblinski-tang", Lower: -5, Upper: 5,
		Objective: StyblinskiTang,
	},
}

// Lookup returns the named benchmark.
func Lookup(name string) (Benchmark, error) {
	b, ok := catalogue[name]
	if !ok {
		return Benchmark{}, fmt.Errorf("unknown benchmark %q (available: %v)", name, Names())
	}
	return b, nil
}

// Names lists the catalogue in stable order, for help output and errors.
func Names() []string {
	names := make([]string, 0, len(catalogue))
	for name := range catalogue {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sphere is the sum of squares; global minimum 0 at the origin.
func Sphere(x []float64) (float64, error) {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum, nil
}

// Ackley has a nearly flat outer region and a large hole at the origin;
// global minimum 0 at the origin.
func Ackley(x []float64) (float64, error) {
	const a, b, c = 20, 0.2, 2 * math.Pi
	n := float64(len(x))

	var sumSq, sumCos float64
	for _, v := range x {
		sumSq += v * v
		sumCos += math.Cos(c * v)
	}
	return -a*math.Exp(-b*math.Sqrt(sumSq/n)) - math.Exp(sumCos/n) + a + math.E, nil
}

// Rastrigin is highly multimodal with regularly distributed local minima;
// global minimum 0 at the origin.
func Rastrigin(x []float64) (float64, error) {
	sum := 10 * float64(len(x))
	for _, v := range x {
		sum += v*v - 10*math.Cos(2*math.Pi*v)
	}
	return sum, nil
}

// Rosenbrock is the classic banana valley; global minimum 0 at (1, ..., 1).
func Rosenbrock(x []float64) (float64, error) {
	var sum float64
	for i := 0; i < len(x)-1; i++ {
		a := x[i+1] - x[i]*x[i]
		b := 1 - x[i]
		sum += 100*a*a + b*b
	}
	return sum, nil
}

// Griewank combines a quadratic bowl with an oscillating product term;
// global minimum 0 at the origin.
func Griewank(x []float64) (float64, error) {
	var sum float64
	prod := 1.0
	for i, v := range x {
		sum += v * v / 4000
		prod *= math.Cos(v / math.Sqrt(float64(i+1)))
	}
	return sum - prod + 1, nil
}

// Schwefel's deceptive landscape puts the global minimum far from the next
// best local minima; minimum ~0 at (420.9687, ..., 420.9687).
func Schwefel(x []float64) (float64, error) {
	sum := 418.9829 * float64(len(x))
	for _, v := range x {
		sum -= v * math.Sin(math.Sqrt(math.Abs(v)))
	}
	return sum, nil
}

// StyblinskiTang; global minimum -39.166*d at (-2.903534, ..., -2.903534).
func StyblinskiTang(x []float64) (float64, error) {
	var sum float64
	for _, v := range x {
		sum += v*v*v*v - 16*v*v + 5*v
	}
	return sum / 2, nil
}
