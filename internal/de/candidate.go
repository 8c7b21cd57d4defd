package de

import (
	"fmt"
	"math"
	"math/rand"
)

// Default control parameters for freshly constructed candidates, per the
// jDE scheme of Brest et al.
const (
	initialF  = 0.5
	initialCr = 0.9
)

// Objective is the black-box function being minimized. It receives a vector
// of length Dim and returns its fitness (lower is better). The function is
// bound once per engine and must be deterministic and side-effect-free;
// otherwise selection and best-tracking become non-reproducible.
type Objective func(x []float64) (float64, error)

// Candidate is a single solution: a real-valued vector, its own adaptive
// control parameters and its cached fitness. Fitness is +Inf until the
// candidate has been evaluated; any change to Vector invalidates Fitness
// until Evaluate is called again.
type Candidate struct {
	Vector  []float64
	F       float64
	Cr      float64
	Fitness float64
}

// NewCandidate constructs a candidate with a uniform random vector inside
// [lower, upper], default control parameters and unevaluated fitness.
func NewCandidate(rng *rand.Rand, dim int, lower, upper float64) *Candidate {
	c := &Candidate{
		Vector:  make([]float64, dim),
		F:       initialF,
		Cr:      initialCr,
		Fitness: math.Inf(1),
	}
	for i := range c.Vector {
		c.Vector[i] = lower + (upper-lower)*rng.Float64()
	}
	return c
}

// Repair clamps every out-of-range dimension to the nearest bound. Applied
// independently per dimension, always before evaluation.
func (c *Candidate) Repair(lower, upper float64) {
	for i, v := range c.Vector {
		if v > upper {
			c.Vector[i] = upper
		} else if v < lower {
			c.Vector[i] = lower
		}
	}
}

// Evaluate invokes the bound objective on the candidate's vector and caches
// the result. A failing objective, or a NaN/Inf fitness, is reported as
// ErrEvaluationFailed so it cannot corrupt selection through an unordered
// comparison. Budget accounting is the caller's job.
func (c *Candidate) Evaluate(obj Objective) error {
	fit, err := obj(c.Vector)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEvaluationFailed, err)
	}
	if math.IsNaN(fit) || math.IsInf(fit, 0) {
		return fmt.Errorf("%w: objective returned %v", ErrEvaluationFailed, fit)
	}
	c.Fitness = fit
	return nil
}

// Clone returns a full value snapshot of the candidate. Used for best-ever
// tracking so later mutation of the live population cannot alter the
// recorded best.
func (c *Candidate) Clone() *Candidate {
	dup := &Candidate{
		Vector:  make([]float64, len(c.Vector)),
		F:       c.F,
		Cr:      c.Cr,
		Fitness: c.Fitness,
	}
	copy(dup.Vector, c.Vector)
	return dup
}

// Equal reports whether two candidates represent the same solution: equal
// vectors and equal fitness. F and Cr are algorithm bookkeeping, not solution
// identity, and do not participate.
func (c *Candidate) Equal(other *Candidate) bool {
	if other == nil || c.Fitness != other.Fitness || len(c.Vector) != len(other.Vector) {
		return false
	}
	for i, v := range c.Vector {
		if v != other.Vector[i] {
			return false
		}
	}
	return true
}
