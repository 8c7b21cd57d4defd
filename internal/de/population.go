package de

import "math/rand"

// Population is the fixed-size ordered collection of candidates for one
// generation. Order defines parent/offspring pairing index-for-index across
// generations; it carries no ranking semantics.
type Population []*Candidate

// NewPopulation creates np independently constructed random candidates, in
// creation order.
func NewPopulation(rng *rand.Rand, np, dim int, lower, upper float64) Population {
	pop := make(Population, np)
	for i := range pop {
		pop[i] = NewCandidate(rng, dim, lower, upper)
	}
	return pop
}

// Evaluate evaluates every candidate exactly once, invoking onEval after
// each successful evaluation so the caller can account budget and track the
// best-ever candidate. Stops at the first evaluation failure.
func (p Population) Evaluate(obj Objective, onEval func(*Candidate)) error {
	for _, c := range p {
		if err := c.Evaluate(obj); err != nil {
			return err
		}
		if onEval != nil {
			onEval(c)
		}
	}
	return nil
}
