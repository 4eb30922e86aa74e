// Package catalog holds the read-only sampling distributions used by the
// match engine and the seeded per-match sampler that draws from them.
package catalog

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrEmptyDistribution  = errors.New("catalog: distribution has no outcomes")
	ErrLengthMismatch     = errors.New("catalog: outcomes and probabilities differ in length")
	ErrNegativeWeight     = errors.New("catalog: negative or non-finite weight")
	ErrNotNormalized      = errors.New("catalog: probabilities do not sum to 1")
	ErrInvalidProbability = errors.New("catalog: probability outside [0,1]")
)

// normTolerance is the floating-point drift that is silently renormalized.
const normTolerance = 1e-6

// Distribution is a discrete distribution over a finite labelled outcome set.
// The zero value is empty and must not be sampled from.
type Distribution[T comparable] struct {
	outcomes []T
	probs    []float64
}

// NewDistribution builds a distribution from probabilities that already sum
// to 1 (within drift). Duplicate outcomes have their mass merged.
func NewDistribution[T comparable](outcomes []T, probs []float64) (Distribution[T], error) {
	d, total, err := build(outcomes, probs)
	if err != nil {
		return Distribution[T]{}, err
	}
	if math.Abs(total-1) > normTolerance {
		return Distribution[T]{}, fmt.Errorf("%w: total %.8f", ErrNotNormalized, total)
	}
	d.normalize(total)
	return d, nil
}

// FromWeights builds a distribution from arbitrary non-negative weights.
func FromWeights[T comparable](outcomes []T, weights []float64) (Distribution[T], error) {
	d, total, err := build(outcomes, weights)
	if err != nil {
		return Distribution[T]{}, err
	}
	d.normalize(total)
	return d, nil
}

// Must panics on a construction error. Intended for static tables and tests.
func Must[T comparable](d Distribution[T], err error) Distribution[T] {
	if err != nil {
		panic(err)
	}
	return d
}

func build[T comparable](outcomes []T, weights []float64) (Distribution[T], float64, error) {
	if len(outcomes) != len(weights) {
		return Distribution[T]{}, 0, ErrLengthMismatch
	}
	if len(outcomes) == 0 {
		return Distribution[T]{}, 0, ErrEmptyDistribution
	}

	idx := make(map[T]int, len(outcomes))
	d := Distribution[T]{
		outcomes: make([]T, 0, len(outcomes)),
		probs:    make([]float64, 0, len(outcomes)),
	}
	total := 0.0
	for i, o := range outcomes {
		w := weights[i]
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return Distribution[T]{}, 0, fmt.Errorf("%w: %v -> %v", ErrNegativeWeight, o, w)
		}
		total += w
		if j, ok := idx[o]; ok {
			d.probs[j] += w
			continue
		}
		idx[o] = len(d.outcomes)
		d.outcomes = append(d.outcomes, o)
		d.probs = append(d.probs, w)
	}
	if total <= 0 {
		return Distribution[T]{}, 0, fmt.Errorf("%w: zero total mass", ErrEmptyDistribution)
	}
	return d, total, nil
}

func (d *Distribution[T]) normalize(total float64) {
	for i := range d.probs {
		d.probs[i] /= total
	}
}

// Len returns the number of distinct outcomes.
func (d Distribution[T]) Len() int { return len(d.outcomes) }

// Empty reports whether the distribution has no outcomes.
func (d Distribution[T]) Empty() bool { return len(d.outcomes) == 0 }

// Outcomes returns a copy of the outcome labels in index order.
func (d Distribution[T]) Outcomes() []T {
	out := make([]T, len(d.outcomes))
	copy(out, d.outcomes)
	return out
}

// Probs returns a copy of the probabilities in index order.
func (d Distribution[T]) Probs() []float64 {
	out := make([]float64, len(d.probs))
	copy(out, d.probs)
	return out
}

// Prob returns the probability mass of o, or 0 when o is not in the support.
func (d Distribution[T]) Prob(o T) float64 {
	for i, x := range d.outcomes {
		if x == o {
			return d.probs[i]
		}
	}
	return 0
}

// Bernoulli is a single success probability.
type Bernoulli struct {
	P float64
}

// NewBernoulli validates p.
func NewBernoulli(p float64) (Bernoulli, error) {
	if p < 0 || p > 1 || math.IsNaN(p) {
		return Bernoulli{}, fmt.Errorf("%w: %v", ErrInvalidProbability, p)
	}
	return Bernoulli{P: p}, nil
}
