package dataset

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrSampleSize indicates a request for more examples than the dataset holds.
var ErrSampleSize = errors.New("dataset: sample size exceeds dataset")

// Sampler draws random subsets without replacement from a fixed-size dataset.
type Sampler struct {
	rng  *rand.Rand
	perm []int
}

// NewSampler returns a sampler over n examples seeded with seed.
func NewSampler(n int, seed int64) *Sampler {
	if seed == 0 {
		seed = 42
	}
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return &Sampler{rng: rand.New(rand.NewSource(seed)), perm: perm}
}

// Indices returns k distinct indices in random order.
func (s *Sampler) Indices(k int) ([]int, error) {
	n := len(s.perm)
	if k < 0 || k > n {
		return nil, fmt.Errorf("%w: %d of %d", ErrSampleSize, k, n)
	}
	// Partial Fisher-Yates: the first k slots end up holding the sample.
	for i := 0; i < k; i++ {
		j := i + s.rng.Intn(n-i)
		s.perm[i], s.perm[j] = s.perm[j], s.perm[i]
	}
	return append([]int(nil), s.perm[:k]...), nil
}

// Sample returns k distinct examples drawn from examples, which must hold
// as many records as the sampler was created for.
func (s *Sampler) Sample(examples []Example, k int) ([]Example, error) {
	if len(examples) != len(s.perm) {
		return nil, fmt.Errorf("dataset: sampler built for %d examples, got %d", len(s.perm), len(examples))
	}
	idx, err := s.Indices(k)
	if err != nil {
		return nil, err
	}
	out := make([]Example, len(idx))
	for i, j := range idx {
		out[i] = examples[j]
	}
	return out, nil
}
