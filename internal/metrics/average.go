package metrics

import "fmt"

// Policy selects which losses feed the convergence mean.
type Policy string

const (
	// Cumulative averages every loss observed since the run started.
	Cumulative Policy = "cumulative"
	// PerIteration averages the losses of the latest iteration only.
	PerIteration Policy = "iteration"
	// Sliding averages the per-iteration means of the last N iterations.
	Sliding Policy = "window"
)

// DefaultWindow is the sliding window length used when none is given.
const DefaultWindow = 10

// ParsePolicy maps a config string onto a Policy. The empty string selects
// PerIteration.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case "":
		return PerIteration, nil
	case Cumulative, PerIteration, Sliding:
		return p, nil
	}
	return "", fmt.Errorf("unknown averaging policy %q", s)
}

// Averager tracks the running loss mean of a training run.
type Averager struct {
	policy Policy

	totalSum   float64
	totalCount int

	iterSum   float64
	iterCount int

	ring   []float64
	next   int
	filled int
}

// NewAverager returns an averager for policy. size is the window length for
// Sliding and is ignored otherwise.
func NewAverager(policy Policy, size int) *Averager {
	a := &Averager{policy: policy}
	if policy == Sliding {
		if size <= 0 {
			size = DefaultWindow
		}
		a.ring = make([]float64, size)
	}
	return a
}

// Add records the loss of one example in the current iteration.
func (a *Averager) Add(loss float64) {
	a.totalSum += loss
	a.totalCount++
	a.iterSum += loss
	a.iterCount++
}

// EndIteration closes the current iteration and returns the mean the
// convergence test should use.
func (a *Averager) EndIteration() float64 {
	iterMean := 0.0
	if a.iterCount > 0 {
		iterMean = a.iterSum / float64(a.iterCount)
	}
	a.iterSum, a.iterCount = 0, 0

	switch a.policy {
	case Cumulative:
		if a.totalCount == 0 {
			return 0
		}
		return a.totalSum / float64(a.totalCount)
	case Sliding:
		a.ring[a.next] = iterMean
		a.next = (a.next + 1) % len(a.ring)
		if a.filled < len(a.ring) {
			a.filled++
		}
		sum := 0.0
		for _, v := range a.ring[:a.filled] {
			sum += v
		}
		return sum / float64(a.filled)
	default:
		return iterMean
	}
}
