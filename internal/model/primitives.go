package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// LossKind selects the reported loss function.
type LossKind string

const (
	SquaredErrorLoss LossKind = "squared"
	CrossEntropyLoss LossKind = "cross_entropy"
)

// Sigmoid is the logistic activation.
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Dot returns the inner product of v and w.
func Dot(v, w []float64) (float64, error) {
	if len(v) != len(w) {
		return 0, fmt.Errorf("%w: dot of length %d and %d", ErrShape, len(v), len(w))
	}
	return floats.Dot(v, w), nil
}

// SquaredError returns 0.5 * sum((out-target)^2).
func SquaredError(out, target []float64) (float64, error) {
	if len(out) != len(target) {
		return 0, fmt.Errorf("%w: output length %d, target length %d", ErrShape, len(out), len(target))
	}
	sum := 0.0
	for i, o := range out {
		d := o - target[i]
		sum += d * d
	}
	return 0.5 * sum, nil
}

// CrossEntropy returns the binary cross-entropy summed over every output.
// Every output must lie strictly inside (0, 1).
func CrossEntropy(out, target []float64) (float64, error) {
	if len(out) != len(target) {
		return 0, fmt.Errorf("%w: output length %d, target length %d", ErrShape, len(out), len(target))
	}
	sum := 0.0
	for i, o := range out {
		if !(o > 0 && o < 1) {
			return 0, fmt.Errorf("%w: cross-entropy output[%d]=%g outside (0,1)", ErrNumeric, i, o)
		}
		t := target[i]
		sum += t*math.Log(o) + (1-t)*math.Log(1-o)
	}
	return -sum, nil
}

// Argmax returns the index of the largest element, preferring the lowest
// index on ties.
func Argmax(v []float64) int {
	return floats.MaxIdx(v)
}

// Validate rejects unknown loss kinds. The empty kind means squared error.
func (k LossKind) Validate() error {
	switch k {
	case SquaredErrorLoss, CrossEntropyLoss, "":
		return nil
	}
	return fmt.Errorf("%w: unknown loss %q", ErrConfig, string(k))
}

func (k LossKind) compute(out, target []float64) (float64, error) {
	switch k {
	case SquaredErrorLoss, "":
		return SquaredError(out, target)
	case CrossEntropyLoss:
		return CrossEntropy(out, target)
	}
	return 0, k.Validate()
}
