package dataset

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Bounds returns the smallest and largest feature value across examples.
func Bounds(examples []Example) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, ex := range examples {
		if len(ex.Features) == 0 {
			continue
		}
		lo = math.Min(lo, floats.Min(ex.Features))
		hi = math.Max(hi, floats.Max(ex.Features))
	}
	return lo, hi
}

// Scale maps every feature linearly from [min, max] onto [lo, hi] in place.
// MNIST pixels use Scale(examples, 0, 255, -1, 1).
func Scale(examples []Example, min, max, lo, hi float64) error {
	if !(max > min) {
		return fmt.Errorf("dataset: scale range [%g, %g] is empty", min, max)
	}
	factor := (hi - lo) / (max - min)
	for _, ex := range examples {
		floats.AddConst(-min, ex.Features)
		floats.Scale(factor, ex.Features)
		floats.AddConst(lo, ex.Features)
	}
	return nil
}

// XOR returns the XOR truth table with inputs mapped from {0, 1} to {-1, 1},
// the sensitive region of the sigmoid.
func XOR() []Example {
	table := []Example{
		{Label: 0, Features: []float64{0, 0}},
		{Label: 1, Features: []float64{0, 1}},
		{Label: 1, Features: []float64{1, 0}},
		{Label: 0, Features: []float64{1, 1}},
	}
	if err := Scale(table, 0, 1, -1, 1); err != nil {
		panic(err)
	}
	return table
}
