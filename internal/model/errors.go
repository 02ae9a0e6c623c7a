package model

import "errors"

var (
	// ErrConfig reports a setup problem: target table width, unknown labels,
	// missing target table or bad construction parameters.
	ErrConfig = errors.New("configuration error")
	// ErrShape reports a vector length mismatch between a weight row and its input.
	ErrShape = errors.New("shape error")
	// ErrNumeric reports a degenerate numeric input such as a saturated
	// cross-entropy output or an empty denominator.
	ErrNumeric = errors.New("numeric error")
)
