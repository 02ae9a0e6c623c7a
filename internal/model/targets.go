package model

import "fmt"

// Targets maps a class label to the output vector the network should produce.
type Targets struct {
	vectors map[int][]float64
	width   int
}

// NewTargets validates that every vector has width entries.
func NewTargets(vectors map[int][]float64, width int) (*Targets, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: empty target table", ErrConfig)
	}
	copied := make(map[int][]float64, len(vectors))
	for label, v := range vectors {
		if len(v) != width {
			return nil, fmt.Errorf("%w: target for label %d has length %d, network has %d outputs",
				ErrConfig, label, len(v), width)
		}
		copied[label] = append([]float64(nil), v...)
	}
	return &Targets{vectors: copied, width: width}, nil
}

// OneHot returns the identity table for n classes labelled 0..n-1.
func OneHot(n int) *Targets {
	vectors := make(map[int][]float64, n)
	for label := 0; label < n; label++ {
		v := make([]float64, n)
		v[label] = 1
		vectors[label] = v
	}
	return &Targets{vectors: vectors, width: n}
}

// Width is the length of every target vector.
func (t *Targets) Width() int {
	return t.width
}

// Lookup returns the target vector for label.
func (t *Targets) Lookup(label int) ([]float64, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: no target table defined", ErrConfig)
	}
	v, ok := t.vectors[label]
	if !ok {
		return nil, fmt.Errorf("%w: label %d not in target table", ErrConfig, label)
	}
	return v, nil
}

// Check reports whether the table fits a network with outputs neurons.
func (t *Targets) Check(outputs int) error {
	if t == nil {
		return fmt.Errorf("%w: no target table defined", ErrConfig)
	}
	if t.width != outputs {
		return fmt.Errorf("%w: target width %d, network has %d outputs", ErrConfig, t.width, outputs)
	}
	return nil
}
