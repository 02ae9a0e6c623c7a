package model

// Pass holds the activations produced by one forward pass.
type Pass struct {
	// Input is the raw input with the constant bias term appended.
	Input  []float64
	Hidden []float64
	Output []float64
}

// Predictor runs inference-only forward passes.
type Predictor interface {
	Forward(input []float64) (Pass, error)
}

// Model is the training surface the trainer drives.
type Model interface {
	Predictor
	Dims() (inputs, hidden, outputs int)
	Loss(pass Pass, target []float64) (float64, error)
	Backprop(pass Pass, target []float64) error
}
