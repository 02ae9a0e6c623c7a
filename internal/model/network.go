package model

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultLearningRate is used when Config.LearningRate is zero.
const DefaultLearningRate = 0.1

// Config describes the shape and training knobs of a Network.
type Config struct {
	Inputs       int
	Hidden       int
	Outputs      int
	LearningRate float64
	Loss         LossKind
	Seed         int64
}

// Network is a fully connected network with one sigmoid hidden layer and a
// sigmoid output layer. Each weight row ends with its bias term.
type Network struct {
	inputs int
	hidden [][]float64
	output [][]float64
	lr     float64
	loss   LossKind
	rng    *rand.Rand
}

var _ Model = (*Network)(nil)

// New constructs a network with weights drawn uniformly from [-1, 1].
func New(cfg Config) (*Network, error) {
	if cfg.Inputs <= 0 || cfg.Hidden <= 0 || cfg.Outputs <= 0 {
		return nil, fmt.Errorf("%w: inputs, hidden and outputs must be > 0 (got %d, %d, %d)",
			ErrConfig, cfg.Inputs, cfg.Hidden, cfg.Outputs)
	}
	if cfg.LearningRate < 0 {
		return nil, fmt.Errorf("%w: learning rate must be >= 0 (got %g)", ErrConfig, cfg.LearningRate)
	}
	if cfg.LearningRate == 0 {
		cfg.LearningRate = DefaultLearningRate
	}
	if err := cfg.Loss.Validate(); err != nil {
		return nil, err
	}
	n := &Network{
		inputs: cfg.Inputs,
		lr:     cfg.LearningRate,
		loss:   cfg.Loss,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}
	n.hidden = make([][]float64, cfg.Hidden)
	for i := range n.hidden {
		n.hidden[i] = n.randomRow(cfg.Inputs + 1)
	}
	n.output = make([][]float64, cfg.Outputs)
	for i := range n.output {
		n.output[i] = n.randomRow(cfg.Hidden + 1)
	}
	return n, nil
}

// FromWeights builds a network around explicit weight rows. The rows are copied.
func FromWeights(hidden, output [][]float64, lr float64, loss LossKind) (*Network, error) {
	if len(hidden) == 0 || len(output) == 0 {
		return nil, fmt.Errorf("%w: both layers need at least one neuron", ErrConfig)
	}
	inputs := len(hidden[0]) - 1
	if inputs <= 0 {
		return nil, fmt.Errorf("%w: hidden rows need at least one weight and a bias", ErrShape)
	}
	if err := checkRows(hidden, inputs+1); err != nil {
		return nil, fmt.Errorf("hidden layer: %w", err)
	}
	if err := checkRows(output, len(hidden)+1); err != nil {
		return nil, fmt.Errorf("output layer: %w", err)
	}
	if err := loss.Validate(); err != nil {
		return nil, err
	}
	if lr <= 0 {
		lr = DefaultLearningRate
	}
	return &Network{
		inputs: inputs,
		hidden: copyRows(hidden),
		output: copyRows(output),
		lr:     lr,
		loss:   loss,
		rng:    rand.New(rand.NewSource(1)),
	}, nil
}

// Dims returns the input size and the neuron counts of both layers.
func (n *Network) Dims() (inputs, hidden, outputs int) {
	return n.inputs, len(n.hidden), len(n.output)
}

// LearningRate returns the step size used by Backprop.
func (n *Network) LearningRate() float64 {
	return n.lr
}

// Forward propagates input through both layers. It does not modify the network.
func (n *Network) Forward(input []float64) (Pass, error) {
	if len(input) != n.inputs {
		return Pass{}, fmt.Errorf("%w: input length %d, network expects %d", ErrShape, len(input), n.inputs)
	}
	x := withBias(input)
	hidden, err := activate(n.hidden, x)
	if err != nil {
		return Pass{}, fmt.Errorf("hidden layer: %w", err)
	}
	output, err := activate(n.output, withBias(hidden))
	if err != nil {
		return Pass{}, fmt.Errorf("output layer: %w", err)
	}
	return Pass{Input: x, Hidden: hidden, Output: output}, nil
}

// Loss evaluates the configured loss of pass against target.
func (n *Network) Loss(pass Pass, target []float64) (float64, error) {
	return n.loss.compute(pass.Output, target)
}

// Backprop applies one gradient descent step for the example that produced
// pass. The logistic delta (o-t)*o*(1-o) is used for the output layer
// whichever loss is reported. Every delta is computed from the weights as
// they were before this call; the updates are applied afterwards.
func (n *Network) Backprop(pass Pass, target []float64) error {
	if err := n.checkPass(pass, target); err != nil {
		return err
	}

	deltaOut := make([]float64, len(n.output))
	for i, o := range pass.Output {
		deltaOut[i] = (o - target[i]) * o * (1 - o)
	}

	// Hidden unit i feeds column i of every output row.
	deltaHidden := make([]float64, len(n.hidden))
	for i, h := range pass.Hidden {
		sum := 0.0
		for k, row := range n.output {
			sum += deltaOut[k] * row[i]
		}
		deltaHidden[i] = h * (1 - h) * sum
	}

	hiddenIn := withBias(pass.Hidden)
	for i, row := range n.output {
		floats.AddScaled(row, -n.lr*deltaOut[i], hiddenIn)
	}
	for i, row := range n.hidden {
		floats.AddScaled(row, -n.lr*deltaHidden[i], pass.Input)
	}
	return nil
}

// ResizeHidden adds k hidden neurons when k > 0 and removes the last -k when
// k < 0. Output rows gain or lose the matching weights in front of their bias.
func (n *Network) ResizeHidden(k int) error {
	switch {
	case k > 0:
		for i := 0; i < k; i++ {
			n.hidden = append(n.hidden, n.randomRow(n.inputs+1))
		}
		for i, row := range n.output {
			bias := row[len(row)-1]
			grown := append(row[:len(row)-1:len(row)-1], n.randomRow(k)...)
			n.output[i] = append(grown, bias)
		}
	case k < 0:
		remove := -k
		if remove >= len(n.hidden) {
			return fmt.Errorf("%w: cannot remove %d of %d hidden neurons", ErrConfig, remove, len(n.hidden))
		}
		n.hidden = n.hidden[:len(n.hidden)-remove]
		for i, row := range n.output {
			bias := row[len(row)-1]
			kept := row[:len(row)-1-remove]
			n.output[i] = append(kept, bias)
		}
	}
	return nil
}

// Reinitialize redraws every weight from [-1, 1].
func (n *Network) Reinitialize() {
	for _, layer := range [][][]float64{n.hidden, n.output} {
		for _, row := range layer {
			for j := range row {
				row[j] = n.randomWeight()
			}
		}
	}
}

// HiddenWeights returns a copy of the hidden layer, one row per neuron.
func (n *Network) HiddenWeights() *mat.Dense {
	return dense(n.hidden)
}

// OutputWeights returns a copy of the output layer, one row per neuron.
func (n *Network) OutputWeights() *mat.Dense {
	return dense(n.output)
}

func (n *Network) checkPass(pass Pass, target []float64) error {
	switch {
	case len(pass.Input) != n.inputs+1:
		return fmt.Errorf("%w: pass input length %d, want %d", ErrShape, len(pass.Input), n.inputs+1)
	case len(pass.Hidden) != len(n.hidden):
		return fmt.Errorf("%w: pass hidden length %d, want %d", ErrShape, len(pass.Hidden), len(n.hidden))
	case len(pass.Output) != len(n.output):
		return fmt.Errorf("%w: pass output length %d, want %d", ErrShape, len(pass.Output), len(n.output))
	case len(target) != len(n.output):
		return fmt.Errorf("%w: target length %d, want %d", ErrShape, len(target), len(n.output))
	}
	return nil
}

// randomWeight draws from {-1.00, -0.99, ..., 1.00}.
func (n *Network) randomWeight() float64 {
	return float64(n.rng.Intn(201)-100) / 100
}

func (n *Network) randomRow(size int) []float64 {
	row := make([]float64, size)
	for i := range row {
		row[i] = n.randomWeight()
	}
	return row
}

func activate(layer [][]float64, x []float64) ([]float64, error) {
	out := make([]float64, len(layer))
	for i, w := range layer {
		net, err := Dot(x, w)
		if err != nil {
			return nil, fmt.Errorf("neuron %d: %w", i, err)
		}
		out[i] = Sigmoid(net)
	}
	return out, nil
}

func withBias(v []float64) []float64 {
	out := make([]float64, len(v)+1)
	copy(out, v)
	out[len(v)] = 1
	return out
}

func checkRows(rows [][]float64, width int) error {
	for i, row := range rows {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has length %d, want %d", ErrShape, i, len(row), width)
		}
	}
	return nil
}

func copyRows(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

func dense(rows [][]float64) *mat.Dense {
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for _, row := range rows {
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), cols, data)
}
