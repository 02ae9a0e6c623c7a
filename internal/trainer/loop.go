package trainer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"handprop/internal/dataset"
	"handprop/internal/metrics"
	"handprop/internal/model"
	"handprop/internal/report"
)

// DefaultMaxIterations caps a run when Options.MaxIterations is zero.
const DefaultMaxIterations = 100000

// Options captures the knobs required by the training loop.
type Options struct {
	BatchSize     int
	Threshold     float64
	MaxIterations int
	Average       metrics.Policy
	Window        int
	Seed          int64
	LogEvery      int
	Sink          report.Sink
}

// Result describes how a run ended. Converged is false when the iteration
// cap was reached first.
type Result struct {
	RunID      string
	Converged  bool
	Iterations int
	MeanLoss   float64
}

// Trainer runs random-minibatch online gradient descent on one model.
type Trainer struct {
	model    model.Model
	targets  *model.Targets
	examples []dataset.Example
	opts     Options

	runID     string
	sampler   *dataset.Sampler
	averager  *metrics.Averager
	window    metrics.Window
	iteration int
	meanLoss  float64
	converged bool
}

// New validates the dataset against the model and target table.
func New(m model.Model, targets *model.Targets, examples []dataset.Example, opts Options) (*Trainer, error) {
	if m == nil {
		return nil, errors.New("trainer: model is nil")
	}
	inputs, _, outputs := m.Dims()
	if err := targets.Check(outputs); err != nil {
		return nil, fmt.Errorf("trainer: %w", err)
	}
	if len(examples) == 0 {
		return nil, fmt.Errorf("trainer: %w: empty training set", model.ErrConfig)
	}
	if opts.BatchSize <= 0 {
		return nil, fmt.Errorf("trainer: %w: batch size must be > 0 (got %d)", model.ErrConfig, opts.BatchSize)
	}
	if opts.BatchSize > len(examples) {
		return nil, fmt.Errorf("trainer: %w: batch size %d exceeds %d examples", model.ErrConfig, opts.BatchSize, len(examples))
	}
	if opts.Threshold < 0 {
		return nil, fmt.Errorf("trainer: %w: threshold must be >= 0 (got %g)", model.ErrConfig, opts.Threshold)
	}
	for i, ex := range examples {
		if _, err := targets.Lookup(ex.Label); err != nil {
			return nil, fmt.Errorf("trainer: example %d: %w", i, err)
		}
		if len(ex.Features) != inputs {
			return nil, fmt.Errorf("trainer: example %d: %w: %d features, network expects %d",
				i, model.ErrShape, len(ex.Features), inputs)
		}
	}
	policy, err := metrics.ParsePolicy(string(opts.Average))
	if err != nil {
		return nil, fmt.Errorf("trainer: %w: %v", model.ErrConfig, err)
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.LogEvery <= 0 {
		opts.LogEvery = 1
	}
	if opts.Sink == nil {
		opts.Sink = report.Discard{}
	}
	return &Trainer{
		model:    m,
		targets:  targets,
		examples: examples,
		opts:     opts,
		runID:    uuid.NewString(),
		sampler:  dataset.NewSampler(len(examples), opts.Seed),
		averager: metrics.NewAverager(policy, opts.Window),
		meanLoss: 1,
	}, nil
}

// RunID identifies this trainer in reported events.
func (t *Trainer) RunID() string {
	return t.runID
}

// Run iterates until the mean loss is at or below the threshold or the
// iteration cap is reached.
func (t *Trainer) Run(ctx context.Context) (Result, error) {
	for !t.converged && t.iteration < t.opts.MaxIterations {
		if err := ctx.Err(); err != nil {
			return t.result(), err
		}
		if _, err := t.Step(); err != nil {
			return t.result(), err
		}
	}
	res := t.result()
	t.opts.Sink.Summary(report.SummaryEvent{
		RunID:      t.runID,
		Phase:      "train",
		Converged:  res.Converged,
		Iterations: res.Iterations,
		MeanLoss:   res.MeanLoss,
		WeightNorm: weightNorm(t.model),
	})
	return res, nil
}

// Step runs one iteration: sample a batch, then forward, loss and backprop
// for each example in turn. It returns the mean used for convergence.
func (t *Trainer) Step() (float64, error) {
	batch, err := t.sampler.Sample(t.examples, t.opts.BatchSize)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	for _, ex := range batch {
		target, err := t.targets.Lookup(ex.Label)
		if err != nil {
			return 0, err
		}
		pass, err := t.model.Forward(ex.Features)
		if err != nil {
			return 0, err
		}
		loss, err := t.model.Loss(pass, target)
		if err != nil {
			return 0, fmt.Errorf("iteration %d: %w", t.iteration+1, err)
		}
		t.averager.Add(loss)
		if err := t.model.Backprop(pass, target); err != nil {
			return 0, err
		}
	}
	t.iteration++
	t.meanLoss = t.averager.EndIteration()
	t.converged = t.meanLoss <= t.opts.Threshold
	t.window.Record(len(batch), time.Since(start), t.meanLoss)

	if t.iteration%t.opts.LogEvery == 0 || t.converged || t.iteration == t.opts.MaxIterations {
		snap := t.window.Snapshot()
		t.opts.Sink.Iteration(report.IterationEvent{
			RunID:          t.runID,
			Iteration:      t.iteration,
			MeanLoss:       snap.LastLoss,
			ExamplesPerSec: snap.ExamplesPerSec,
			AvgComputeMS:   snap.AvgComputeMS,
		})
	}
	return t.meanLoss, nil
}

func (t *Trainer) result() Result {
	return Result{
		RunID:      t.runID,
		Converged:  t.converged,
		Iterations: t.iteration,
		MeanLoss:   t.meanLoss,
	}
}

type weighted interface {
	HiddenWeights() *mat.Dense
	OutputWeights() *mat.Dense
}

// weightNorm is the Frobenius norm over both layers, or zero for models
// that do not expose their weights.
func weightNorm(m model.Model) float64 {
	w, ok := m.(weighted)
	if !ok {
		return 0
	}
	h := mat.Norm(w.HiddenWeights(), 2)
	o := mat.Norm(w.OutputWeights(), 2)
	return mat.Norm(mat.NewVecDense(2, []float64{h, o}), 2)
}
