// Package evaluator measures classification accuracy with inference-only
// forward passes.
package evaluator

import (
	"context"
	"fmt"

	"handprop/internal/dataset"
	"handprop/internal/model"
	"handprop/internal/report"
)

// Options configures an evaluation.
type Options struct {
	// Samples evaluates a random subset of this size. Zero uses every example.
	Samples int
	Seed    int64
	Sink    report.Sink
	// Phase labels the summary event; it defaults to "eval".
	Phase string
}

// Prediction is the outcome for one example.
type Prediction struct {
	Label      int
	Predicted  int
	Confidence float64
}

// Report aggregates an evaluation.
type Report struct {
	Correct     int
	Total       int
	Predictions []Prediction
}

// Accuracy is Correct/Total.
func (r Report) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

// Evaluate runs every selected example through p and compares the predicted
// class with its label. Labels must exist in targets.
func Evaluate(ctx context.Context, p model.Predictor, targets *model.Targets, examples []dataset.Example, opts Options) (Report, error) {
	if targets == nil {
		return Report{}, fmt.Errorf("evaluator: %w: no target table defined", model.ErrConfig)
	}
	if d, ok := p.(interface{ Dims() (int, int, int) }); ok {
		_, _, outputs := d.Dims()
		if err := targets.Check(outputs); err != nil {
			return Report{}, fmt.Errorf("evaluator: %w", err)
		}
	}
	if opts.Sink == nil {
		opts.Sink = report.Discard{}
	}
	if opts.Phase == "" {
		opts.Phase = "eval"
	}
	if opts.Samples < 0 {
		return Report{}, fmt.Errorf("evaluator: %w: sample size must be >= 0 (got %d)", model.ErrConfig, opts.Samples)
	}
	if opts.Samples > 0 {
		subset, err := dataset.NewSampler(len(examples), opts.Seed).Sample(examples, opts.Samples)
		if err != nil {
			return Report{}, fmt.Errorf("evaluator: %w: %v", model.ErrConfig, err)
		}
		examples = subset
	}
	if len(examples) == 0 {
		return Report{}, fmt.Errorf("evaluator: %w: empty validation set", model.ErrNumeric)
	}

	rep := Report{Predictions: make([]Prediction, 0, len(examples))}
	for i, ex := range examples {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if _, err := targets.Lookup(ex.Label); err != nil {
			return rep, fmt.Errorf("evaluator: example %d: %w", i, err)
		}
		pass, err := p.Forward(ex.Features)
		if err != nil {
			return rep, fmt.Errorf("evaluator: example %d: %w", i, err)
		}
		predicted, confidence := Classify(pass.Output)
		pred := Prediction{Label: ex.Label, Predicted: predicted, Confidence: confidence}
		rep.Predictions = append(rep.Predictions, pred)
		rep.Total++
		if predicted == ex.Label {
			rep.Correct++
		}
		opts.Sink.Prediction(report.PredictionEvent(pred))
	}

	opts.Sink.Summary(report.SummaryEvent{
		Phase:    opts.Phase,
		Correct:  rep.Correct,
		Total:    rep.Total,
		Accuracy: rep.Accuracy(),
	})
	return rep, nil
}

// Classify maps an output vector to a class and its confidence. Several
// outputs select the first maximum. A single output is a binary decision:
// class 1 when it is at least 0.5, with the confidence of that class.
func Classify(output []float64) (int, float64) {
	if len(output) == 1 {
		if output[0] >= 0.5 {
			return 1, output[0]
		}
		return 0, 1 - output[0]
	}
	idx := model.Argmax(output)
	return idx, output[idx]
}
