package evaluator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handprop/internal/dataset"
	"handprop/internal/model"
	"handprop/internal/report"
)

// digitNetwork has ten inputs, ten hidden units and ten outputs. Hidden unit
// i copies input i, and output i copies hidden unit perm[i], so a one-hot
// input for digit d is classified as the i with perm[i] == d.
func digitNetwork(t *testing.T, perm [10]int) *model.Network {
	t.Helper()
	hidden := make([][]float64, 10)
	for i := range hidden {
		row := make([]float64, 11)
		row[i] = 10
		row[10] = -5
		hidden[i] = row
	}
	output := make([][]float64, 10)
	for i := range output {
		row := make([]float64, 11)
		row[perm[i]] = 10
		row[10] = -5
		output[i] = row
	}
	net, err := model.FromWeights(hidden, output, 0.1, model.SquaredErrorLoss)
	require.NoError(t, err)
	return net
}

func digits() []dataset.Example {
	examples := make([]dataset.Example, 10)
	for d := range examples {
		features := make([]float64, 10)
		features[d] = 1
		examples[d] = dataset.Example{Label: d, Features: features}
	}
	return examples
}

func TestEvaluateDigits(t *testing.T) {
	// Outputs 7, 8 and 9 are wired to the wrong hidden units.
	perm := [10]int{0, 1, 2, 3, 4, 5, 6, 8, 9, 7}
	rec := &report.Recorder{}
	rep, err := Evaluate(context.Background(), digitNetwork(t, perm), model.OneHot(10), digits(), Options{Sink: rec})
	require.NoError(t, err)

	assert.Equal(t, 10, rep.Total)
	assert.Equal(t, 7, rep.Correct)
	assert.Equal(t, 7.0/10.0, rep.Accuracy())
	require.Len(t, rep.Predictions, 10)
	assert.Equal(t, Prediction{Label: 7, Predicted: 9, Confidence: rep.Predictions[7].Confidence}, rep.Predictions[7])
	assert.Greater(t, rep.Predictions[0].Confidence, 0.99)

	require.Len(t, rec.Predictions, 10)
	require.Len(t, rec.Summaries, 1)
	assert.Equal(t, "eval", rec.Summaries[0].Phase)
	assert.Equal(t, 0.7, rec.Summaries[0].Accuracy)
}

func TestEvaluateSample(t *testing.T) {
	perm := [10]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	rep, err := Evaluate(context.Background(), digitNetwork(t, perm), model.OneHot(10), digits(), Options{Samples: 4, Seed: 9})
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Total)
	assert.Equal(t, 4, rep.Correct)
	assert.Equal(t, 1.0, rep.Accuracy())

	_, err = Evaluate(context.Background(), digitNetwork(t, perm), model.OneHot(10), digits(), Options{Samples: 11})
	require.ErrorIs(t, err, model.ErrConfig)
}

func TestEvaluateErrors(t *testing.T) {
	net := digitNetwork(t, [10]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})

	_, err := Evaluate(context.Background(), net, model.OneHot(10), nil, Options{})
	require.ErrorIs(t, err, model.ErrNumeric)

	_, err = Evaluate(context.Background(), net, nil, digits(), Options{})
	require.ErrorIs(t, err, model.ErrConfig)

	_, err = Evaluate(context.Background(), net, model.OneHot(5), digits(), Options{})
	require.ErrorIs(t, err, model.ErrConfig)

	_, err = Evaluate(context.Background(), net, model.OneHot(10), []dataset.Example{{Label: 1, Features: []float64{1}}}, Options{})
	require.ErrorIs(t, err, model.ErrShape)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Evaluate(ctx, net, model.OneHot(10), digits(), Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestClassify(t *testing.T) {
	label, conf := Classify([]float64{0.2, 0.9, 0.9})
	assert.Equal(t, 1, label)
	assert.Equal(t, 0.9, conf)

	label, conf = Classify([]float64{0.8})
	assert.Equal(t, 1, label)
	assert.Equal(t, 0.8, conf)

	label, conf = Classify([]float64{0.25})
	assert.Equal(t, 0, label)
	assert.Equal(t, 0.75, conf)
}
