package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMNIST(t *testing.T) {
	path := writeConfig(t, `
# digits
task: mnist
train_path: data/mnist_train.csv
validation_path: "data/mnist_test.csv"
scale: true
feature_min: 0
hidden: 45
learning_rate: 0.01
batch_size: 256
threshold: 0.1
max_iterations: 1000
average: window
window: 5
seed: 7
eval_samples: 100
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "data/mnist_train.csv", cfg.TrainPath)
	assert.Equal(t, "data/mnist_test.csv", cfg.ValidationPath)
	assert.Equal(t, 45, cfg.Hidden)
	assert.Equal(t, 10, cfg.Outputs)
	assert.True(t, cfg.AutoBounds())
	assert.Equal(t, 0.01, cfg.LearningRate)
	assert.Equal(t, "window", cfg.Average)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 50, cfg.LogEvery)
}

func TestLoadXORDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "task: xor\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Hidden)
	assert.Equal(t, 1, cfg.Outputs)
	assert.Equal(t, 4, cfg.BatchSize)
	assert.Equal(t, 0.0005, cfg.Threshold)
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "task: xor\nsteps: 3\n",
		"unknown task":  "task: cifar\n",
		"missing train": "task: mnist\nhidden: 3\nbatch_size: 1\n",
		"bad average":   "task: xor\naverage: ema\n",
		"bad loss":      "task: xor\nloss: hinge\n",
		"bad resize":    "task: xor\nresize_hidden: -2\n",
		"bad type":      "task: xor\nhidden: many\n",
		"bad range":     "task: mnist\ntrain_path: a.csv\nhidden: 3\nbatch_size: 1\nscale: true\nfeature_min: 5\nfeature_max: 1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "open config"))
}

func TestApplyOverrides(t *testing.T) {
	cfg := &Config{Task: TaskXOR, Hidden: 2, BatchSize: 4, Seed: 1}
	cfg.ApplyOverrides(Overrides{Hidden: 8, Seed: 9, Average: "cumulative", Threshold: 0.01})
	assert.Equal(t, 8, cfg.Hidden)
	assert.Equal(t, int64(9), cfg.Seed)
	assert.Equal(t, 4, cfg.BatchSize)
	assert.Equal(t, "cumulative", cfg.Average)
	assert.Equal(t, 0.01, cfg.Threshold)
	require.NoError(t, cfg.Validate())
}
