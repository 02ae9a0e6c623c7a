package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Tasks understood by the CLI.
const (
	TaskMNIST = "mnist"
	TaskXOR   = "xor"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	Task           string  `yaml:"task"`
	TrainPath      string  `yaml:"train_path"`
	ValidationPath string  `yaml:"validation_path"`
	MaxRows        int     `yaml:"max_rows"`
	Scale          bool    `yaml:"scale"`
	FeatureMin     float64 `yaml:"feature_min"`
	FeatureMax     float64 `yaml:"feature_max"`

	Hidden       int     `yaml:"hidden"`
	Outputs      int     `yaml:"outputs"`
	ResizeHidden int     `yaml:"resize_hidden"`
	LearningRate float64 `yaml:"learning_rate"`
	Loss         string  `yaml:"loss"`

	BatchSize     int     `yaml:"batch_size"`
	Threshold     float64 `yaml:"threshold"`
	MaxIterations int     `yaml:"max_iterations"`
	Average       string  `yaml:"average"`
	Window        int     `yaml:"window"`
	Seed          int64   `yaml:"seed"`
	LogEvery      int     `yaml:"log_every"`

	EvalSamples    int  `yaml:"eval_samples"`
	LogPredictions bool `yaml:"log_predictions"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	Task           string
	TrainPath      string
	ValidationPath string
	Hidden         int
	LearningRate   float64
	BatchSize      int
	Threshold      float64
	MaxIterations  int
	Average        string
	Seed           int64
	LogEvery       int
	EvalSamples    int
}

// Load reads and validates a Config from YAML.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := parseYAML(f)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Task != "" {
		c.Task = o.Task
	}
	if o.TrainPath != "" {
		c.TrainPath = o.TrainPath
	}
	if o.ValidationPath != "" {
		c.ValidationPath = o.ValidationPath
	}
	if o.Hidden > 0 {
		c.Hidden = o.Hidden
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.Threshold > 0 {
		c.Threshold = o.Threshold
	}
	if o.MaxIterations > 0 {
		c.MaxIterations = o.MaxIterations
	}
	if o.Average != "" {
		c.Average = o.Average
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
	if o.EvalSamples > 0 {
		c.EvalSamples = o.EvalSamples
	}
}

// Validate verifies the config is runnable and fills defaults.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Task == "" {
		c.Task = TaskMNIST
	}
	switch c.Task {
	case TaskMNIST:
		if c.TrainPath == "" {
			return errors.New("train_path must be set for the mnist task")
		}
		if c.Outputs == 0 {
			c.Outputs = 10
		}
		// Zero bounds mean the range is taken from the training set.
		if c.Scale && !c.AutoBounds() && !(c.FeatureMax > c.FeatureMin) {
			return fmt.Errorf("feature_max must be > feature_min (got %g, %g)", c.FeatureMax, c.FeatureMin)
		}
	case TaskXOR:
		if c.Outputs == 0 {
			c.Outputs = 1
		}
		if c.BatchSize == 0 {
			c.BatchSize = 4
		}
		if c.Threshold == 0 {
			c.Threshold = 0.0005
		}
		if c.Hidden == 0 {
			c.Hidden = 2
		}
	default:
		return fmt.Errorf("unknown task %q", c.Task)
	}
	if c.Hidden <= 0 {
		return fmt.Errorf("hidden must be > 0 (got %d)", c.Hidden)
	}
	if c.Outputs <= 0 {
		return fmt.Errorf("outputs must be > 0 (got %d)", c.Outputs)
	}
	if c.Hidden+c.ResizeHidden <= 0 {
		return fmt.Errorf("resize_hidden %d leaves no hidden neurons", c.ResizeHidden)
	}
	if c.LearningRate < 0 {
		return fmt.Errorf("learning_rate must be >= 0 (got %g)", c.LearningRate)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.Threshold < 0 {
		return fmt.Errorf("threshold must be >= 0 (got %g)", c.Threshold)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must be >= 0 (got %d)", c.MaxIterations)
	}
	switch c.Average {
	case "", "iteration", "cumulative", "window":
	default:
		return fmt.Errorf("average must be iteration, cumulative or window (got %q)", c.Average)
	}
	switch c.Loss {
	case "", "squared", "cross_entropy":
	default:
		return fmt.Errorf("loss must be squared or cross_entropy (got %q)", c.Loss)
	}
	if c.EvalSamples < 0 {
		return fmt.Errorf("eval_samples must be >= 0 (got %d)", c.EvalSamples)
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 50
	}
	return nil
}

// AutoBounds reports whether feature scaling should use the observed range.
func (c *Config) AutoBounds() bool {
	return c.FeatureMin == 0 && c.FeatureMax == 0
}

func parseYAML(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}
