package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"handprop/internal/config"
	"handprop/internal/dataset"
	"handprop/internal/evaluator"
	"handprop/internal/metrics"
	"handprop/internal/model"
	"handprop/internal/report"
	"handprop/internal/trainer"
)

func main() {
	cfgPath := flag.String("config", "configs/xor.yaml", "Path to YAML config")
	task := flag.String("task", "", "Override task (mnist or xor)")
	trainPath := flag.String("train", "", "Override training CSV file or directory")
	validationPath := flag.String("validation", "", "Override validation CSV file or directory")
	hidden := flag.Int("hidden", 0, "Hidden layer size")
	learningRate := flag.Float64("lr", 0, "Learning rate")
	batchSize := flag.Int("batch-size", 0, "Examples per iteration")
	threshold := flag.Float64("threshold", 0, "Mean loss at which training stops")
	maxIterations := flag.Int("max-iterations", 0, "Iteration cap")
	average := flag.String("average", "", "Loss averaging policy: iteration, cumulative or window")
	seed := flag.Int64("seed", 0, "PRNG seed")
	logEvery := flag.Int("log-every", 0, "Log every N iterations")
	evalSamples := flag.Int("eval-samples", 0, "Validation examples to evaluate (0 = all)")

	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	cfg.ApplyOverrides(config.Overrides{
		Task:           *task,
		TrainPath:      *trainPath,
		ValidationPath: *validationPath,
		Hidden:         *hidden,
		LearningRate:   *learningRate,
		BatchSize:      *batchSize,
		Threshold:      *threshold,
		MaxIterations:  *maxIterations,
		Average:        *average,
		Seed:           *seed,
		LogEvery:       *logEvery,
		EvalSamples:    *evalSamples,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	train, validation, targets, err := loadData(ctx, cfg)
	if err != nil {
		log.Fatalf("load data: %v", err)
	}
	log.Printf("task=%s train=%d validation=%d features=%d", cfg.Task, len(train), len(validation), len(train[0].Features))

	net, err := model.New(model.Config{
		Inputs:       len(train[0].Features),
		Hidden:       cfg.Hidden,
		Outputs:      cfg.Outputs,
		LearningRate: cfg.LearningRate,
		Loss:         model.LossKind(cfg.Loss),
		Seed:         cfg.Seed,
	})
	if err != nil {
		log.Fatalf("build network: %v", err)
	}
	if cfg.ResizeHidden != 0 {
		if err := net.ResizeHidden(cfg.ResizeHidden); err != nil {
			log.Fatalf("resize hidden layer: %v", err)
		}
	}
	inputs, hiddenSize, outputs := net.Dims()
	log.Printf("network inputs=%d hidden=%d outputs=%d lr=%g", inputs, hiddenSize, outputs, net.LearningRate())

	sink := report.Log{Predictions: cfg.LogPredictions}
	tr, err := trainer.New(net, targets, train, trainer.Options{
		BatchSize:     cfg.BatchSize,
		Threshold:     cfg.Threshold,
		MaxIterations: cfg.MaxIterations,
		Average:       metrics.Policy(cfg.Average),
		Window:        cfg.Window,
		Seed:          cfg.Seed,
		LogEvery:      cfg.LogEvery,
		Sink:          sink,
	})
	if err != nil {
		log.Fatalf("invalid training setup: %v", err)
	}
	res, err := tr.Run(ctx)
	if err != nil {
		log.Fatalf("training failed: %v", err)
	}
	if !res.Converged {
		log.Printf("model did not converge after %d iterations (mean_loss=%.6f)", res.Iterations, res.MeanLoss)
	}

	rep, err := evaluator.Evaluate(ctx, net, targets, validation, evaluator.Options{
		Samples: cfg.EvalSamples,
		Seed:    cfg.Seed,
		Sink:    sink,
	})
	if err != nil {
		log.Fatalf("evaluation failed: %v", err)
	}
	fmt.Printf("accuracy: %d/%d = %.4f\n", rep.Correct, rep.Total, rep.Accuracy())
}

func loadData(ctx context.Context, cfg *config.Config) (train, validation []dataset.Example, targets *model.Targets, err error) {
	if cfg.Task == config.TaskXOR {
		targets, err = model.NewTargets(map[int][]float64{0: {0}, 1: {1}}, cfg.Outputs)
		if err != nil {
			return nil, nil, nil, err
		}
		return dataset.XOR(), dataset.XOR(), targets, nil
	}

	opts := dataset.Options{MaxRows: cfg.MaxRows}
	train, err = dataset.LoadPath(ctx, cfg.TrainPath, opts)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("training set: %w", err)
	}
	if len(train) == 0 {
		return nil, nil, nil, fmt.Errorf("training set %s is empty", cfg.TrainPath)
	}
	validation = train
	if cfg.ValidationPath != "" {
		opts.Features = len(train[0].Features)
		validation, err = dataset.LoadPath(ctx, cfg.ValidationPath, opts)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("validation set: %w", err)
		}
	}
	if cfg.Scale {
		lo, hi := cfg.FeatureMin, cfg.FeatureMax
		if cfg.AutoBounds() {
			lo, hi = dataset.Bounds(train)
			log.Printf("feature_min=%g feature_max=%g source=training_set", lo, hi)
		}
		if err := dataset.Scale(train, lo, hi, -1, 1); err != nil {
			return nil, nil, nil, err
		}
		if cfg.ValidationPath != "" {
			if err := dataset.Scale(validation, lo, hi, -1, 1); err != nil {
				return nil, nil, nil, err
			}
		}
	}
	return train, validation, model.OneHot(cfg.Outputs), nil
}
