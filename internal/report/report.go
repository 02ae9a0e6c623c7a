// Package report carries training and evaluation progress to a sink.
package report

import (
	"log"
	"sync"
)

// IterationEvent is emitted once per training iteration.
type IterationEvent struct {
	RunID          string
	Iteration      int
	MeanLoss       float64
	ExamplesPerSec float64
	AvgComputeMS   float64
}

// PredictionEvent is emitted for every evaluated example.
type PredictionEvent struct {
	Label      int
	Predicted  int
	Confidence float64
}

// SummaryEvent closes a training run or an evaluation.
type SummaryEvent struct {
	RunID      string
	Phase      string
	Converged  bool
	Iterations int
	MeanLoss   float64
	Correct    int
	Total      int
	Accuracy   float64
	WeightNorm float64
}

// Sink receives progress events.
type Sink interface {
	Iteration(IterationEvent)
	Prediction(PredictionEvent)
	Summary(SummaryEvent)
}

// Log writes events through the standard logger.
type Log struct {
	// Predictions enables one line per evaluated example.
	Predictions bool
}

func (l Log) Iteration(e IterationEvent) {
	log.Printf("run=%s iteration=%d mean_loss=%.6f examples_per_sec=%.1f compute_ms=%.3f",
		e.RunID, e.Iteration, e.MeanLoss, e.ExamplesPerSec, e.AvgComputeMS)
}

func (l Log) Prediction(e PredictionEvent) {
	if !l.Predictions {
		return
	}
	log.Printf("label=%d predicted=%d confidence=%.4f", e.Label, e.Predicted, e.Confidence)
}

func (l Log) Summary(e SummaryEvent) {
	switch e.Phase {
	case "train":
		status := "converged"
		if !e.Converged {
			status = "not_converged"
		}
		log.Printf("run=%s status=%s iterations=%d mean_loss=%.6f weight_norm=%.4f",
			e.RunID, status, e.Iterations, e.MeanLoss, e.WeightNorm)
	default:
		log.Printf("phase=%s correct=%d total=%d accuracy=%.4f", e.Phase, e.Correct, e.Total, e.Accuracy)
	}
}

// Discard drops every event.
type Discard struct{}

func (Discard) Iteration(IterationEvent)   {}
func (Discard) Prediction(PredictionEvent) {}
func (Discard) Summary(SummaryEvent)       {}

// Recorder keeps every event in memory.
type Recorder struct {
	mu          sync.Mutex
	Iterations  []IterationEvent
	Predictions []PredictionEvent
	Summaries   []SummaryEvent
}

func (r *Recorder) Iteration(e IterationEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Iterations = append(r.Iterations, e)
}

func (r *Recorder) Prediction(e PredictionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Predictions = append(r.Predictions, e)
}

func (r *Recorder) Summary(e SummaryEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Summaries = append(r.Summaries, e)
}
