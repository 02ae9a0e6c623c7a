package metrics

import (
	"math"
	"testing"
	"time"
)

func TestWindowSnapshot(t *testing.T) {
	var w Window
	w.Record(64, 30*time.Millisecond, 1.2)
	w.Record(64, 30*time.Millisecond, 0.8)
	snap := w.Snapshot()
	if math.Abs(snap.ExamplesPerSec-2133.3333) > 1 {
		t.Fatalf("unexpected throughput %.2f", snap.ExamplesPerSec)
	}
	if math.Abs(snap.AvgComputeMS-30) > 1e-9 {
		t.Fatalf("unexpected compute time %.2f", snap.AvgComputeMS)
	}
	if w.examples != 0 || w.steps != 0 {
		t.Fatalf("window was not reset")
	}
	if snap.LastLoss != 0.8 {
		t.Fatalf("expected last loss 0.8, got %.2f", snap.LastLoss)
	}
}
