package stats

import "testing"

func TestComputeLevelAtZero(t *testing.T) {
	lvl := ComputeLevel(0)
	if lvl.Level != 1 || lvl.CurrentThreshold != 0 || lvl.Progress != 0 {
		t.Fatalf("unexpected level at 0: %+v", lvl)
	}
	if lvl.NextThreshold == nil || *lvl.NextThreshold != 500 {
		t.Fatalf("expected next threshold 500, got %v", lvl.NextThreshold)
	}
}

func TestComputeLevelHalfway(t *testing.T) {
	lvl := ComputeLevel(1000)
	if lvl.Level != 2 || lvl.CurrentThreshold != 500 {
		t.Fatalf("unexpected level at 1000: %+v", lvl)
	}
	if lvl.NextThreshold == nil || *lvl.NextThreshold != 1500 {
		t.Fatalf("expected next threshold 1500, got %v", lvl.NextThreshold)
	}
	if lvl.Progress != 0.5 {
		t.Fatalf("expected progress 0.5, got %v", lvl.Progress)
	}
}

func TestComputeLevelMax(t *testing.T) {
	for _, points := range []float64{8500, 8501, 12000, 1e9} {
		lvl := ComputeLevel(points)
		if lvl.Level != MaxLevel || lvl.NextThreshold != nil || lvl.Progress != 1 {
			t.Fatalf("points %v: expected max level, got %+v", points, lvl)
		}
		if lvl.CurrentThreshold != 8500 {
			t.Fatalf("points %v: expected current threshold 8500, got %v", points, lvl.CurrentThreshold)
		}
	}
}

func TestComputeLevelExactThresholds(t *testing.T) {
	for i, threshold := range Thresholds {
		lvl := ComputeLevel(threshold)
		if lvl.Level != i+1 {
			t.Fatalf("threshold %v: expected level %d, got %d", threshold, i+1, lvl.Level)
		}
		if i < MaxLevel-1 && lvl.Progress != 0 {
			t.Fatalf("threshold %v: expected zero progress, got %v", threshold, lvl.Progress)
		}
	}
}

func TestComputeLevelMonotonicAndBounded(t *testing.T) {
	prev := 0
	for p := -200.0; p <= 10000; p += 50 {
		lvl := ComputeLevel(p)
		if lvl.Level < 1 || lvl.Level > MaxLevel {
			t.Fatalf("points %v: level %d out of range", p, lvl.Level)
		}
		if lvl.Level < prev {
			t.Fatalf("points %v: level dropped from %d to %d", p, prev, lvl.Level)
		}
		if lvl.Progress < 0 || lvl.Progress > 1 {
			t.Fatalf("points %v: progress %v out of range", p, lvl.Progress)
		}
		prev = lvl.Level
	}
}

func TestThresholdsStrictlyIncreasing(t *testing.T) {
	for i := 1; i < len(Thresholds); i++ {
		if Thresholds[i] <= Thresholds[i-1] {
			t.Fatalf("threshold %d (%v) not above %v", i, Thresholds[i], Thresholds[i-1])
		}
	}
}
