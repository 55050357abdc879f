package stats

// Thresholds are the minimum progress points for levels 1 through 10.
// L1=0, L2=500, L3=1500, then +1000 per level.
var Thresholds = [...]float64{0, 500, 1500, 2500, 3500, 4500, 5500, 6500, 7500, 8500}

// MaxLevel is the highest reachable level.
const MaxLevel = len(Thresholds)

// Level is the position of a point total on the threshold table.
type Level struct {
	Level            int      `json:"level"`
	CurrentThreshold float64  `json:"currentThreshold"`
	NextThreshold    *float64 `json:"nextThreshold"`
	Progress         float64  `json:"progress"`
}

// ComputeLevel maps a point total to its level and the fraction of the way to the next one.
func ComputeLevel(points float64) Level {
	maxIdx := len(Thresholds) - 1
	idx := 0
	for i := maxIdx; i >= 0; i-- {
		if points >= Thresholds[i] {
			idx = i
			break
		}
	}

	lvl := Level{
		Level:            idx + 1,
		CurrentThreshold: Thresholds[idx],
		Progress:         1,
	}
	if idx < maxIdx {
		next := Thresholds[idx+1]
		lvl.NextThreshold = &next
		lvl.Progress = clamp((points-lvl.CurrentThreshold)/(next-lvl.CurrentThreshold), 0, 1)
	}
	return lvl
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
