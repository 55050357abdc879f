// Package stats aggregates category results into dashboard summaries and gamification levels.
package stats

import (
	"strconv"

	"ecoclick-api/internal/domain"
)

// PerfectScore is the only score that counts toward progress points.
const PerfectScore = 100

// unknownCategory groups results recorded without a category.
const unknownCategory = "unknown"

// Summary is the headline block of a stats report.
type Summary struct {
	TotalSessions       int      `json:"totalSessions"`
	TotalAnswers        int      `json:"totalAnswers"`
	AvgScore            float64  `json:"avgScore"`
	TotalProgressPoints float64  `json:"totalProgressPoints"`
	Level               int      `json:"level"`
	LevelProgress       float64  `json:"levelProgress"`
	CurrentThreshold    float64  `json:"currentThreshold"`
	NextThreshold       *float64 `json:"nextThreshold"`
}

// CategoryStat is the attempt count and mean score of one category.
type CategoryStat struct {
	Category string  `json:"category"`
	AvgScore float64 `json:"avgScore"`
	Attempts int     `json:"attempts"`
}

// Report is the full output of Compute.
type Report struct {
	Summary    Summary        `json:"summary"`
	Categories []CategoryStat `json:"categories"`
}

// Compute builds a Report from raw records. A zero userID includes every user.
// Categories are listed in the order they first appear. Inputs are not modified.
func Compute(results []domain.CategoryResult, answers []domain.GameAnswer, userID domain.ID) Report {
	matched := filterResults(results, userID)

	answerCount := 0
	for _, a := range answers {
		if userID.IsZero() || a.UserID == userID {
			answerCount++
		}
	}

	var sum float64
	type bucket struct {
		sum      float64
		attempts int
	}
	order := make([]string, 0)
	buckets := make(map[string]*bucket)
	for _, r := range matched {
		sum += r.Score
		key := r.Category
		if key == "" {
			key = unknownCategory
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			order = append(order, key)
		}
		b.sum += r.Score
		b.attempts++
	}

	avg := 0.0
	if len(matched) > 0 {
		avg = round(sum/float64(len(matched)), 1)
	}

	categories := make([]CategoryStat, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		categories = append(categories, CategoryStat{
			Category: key,
			AvgScore: round(b.sum/float64(b.attempts), 1),
			Attempts: b.attempts,
		})
	}

	points := ProgressPoints(matched)
	lvl := ComputeLevel(points)

	return Report{
		Summary: Summary{
			TotalSessions:       len(matched),
			TotalAnswers:        answerCount,
			AvgScore:            avg,
			TotalProgressPoints: points,
			Level:               lvl.Level,
			LevelProgress:       round(lvl.Progress, 2),
			CurrentThreshold:    lvl.CurrentThreshold,
			NextThreshold:       lvl.NextThreshold,
		},
		Categories: categories,
	}
}

// ProgressPoints sums the scores of perfect attempts. Partial credit never counts.
func ProgressPoints(results []domain.CategoryResult) float64 {
	var total float64
	for _, r := range results {
		if r.Score == PerfectScore {
			total += r.Score
		}
	}
	return total
}

func filterResults(results []domain.CategoryResult, userID domain.ID) []domain.CategoryResult {
	if userID.IsZero() {
		return results
	}
	out := make([]domain.CategoryResult, 0, len(results))
	for _, r := range results {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

// round rounds v to the given number of decimals on its decimal form.
func round(v float64, decimals int) float64 {
	out, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	if err != nil {
		return v
	}
	return out
}
