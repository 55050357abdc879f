package stats

import (
	"reflect"
	"testing"

	"ecoclick-api/internal/domain"
)

func TestComputeEmpty(t *testing.T) {
	report := Compute(nil, nil, 0)

	s := report.Summary
	if s.TotalSessions != 0 || s.TotalAnswers != 0 || s.AvgScore != 0 || s.TotalProgressPoints != 0 {
		t.Fatalf("expected zero summary, got %+v", s)
	}
	if s.Level != 1 || s.LevelProgress != 0 {
		t.Fatalf("expected level 1 with no progress, got %+v", s)
	}
	if report.Categories == nil || len(report.Categories) != 0 {
		t.Fatalf("expected empty non-nil categories, got %#v", report.Categories)
	}
}

func TestComputeForUser(t *testing.T) {
	results := []domain.CategoryResult{
		{UserID: 1, Category: "water", Score: 100},
		{UserID: 1, Category: "water", Score: 50},
		{UserID: 1, Category: "air", Score: 100},
		{UserID: 2, Category: "water", Score: 100},
	}

	report := Compute(results, nil, 1)

	s := report.Summary
	if s.TotalSessions != 3 {
		t.Fatalf("expected 3 sessions, got %d", s.TotalSessions)
	}
	if s.AvgScore != 83.3 {
		t.Fatalf("expected avg 83.3, got %v", s.AvgScore)
	}
	if s.TotalProgressPoints != 200 {
		t.Fatalf("expected 200 progress points, got %v", s.TotalProgressPoints)
	}
	if s.Level != 1 || s.LevelProgress != 0.4 {
		t.Fatalf("expected level 1 at 0.4, got level %d progress %v", s.Level, s.LevelProgress)
	}

	want := []CategoryStat{
		{Category: "water", AvgScore: 75, Attempts: 2},
		{Category: "air", AvgScore: 100, Attempts: 1},
	}
	if !reflect.DeepEqual(report.Categories, want) {
		t.Fatalf("unexpected categories: %+v", report.Categories)
	}
}

func TestComputeAllUsers(t *testing.T) {
	results := []domain.CategoryResult{
		{UserID: 1, Category: "water", Score: 100},
		{UserID: 2, Category: "water", Score: 100},
	}
	answers := []domain.GameAnswer{{UserID: 1}, {UserID: 2}, {UserID: 3}}

	report := Compute(results, answers, 0)
	if report.Summary.TotalSessions != 2 || report.Summary.TotalAnswers != 3 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}

	scoped := Compute(results, answers, 3)
	if scoped.Summary.TotalSessions != 0 || scoped.Summary.TotalAnswers != 1 {
		t.Fatalf("unexpected scoped summary: %+v", scoped.Summary)
	}
}

func TestProgressPointsRequirePerfectScore(t *testing.T) {
	results := []domain.CategoryResult{
		{UserID: 1, Category: "air", Score: 99.999},
		{UserID: 1, Category: "air", Score: 100.0001},
		{UserID: 1, Category: "air", Score: 100},
	}
	if got := ProgressPoints(results); got != 100 {
		t.Fatalf("expected only the perfect attempt to count, got %v", got)
	}
}

func TestComputeGroupsEmptyCategoryAsUnknown(t *testing.T) {
	results := []domain.CategoryResult{
		{UserID: 1, Category: "", Score: 40},
		{UserID: 1, Category: "", Score: 60},
	}
	report := Compute(results, nil, 0)
	if len(report.Categories) != 1 || report.Categories[0].Category != "unknown" {
		t.Fatalf("expected a single unknown bucket, got %+v", report.Categories)
	}
	if report.Categories[0].AvgScore != 50 || report.Categories[0].Attempts != 2 {
		t.Fatalf("unexpected unknown bucket: %+v", report.Categories[0])
	}
}

func TestComputeReachesHigherLevels(t *testing.T) {
	results := make([]domain.CategoryResult, 0, 90)
	for i := 0; i < 90; i++ {
		results = append(results, domain.CategoryResult{UserID: 7, Category: "energy", Score: 100})
	}
	s := Compute(results, nil, 7).Summary
	if s.TotalProgressPoints != 9000 || s.Level != 10 || s.LevelProgress != 1 || s.NextThreshold != nil {
		t.Fatalf("expected max level, got %+v", s)
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	results := []domain.CategoryResult{
		{UserID: 1, Category: "water", Score: 100},
		{UserID: 2, Category: "air", Score: 30},
	}
	snapshot := append([]domain.CategoryResult(nil), results...)

	first := Compute(results, nil, 0)
	second := Compute(results, nil, 0)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical reports, got %+v and %+v", first, second)
	}
	if !reflect.DeepEqual(results, snapshot) {
		t.Fatalf("input records were modified: %+v", results)
	}
}
