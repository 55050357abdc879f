package app

import (
	"context"
	"strings"

	"ecoclick-api/internal/domain"
	"ecoclick-api/internal/stats"
)

// RecordCategoryResult appends one scored attempt. The category is trimmed; a blank
// category is stored as "" and reported under "unknown". Id and score checks belong to the caller.
func (s *Service) RecordCategoryResult(ctx context.Context, userID domain.ID, category string, score float64) (domain.CategoryResult, error) {
	result := domain.CategoryResult{
		UserID:   userID,
		Category: strings.TrimSpace(category),
		Score:    score,
	}
	err := mutateAll(ctx, s.store, CollectionCategoryResults, func(items []domain.CategoryResult) ([]domain.CategoryResult, error) {
		return append(items, result), nil
	})
	if err != nil {
		return domain.CategoryResult{}, err
	}

	s.publish(ctx, "result.recorded", result)
	return result, nil
}

// ResponseStats aggregates category results and game answers. A zero userID covers everyone.
func (s *Service) ResponseStats(ctx context.Context, userID domain.ID) (stats.Report, error) {
	results, err := readAll[domain.CategoryResult](ctx, s.store, CollectionCategoryResults)
	if err != nil {
		return stats.Report{}, err
	}
	answers, err := s.answers.List(ctx, domain.AnswerFilter{UserID: userID})
	if err != nil {
		return stats.Report{}, err
	}
	return stats.Compute(results, answers, userID), nil
}
