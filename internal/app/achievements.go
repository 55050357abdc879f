package app

import (
	"context"
	"fmt"
	"strings"

	"ecoclick-api/internal/domain"
)

// NewAchievement is the input of CreateAchievement.
type NewAchievement struct {
	Name        string
	Description string
	Points      float64
	Icon        string
}

func (s *Service) ListAchievements(ctx context.Context) ([]domain.Achievement, error) {
	return readAll[domain.Achievement](ctx, s.store, CollectionAchievements)
}

func (s *Service) CreateAchievement(ctx context.Context, in NewAchievement) (domain.Achievement, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Description) == "" {
		return domain.Achievement{}, fmt.Errorf("%w: name and description are required", domain.ErrInvalidInput)
	}

	id, err := nextID(ctx, s.store, CollectionAchievements, func(a domain.Achievement) domain.ID { return a.ID })
	if err != nil {
		return domain.Achievement{}, err
	}

	achievement := domain.Achievement{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Points:      in.Points,
		Icon:        in.Icon,
	}
	err = mutateAll(ctx, s.store, CollectionAchievements, func(items []domain.Achievement) ([]domain.Achievement, error) {
		return append(items, achievement), nil
	})
	if err != nil {
		return domain.Achievement{}, err
	}

	s.publish(ctx, "achievement.created", achievement)
	return achievement, nil
}

func indexAchievements(items []domain.Achievement) map[domain.ID]domain.Achievement {
	byID := make(map[domain.ID]domain.Achievement, len(items))
	for _, a := range items {
		if _, seen := byID[a.ID]; !seen {
			byID[a.ID] = a
		}
	}
	return byID
}
