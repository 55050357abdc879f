package app

import (
	"context"
	"fmt"
	"strings"

	"ecoclick-api/internal/domain"
)

// unknownAchievementName labels user achievements whose achievement record is gone.
const unknownAchievementName = "Unknown"

// ListProgress returns earned achievements joined with their metadata.
// A zero userID lists every user's progress; a non-zero one must name an existing user.
func (s *Service) ListProgress(ctx context.Context, userID domain.ID) ([]domain.ProgressItem, error) {
	if !userID.IsZero() {
		if _, err := s.GetUser(ctx, userID); err != nil {
			return nil, err
		}
	}

	progress, err := readAll[domain.AchievementProgress](ctx, s.store, CollectionProgress)
	if err != nil {
		return nil, err
	}
	achievements, err := s.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}
	byID := indexAchievements(achievements)

	items := make([]domain.ProgressItem, 0, len(progress))
	for _, p := range progress {
		if !userID.IsZero() && p.UserID != userID {
			continue
		}
		a, ok := byID[p.AchievementID]
		if !ok {
			continue
		}
		items = append(items, domain.ProgressItem{ID: a.ID, Name: a.Name, Icon: a.Icon, Date: p.Date})
	}
	return items, nil
}

// RecordProgress marks an achievement as earned and mirrors it into the user achievements
// collection. The two writes are independent: if the second fails the first is kept.
func (s *Service) RecordProgress(ctx context.Context, userID, achievementID domain.ID, date string) (domain.AchievementProgress, error) {
	if userID.IsZero() || achievementID.IsZero() {
		return domain.AchievementProgress{}, fmt.Errorf("%w: userId and achievementId are required", domain.ErrInvalidInput)
	}
	if _, err := s.GetUser(ctx, userID); err != nil {
		return domain.AchievementProgress{}, err
	}
	achievements, err := s.ListAchievements(ctx)
	if err != nil {
		return domain.AchievementProgress{}, err
	}
	if _, ok := indexAchievements(achievements)[achievementID]; !ok {
		return domain.AchievementProgress{}, domain.ErrAchievementNotFound
	}

	if strings.TrimSpace(date) == "" {
		date = s.timestamp()
	}
	record := domain.AchievementProgress{UserID: userID, AchievementID: achievementID, Date: date}

	err = mutateAll(ctx, s.store, CollectionProgress, func(items []domain.AchievementProgress) ([]domain.AchievementProgress, error) {
		for _, p := range items {
			if p.UserID == userID && p.AchievementID == achievementID {
				return nil, fmt.Errorf("progress %w", domain.ErrConflict)
			}
		}
		return append(items, record), nil
	})
	if err != nil {
		return domain.AchievementProgress{}, err
	}

	err = mutateAll(ctx, s.store, CollectionUserAchievements, func(items []domain.UserAchievement) ([]domain.UserAchievement, error) {
		for _, ua := range items {
			if ua.UserID == userID && ua.AchievementID == achievementID {
				return items, nil
			}
		}
		return append(items, domain.UserAchievement(record)), nil
	})
	if err != nil {
		return domain.AchievementProgress{}, err
	}

	s.publish(ctx, "progress.recorded", record)
	return record, nil
}

// ListUserAchievements returns a user's achievements with name, description and points filled in.
func (s *Service) ListUserAchievements(ctx context.Context, userID domain.ID) ([]domain.UserAchievementDetail, error) {
	if userID.IsZero() {
		return nil, fmt.Errorf("%w: userId is required", domain.ErrInvalidInput)
	}
	earned, err := readAll[domain.UserAchievement](ctx, s.store, CollectionUserAchievements)
	if err != nil {
		return nil, err
	}
	achievements, err := s.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}
	byID := indexAchievements(achievements)

	items := make([]domain.UserAchievementDetail, 0)
	for _, ua := range earned {
		if ua.UserID != userID {
			continue
		}
		detail := domain.UserAchievementDetail{
			UserID:        ua.UserID,
			AchievementID: ua.AchievementID,
			Date:          ua.Date,
			Name:          unknownAchievementName,
		}
		if a, ok := byID[ua.AchievementID]; ok {
			detail.Name = a.Name
			detail.Description = a.Description
			detail.Points = a.Points
		}
		items = append(items, detail)
	}
	return items, nil
}

// RecordUserAchievement appends directly to the user achievements collection.
func (s *Service) RecordUserAchievement(ctx context.Context, userID, achievementID domain.ID, date string) (domain.UserAchievement, error) {
	if userID.IsZero() || achievementID.IsZero() || strings.TrimSpace(date) == "" {
		return domain.UserAchievement{}, fmt.Errorf("%w: userId, achievementId and date are required", domain.ErrInvalidInput)
	}
	record := domain.UserAchievement{UserID: userID, AchievementID: achievementID, Date: date}

	err := mutateAll(ctx, s.store, CollectionUserAchievements, func(items []domain.UserAchievement) ([]domain.UserAchievement, error) {
		for _, ua := range items {
			if ua.UserID == userID && ua.AchievementID == achievementID {
				return nil, fmt.Errorf("progress %w", domain.ErrConflict)
			}
		}
		return append(items, record), nil
	})
	if err != nil {
		return domain.UserAchievement{}, err
	}

	s.publish(ctx, "user_achievement.recorded", record)
	return record, nil
}
