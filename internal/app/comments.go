package app

import (
	"context"
	"fmt"
	"strings"

	"ecoclick-api/internal/domain"
)

func (s *Service) ListComments(ctx context.Context) ([]domain.Comment, error) {
	return readAll[domain.Comment](ctx, s.store, CollectionComments)
}

// AddComment stores a comment. The author name is taken from the users collection,
// never from the caller.
func (s *Service) AddComment(ctx context.Context, userID domain.ID, text string) (domain.Comment, error) {
	if userID.IsZero() || strings.TrimSpace(text) == "" {
		return domain.Comment{}, fmt.Errorf("%w: userId and comment are required", domain.ErrInvalidInput)
	}
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return domain.Comment{}, err
	}

	comment := domain.Comment{
		ID:        s.newID(),
		UserID:    user.ID,
		UserName:  user.Name,
		Comment:   text,
		CreatedAt: s.now().UTC(),
	}
	err = mutateAll(ctx, s.store, CollectionComments, func(items []domain.Comment) ([]domain.Comment, error) {
		return append(items, comment), nil
	})
	if err != nil {
		return domain.Comment{}, err
	}

	s.publish(ctx, "comment.created", comment)
	return comment, nil
}
