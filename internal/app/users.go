package app

import (
	"context"
	"fmt"
	"strings"

	"ecoclick-api/internal/domain"
)

// ListUsers returns every registered user.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return readAll[domain.User](ctx, s.store, CollectionUsers)
}

// GetUser resolves a user by id.
func (s *Service) GetUser(ctx context.Context, id domain.ID) (domain.User, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

// CreateUser registers a user under the next sequential id.
func (s *Service) CreateUser(ctx context.Context, name string) (domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.User{}, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}

	id, err := nextID(ctx, s.store, CollectionUsers, func(u domain.User) domain.ID { return u.ID })
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{ID: id, Name: name}
	err = mutateAll(ctx, s.store, CollectionUsers, func(users []domain.User) ([]domain.User, error) {
		return append(users, user), nil
	})
	if err != nil {
		return domain.User{}, err
	}

	s.publish(ctx, "user.created", user)
	return user, nil
}

// nextID draws an id from the store counter, floored at the highest id already in the collection.
func nextID[T any](ctx context.Context, store RecordStore, collection string, idOf func(T) domain.ID) (domain.ID, error) {
	items, err := readAll[T](ctx, store, collection)
	if err != nil {
		return 0, err
	}
	id, err := store.NextID(ctx, collection, maxID(items, idOf))
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", collection, err)
	}
	return domain.ID(id), nil
}
