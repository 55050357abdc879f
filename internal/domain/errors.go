package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a request is missing fields or carries malformed values.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique combination is already recorded.
	ErrConflict = errors.New("already recorded")

	// ErrUserNotFound is returned when a user id does not resolve.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	// ErrAchievementNotFound is returned when an achievement id does not resolve.
	ErrAchievementNotFound = fmt.Errorf("achievement %w", ErrNotFound)
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = fmt.Errorf("quiz %w", ErrNotFound)
)
