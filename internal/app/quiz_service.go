package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"ecoclick-api/internal/domain"
)

// QuizLoader reads the quiz collection straight from the Record Store.
type QuizLoader struct {
	store RecordStore
}

func NewQuizLoader(store RecordStore) *QuizLoader {
	return &QuizLoader{store: store}
}

func (l *QuizLoader) LoadQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return readAll[domain.Quiz](ctx, l.store, CollectionQuizzes)
}

// uncachedCatalog is used when no cache is configured.
type uncachedCatalog struct {
	loader *QuizLoader
}

func (c uncachedCatalog) Quizzes(ctx context.Context) ([]domain.Quiz, error) {
	return c.loader.LoadQuizzes(ctx)
}

func (c uncachedCatalog) Invalidate(context.Context) {}

// ListQuizzes returns all quizzes, or only those whose category matches exactly.
func (s *Service) ListQuizzes(ctx context.Context, category string) ([]domain.Quiz, error) {
	quizzes, err := s.quizzes.Quizzes(ctx)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return quizzes, nil
	}
	items := make([]domain.Quiz, 0)
	for _, q := range quizzes {
		if q.Category == category {
			items = append(items, q)
		}
	}
	return items, nil
}

func (s *Service) GetQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	quizzes, err := s.quizzes.Quizzes(ctx)
	if err != nil {
		return domain.Quiz{}, err
	}
	for _, q := range quizzes {
		if q.ID == id {
			return q, nil
		}
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

// CreateQuiz stores a quiz. Missing quiz and question ids are generated.
func (s *Service) CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	quiz.ID = strings.TrimSpace(quiz.ID)
	if quiz.ID == "" {
		quiz.ID = s.newID()
	}
	quiz.Title = strings.TrimSpace(quiz.Title)
	quiz.Category = strings.TrimSpace(quiz.Category)
	if quiz.Title == "" || quiz.Category == "" {
		return domain.Quiz{}, fmt.Errorf("%w: title and category are required", domain.ErrInvalidInput)
	}
	if quiz.Questions == nil {
		quiz.Questions = []domain.Question{}
	}
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == "" {
			quiz.Questions[i].ID = "q" + strconv.Itoa(i+1)
		}
	}

	err := mutateAll(ctx, s.store, CollectionQuizzes, func(items []domain.Quiz) ([]domain.Quiz, error) {
		for _, q := range items {
			if q.ID == quiz.ID {
				return nil, fmt.Errorf("quiz %q %w", quiz.ID, domain.ErrConflict)
			}
		}
		return append(items, quiz), nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	s.quizzes.Invalidate(ctx)

	s.publish(ctx, "quiz.created", map[string]string{"id": quiz.ID, "category": quiz.Category})
	return quiz, nil
}
