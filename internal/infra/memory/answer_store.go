package memory

import (
	"context"
	"sync"

	"ecoclick-api/internal/domain"
)

// AnswerStore keeps submitted game answers in process memory only.
type AnswerStore struct {
	mu      sync.RWMutex
	answers []domain.GameAnswer
}

func NewAnswerStore() *AnswerStore {
	return &AnswerStore{}
}

func (s *AnswerStore) Append(_ context.Context, answer domain.GameAnswer) (domain.GameAnswer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = append(s.answers, answer)
	return answer, nil
}

func (s *AnswerStore) List(_ context.Context, filter domain.AnswerFilter) ([]domain.GameAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.GameAnswer, 0, len(s.answers))
	for _, a := range s.answers {
		if filter.Matches(a) {
			out = append(out, a)
		}
	}
	return out, nil
}
