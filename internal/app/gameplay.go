package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ecoclick-api/internal/domain"
)

// NewGameAnswer is the input of SubmitAnswers.
type NewGameAnswer struct {
	GameID  string
	UserID  domain.ID
	Answers []json.RawMessage
	Score   float64
	TimeSec float64
}

// SubmitAnswers stores a game session through the configured AnswerStore.
func (s *Service) SubmitAnswers(ctx context.Context, in NewGameAnswer) (domain.GameAnswer, error) {
	if in.UserID.IsZero() || in.Answers == nil {
		return domain.GameAnswer{}, fmt.Errorf("%w: userId and answers (array) are required", domain.ErrInvalidInput)
	}
	gameID := strings.TrimSpace(in.GameID)
	if gameID == "" {
		return domain.GameAnswer{}, fmt.Errorf("%w: gameId is required", domain.ErrInvalidInput)
	}

	answer, err := s.answers.Append(ctx, domain.GameAnswer{
		ID:        s.newID(),
		GameID:    gameID,
		UserID:    in.UserID,
		Answers:   in.Answers,
		Score:     in.Score,
		TimeSec:   in.TimeSec,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return domain.GameAnswer{}, err
	}

	s.publish(ctx, "game.answers.submitted", map[string]any{
		"id":     answer.ID,
		"gameId": answer.GameID,
		"userId": answer.UserID,
		"score":  answer.Score,
	})
	return answer, nil
}

func (s *Service) ListAnswers(ctx context.Context, filter domain.AnswerFilter) ([]domain.GameAnswer, error) {
	return s.answers.List(ctx, filter)
}

// ListFeedback returns eco-feedback items, optionally restricted to one topic.
func (s *Service) ListFeedback(ctx context.Context, topic string) ([]domain.EcoFeedback, error) {
	items, err := readAll[domain.EcoFeedback](ctx, s.store, CollectionEcoFeedback)
	if err != nil {
		return nil, err
	}
	if topic == "" {
		return items, nil
	}
	filtered := make([]domain.EcoFeedback, 0)
	for _, f := range items {
		if f.Topic == topic {
			filtered = append(filtered, f)
		}
	}
	return filtered, nil
}

// RecordAnswerStore persists game answers in the answers collection of a RecordStore.
type RecordAnswerStore struct {
	store RecordStore
}

func NewRecordAnswerStore(store RecordStore) *RecordAnswerStore {
	return &RecordAnswerStore{store: store}
}

func (r *RecordAnswerStore) Append(ctx context.Context, answer domain.GameAnswer) (domain.GameAnswer, error) {
	err := mutateAll(ctx, r.store, CollectionAnswers, func(items []domain.GameAnswer) ([]domain.GameAnswer, error) {
		return append(items, answer), nil
	})
	if err != nil {
		return domain.GameAnswer{}, err
	}
	return answer, nil
}

func (r *RecordAnswerStore) List(ctx context.Context, filter domain.AnswerFilter) ([]domain.GameAnswer, error) {
	items, err := readAll[domain.GameAnswer](ctx, r.store, CollectionAnswers)
	if err != nil {
		return nil, err
	}
	out := make([]domain.GameAnswer, 0, len(items))
	for _, a := range items {
		if filter.Matches(a) {
			out = append(out, a)
		}
	}
	return out, nil
}
