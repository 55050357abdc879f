package app

import (
	"context"
	"log/slog"
	"time"

	"ecoclick-api/internal/domain"
	"github.com/google/uuid"
)

// AnswerStore abstracts where submitted game sessions live (record store, process memory).
type AnswerStore interface {
	Append(ctx context.Context, answer domain.GameAnswer) (domain.GameAnswer, error)
	List(ctx context.Context, filter domain.AnswerFilter) ([]domain.GameAnswer, error)
}

// QuizCatalog serves quiz content, possibly from a cache in front of the Record Store.
type QuizCatalog interface {
	Quizzes(ctx context.Context) ([]domain.Quiz, error)
	Invalidate(ctx context.Context)
}

// EventPublisher announces domain events to other systems.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// Deps are the collaborators of Service. Store is required; the rest have defaults.
type Deps struct {
	Store   RecordStore
	Answers AnswerStore
	Quizzes QuizCatalog
	Events  EventPublisher
	Logger  *slog.Logger
	Clock   func() time.Time
	NewID   func() string
}

// Service contains the EcoClick use cases.
type Service struct {
	store   RecordStore
	answers AnswerStore
	quizzes QuizCatalog
	events  EventPublisher
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

func NewService(deps Deps) *Service {
	s := &Service{
		store:   deps.Store,
		answers: deps.Answers,
		quizzes: deps.Quizzes,
		events:  deps.Events,
		logger:  deps.Logger,
		now:     deps.Clock,
		newID:   deps.NewID,
	}
	if s.answers == nil {
		s.answers = NewRecordAnswerStore(deps.Store)
	}
	if s.quizzes == nil {
		s.quizzes = uncachedCatalog{loader: NewQuizLoader(deps.Store)}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// publish sends an event; failures are logged and never reach the caller.
func (s *Service) publish(ctx context.Context, eventType string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, eventType, payload); err != nil {
		s.logger.Warn("publish event failed", "event", eventType, "error", err)
	}
}

// isoMillis matches the millisecond ISO-8601 timestamps already present in the data files.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

func (s *Service) timestamp() string {
	return s.now().UTC().Format(isoMillis)
}

// maxID returns the largest id produced by idOf, or 0.
func maxID[T any](items []T, idOf func(T) domain.ID) int64 {
	var highest int64
	for _, item := range items {
		if id := int64(idOf(item)); id > highest {
			highest = id
		}
	}
	return highest
}
