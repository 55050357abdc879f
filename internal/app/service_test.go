package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"ecoclick-api/internal/app"
	"ecoclick-api/internal/domain"
	"ecoclick-api/internal/infra/memory"
)

func TestCreateUserContinuesFromExistingIDs(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRecordStore()
	if err := store.Save(ctx, app.CollectionUsers, []byte(`[{"id":7,"name":"Old"}]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	events := &recordingPublisher{}
	service := app.NewService(app.Deps{Store: store, Events: events})

	user, err := service.CreateUser(ctx, "  Ana ")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.ID != 8 || user.Name != "Ana" {
		t.Fatalf("unexpected user %+v", user)
	}
	if got := events.types(); len(got) != 1 || got[0] != "user.created" {
		t.Fatalf("expected user.created event, got %v", got)
	}

	if _, err := service.CreateUser(ctx, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestConcurrentCreatesGetDistinctIDs(t *testing.T) {
	ctx := context.Background()
	service := app.NewService(app.Deps{Store: memory.NewRecordStore()})

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := service.CreateAchievement(ctx, app.NewAchievement{Name: "a", Description: "d", Points: 1}); err != nil {
				t.Errorf("create achievement: %v", err)
			}
		}()
	}
	wg.Wait()

	items, err := service.ListAchievements(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 25 {
		t.Fatalf("expected 25 achievements, got %d", len(items))
	}
	seen := map[domain.ID]bool{}
	for _, a := range items {
		if seen[a.ID] {
			t.Fatalf("duplicate id %d", a.ID)
		}
		seen[a.ID] = true
	}
}

func TestRecordProgressMirrorsOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRecordStore()
	service := newService(store)
	user := mustCreateUser(t, service, "Ana")
	ach, err := service.CreateAchievement(ctx, app.NewAchievement{Name: "Eco", Description: "d", Points: 5})
	if err != nil {
		t.Fatalf("create achievement: %v", err)
	}

	if _, err := service.RecordUserAchievement(ctx, user.ID, ach.ID, "2026-01-01"); err != nil {
		t.Fatalf("record user achievement: %v", err)
	}
	record, err := service.RecordProgress(ctx, user.ID, ach.ID, "")
	if err != nil {
		t.Fatalf("record progress: %v", err)
	}
	if record.Date != "2026-10-17T09:30:00.000Z" {
		t.Fatalf("unexpected date %q", record.Date)
	}

	items, err := service.ListUserAchievements(ctx, user.ID)
	if err != nil {
		t.Fatalf("list user achievements: %v", err)
	}
	if len(items) != 1 || items[0].Date != "2026-01-01" {
		t.Fatalf("existing user achievement should be kept as is: %+v", items)
	}

	_, err = service.RecordProgress(ctx, user.ID, ach.ID, "")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := service.RecordProgress(ctx, user.ID, 99, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListProgressSkipsMissingAchievements(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRecordStore()
	service := newService(store)
	mustCreateUser(t, service, "Ana")
	progress := `[{"userId":1,"achievementId":4,"date":"d1"},{"userId":2,"achievementId":1,"date":"d2"}]`
	if err := store.Save(ctx, app.CollectionProgress, []byte(progress)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := service.CreateAchievement(ctx, app.NewAchievement{Name: "Eco", Description: "d"}); err != nil {
		t.Fatalf("create achievement: %v", err)
	}

	mine, err := service.ListProgress(ctx, 1)
	if err != nil {
		t.Fatalf("list progress: %v", err)
	}
	if len(mine) != 0 {
		t.Fatalf("progress pointing at a missing achievement must be skipped: %+v", mine)
	}
	all, err := service.ListProgress(ctx, 0)
	if err != nil {
		t.Fatalf("list all progress: %v", err)
	}
	if len(all) != 1 || all[0].Date != "d2" {
		t.Fatalf("unexpected progress %+v", all)
	}
}

func TestAddCommentResolvesUserName(t *testing.T) {
	ctx := context.Background()
	service := newService(memory.NewRecordStore())
	user := mustCreateUser(t, service, "Ana")

	comment, err := service.AddComment(ctx, user.ID, "hola")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if comment.UserName != "Ana" || comment.ID != "id-1" {
		t.Fatalf("unexpected comment %+v", comment)
	}
	if _, err := service.AddComment(ctx, 42, "hola"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
	if _, err := service.AddComment(ctx, user.ID, "  "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestMemoryAnswerStoreIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRecordStore()
	service := app.NewService(app.Deps{Store: store, Answers: memory.NewAnswerStore()})

	_, err := service.SubmitAnswers(ctx, app.NewGameAnswer{
		GameID:  "g1",
		UserID:  1,
		Answers: []json.RawMessage{json.RawMessage(`"a"`)},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	raw, _ := store.Load(ctx, app.CollectionAnswers)
	if raw != nil {
		t.Fatalf("answers should stay in memory, record store has %q", raw)
	}
	report, err := service.ResponseStats(ctx, 1)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if report.Summary.TotalAnswers != 1 {
		t.Fatalf("expected 1 answer counted, got %d", report.Summary.TotalAnswers)
	}
}

func TestRecordAnswerStorePersists(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRecordStore()
	service := newService(store)

	if _, err := service.SubmitAnswers(ctx, app.NewGameAnswer{GameID: "g1", UserID: 1, Answers: []json.RawMessage{}}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	fresh := app.NewService(app.Deps{Store: store})
	items, err := fresh.ListAnswers(ctx, domain.AnswerFilter{GameID: "g1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || !items[0].CreatedAt.Equal(fixedNow()) {
		t.Fatalf("unexpected answers %+v", items)
	}

	if _, err := service.SubmitAnswers(ctx, app.NewGameAnswer{GameID: "g1", UserID: 1}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("nil answers must be rejected, got %v", err)
	}
}

func TestCreateQuizInvalidatesCatalog(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRecordStore()
	catalog := memory.NewQuizCatalog(app.NewQuizLoader(store), time.Hour)
	service := app.NewService(app.Deps{Store: store, Quizzes: catalog})

	before, err := service.ListQuizzes(ctx, "")
	if err != nil || len(before) != 0 {
		t.Fatalf("expected empty catalog, got %v err=%v", before, err)
	}
	if _, err := service.CreateQuiz(ctx, domain.Quiz{ID: "w1", Title: "Agua", Category: " water "}); err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	after, err := service.ListQuizzes(ctx, "water")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(after) != 1 || after[0].Questions == nil {
		t.Fatalf("new quiz should be visible through the cache: %+v", after)
	}
	if _, err := service.GetQuiz(ctx, "nope"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	service := app.NewService(app.Deps{Store: memory.NewRecordStore(), Events: &recordingPublisher{err: errors.New("broker down")}})

	if _, err := service.RecordCategoryResult(ctx, 1, "water", 100); err != nil {
		t.Fatalf("record result: %v", err)
	}
	report, err := service.ResponseStats(ctx, 1)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if report.Summary.TotalProgressPoints != 100 {
		t.Fatalf("expected 100 progress points, got %v", report.Summary.TotalProgressPoints)
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func fixedNow() time.Time {
	return time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
}

func newService(store app.RecordStore) *app.Service {
	var mu sync.Mutex
	seq := 0
	return app.NewService(app.Deps{
		Store: store,
		Clock: fixedNow,
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			seq++
			return "id-" + strconv.Itoa(seq)
		},
	})
}

func mustCreateUser(t *testing.T, service *app.Service, name string) domain.User {
	t.Helper()
	user, err := service.CreateUser(context.Background(), name)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}
