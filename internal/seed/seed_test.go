package seed

import (
	"context"
	"testing"

	"ecoclick-api/internal/app"
	"ecoclick-api/internal/infra/memory"
)

func TestSeedFillsEmptyStore(t *testing.T) {
	store := memory.NewRecordStore()
	ctx := context.Background()

	seeded, err := Seed(ctx, store)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if len(seeded) != 3 {
		t.Fatalf("expected 3 seeded collections, got %v", seeded)
	}

	service := app.NewService(app.Deps{Store: store})
	quizzes, err := service.ListQuizzes(ctx, "water")
	if err != nil {
		t.Fatalf("list quizzes: %v", err)
	}
	if len(quizzes) != 1 || quizzes[0].ID != "water-1" {
		t.Fatalf("unexpected water quizzes %+v", quizzes)
	}
	feedback, err := service.ListFeedback(ctx, "energy")
	if err != nil || len(feedback) != 1 {
		t.Fatalf("expected one energy tip, got %+v err=%v", feedback, err)
	}
	achievements, err := service.ListAchievements(ctx)
	if err != nil || len(achievements) != 3 {
		t.Fatalf("expected 3 achievements, got %d err=%v", len(achievements), err)
	}
}

func TestSeedKeepsExistingContent(t *testing.T) {
	store := memory.NewRecordStore()
	ctx := context.Background()
	if err := store.Save(ctx, app.CollectionQuizzes, []byte(`[{"id":"mine","title":"Mine","category":"water","questions":[]}]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, app.CollectionAchievements, []byte("[]\n")); err != nil {
		t.Fatalf("save: %v", err)
	}

	seeded, err := Seed(ctx, store)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	for _, c := range seeded {
		if c == app.CollectionQuizzes {
			t.Fatalf("quizzes must not be reseeded")
		}
	}

	service := app.NewService(app.Deps{Store: store})
	quizzes, _ := service.ListQuizzes(ctx, "")
	if len(quizzes) != 1 || quizzes[0].ID != "mine" {
		t.Fatalf("existing quizzes overwritten: %+v", quizzes)
	}
	achievements, _ := service.ListAchievements(ctx)
	if len(achievements) == 0 {
		t.Fatalf("empty achievements should be seeded")
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	store := memory.NewRecordStore()
	ctx := context.Background()
	if _, err := Seed(ctx, store); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	seeded, err := Seed(ctx, store)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if len(seeded) != 0 {
		t.Fatalf("second seed should be a no-op, got %v", seeded)
	}
}
