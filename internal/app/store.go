package app

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collection names. Each maps to one JSON document in the Record Store.
const (
	CollectionUsers            = "users"
	CollectionQuizzes          = "quizzes"
	CollectionAchievements     = "achievements"
	CollectionUserAchievements = "userAchievements"
	CollectionProgress         = "progress"
	CollectionCategoryResults  = "categoryResults"
	CollectionAnswers          = "answers"
	CollectionComments         = "comments"
	CollectionEcoFeedback      = "ecoFeedback"
)

// Collections lists every collection the service reads or writes.
var Collections = []string{
	CollectionUsers,
	CollectionQuizzes,
	CollectionAchievements,
	CollectionUserAchievements,
	CollectionProgress,
	CollectionCategoryResults,
	CollectionAnswers,
	CollectionComments,
	CollectionEcoFeedback,
}

// RecordStore persists named collections as whole JSON documents (file, memory, Redis, SQL, Mongo).
type RecordStore interface {
	// Load returns the raw document, or nil if the collection has never been written.
	Load(ctx context.Context, collection string) ([]byte, error)
	// Save replaces the document.
	Save(ctx context.Context, collection string, data []byte) error
	// Modify runs a read-modify-write cycle; cycles on the same collection never interleave.
	Modify(ctx context.Context, collection string, fn func(current []byte) ([]byte, error)) error
	// NextID returns the next value of the collection's id counter, never below floor+1.
	NextID(ctx context.Context, collection string, floor int64) (int64, error)
}

// readAll decodes a collection into a slice. Absent collections read as empty.
func readAll[T any](ctx context.Context, store RecordStore, collection string) ([]T, error) {
	raw, err := store.Load(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}
	return decodeAll[T](collection, raw)
}

// mutateAll decodes a collection, applies fn and writes the returned slice back.
func mutateAll[T any](ctx context.Context, store RecordStore, collection string, fn func([]T) ([]T, error)) error {
	var rejected error
	err := store.Modify(ctx, collection, func(current []byte) ([]byte, error) {
		items, err := decodeAll[T](collection, current)
		if err != nil {
			return nil, err
		}
		items, err = fn(items)
		if err != nil {
			rejected = err
			return nil, err
		}
		return Encode(items)
	})
	if rejected != nil {
		return rejected
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", collection, err)
	}
	return nil
}

func decodeAll[T any](collection string, raw []byte) ([]T, error) {
	items := make([]T, 0)
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	if items == nil {
		items = make([]T, 0)
	}
	return items, nil
}

// Encode serializes a collection document with 2-space indentation and a trailing newline.
func Encode(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
