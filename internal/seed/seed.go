// Package seed loads the bundled sample content into an empty Record Store.
package seed

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"ecoclick-api/internal/app"
)

//go:embed data/*.json
var files embed.FS

var sources = map[string]string{
	app.CollectionQuizzes:      "data/quizzes.json",
	app.CollectionEcoFeedback:  "data/ecoFeedback.json",
	app.CollectionAchievements: "data/achievements.json",
}

// order keeps seeding deterministic.
var order = []string{app.CollectionAchievements, app.CollectionQuizzes, app.CollectionEcoFeedback}

// Seed writes the sample documents into collections that are absent or empty and
// returns the names of the collections it filled. Existing content is never touched.
func Seed(ctx context.Context, store app.RecordStore) ([]string, error) {
	var seeded []string
	for _, collection := range order {
		filled, err := seedCollection(ctx, store, collection)
		if err != nil {
			return seeded, err
		}
		if filled {
			seeded = append(seeded, collection)
		}
	}
	return seeded, nil
}

func seedCollection(ctx context.Context, store app.RecordStore, collection string) (bool, error) {
	raw, err := files.ReadFile(sources[collection])
	if err != nil {
		return false, fmt.Errorf("read seed %s: %w", collection, err)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return false, fmt.Errorf("decode seed %s: %w", collection, err)
	}
	doc, err := app.Encode(items)
	if err != nil {
		return false, err
	}

	filled := false
	err = store.Modify(ctx, collection, func(current []byte) ([]byte, error) {
		if len(current) > 0 {
			var existing []json.RawMessage
			if err := json.Unmarshal(current, &existing); err != nil {
				return nil, fmt.Errorf("decode %s: %w", collection, err)
			}
			if len(existing) > 0 {
				return current, nil
			}
		}
		filled = true
		return doc, nil
	})
	if err != nil {
		return false, fmt.Errorf("seed %s: %w", collection, err)
	}
	return filled, nil
}
