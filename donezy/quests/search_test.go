package quests

import (
	"context"
	"testing"

	"github.com/TheOfficialRaven/Donezy-sub000/donezy/models"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/storage"
)

func TestSearch(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(storage.NewMemoryStore(), newRecordingGranter())
	src := &stubSource{totals: map[string]int{}, today: map[string]int{}}
	prog := models.NewUserProgression("u1", testNow)

	if _, _, err := engine.Generate(ctx, models.DailyPeriod(testNow), prog, src); err != nil {
		t.Fatal(err)
	}
	if _, _, err := engine.Generate(ctx, models.PeriodUnique, prog, nil); err != nil {
		t.Fatal(err)
	}

	all, err := engine.All(ctx)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("empty query returns everything", func(t *testing.T) {
		results, err := engine.Search(ctx, "   ")
		if err != nil {
			t.Fatal(err)
		}
		if len(results) != len(all) {
			t.Errorf("got %d results, want %d", len(results), len(all))
		}
	})

	t.Run("exact word", func(t *testing.T) {
		results, err := engine.Search(ctx, "focus")
		if err != nil {
			t.Fatal(err)
		}
		if len(results) == 0 || results[0].Title != "Daily Focus" {
			t.Errorf("Search(focus) = %v", titles(results))
		}
	})

	t.Run("fuzzy subsequence", func(t *testing.T) {
		results, err := engine.Search(ctx, "centrion")
		if err != nil {
			t.Fatal(err)
		}
		if !containsTitle(results, "Centurion") {
			t.Errorf("Search(centrion) = %v", titles(results))
		}
	})

	t.Run("no match", func(t *testing.T) {
		results, err := engine.Search(ctx, "zzzqx")
		if err != nil {
			t.Fatal(err)
		}
		if len(results) != 0 {
			t.Errorf("Search(zzzqx) = %v", titles(results))
		}
	})
}

func titles(quests []*models.Quest) []string {
	out := make([]string, len(quests))
	for i, q := range quests {
		out[i] = q.Title
	}
	return out
}

func containsTitle(quests []*models.Quest, title string) bool {
	for _, q := range quests {
		if q.Title == title {
			return true
		}
	}
	return false
}
