package quests

import (
	"context"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/TheOfficialRaven/Donezy-sub000/donezy/models"
)

// questSearchItems implements fuzzy.Source over quest titles.
type questSearchItems []*models.Quest

func (s questSearchItems) String(i int) string {
	return strings.ToLower(s[i].Title)
}

func (s questSearchItems) Len() int {
	return len(s)
}

// Search fuzzy-matches the query against the titles of all current
// quests, best match first.
func (e *Engine) Search(ctx context.Context, query string) ([]*models.Quest, error) {
	all, err := e.All(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return all, nil
	}

	items := questSearchItems(all)
	matches := fuzzy.FindFrom(query, items)

	results := make([]*models.Quest, len(matches))
	for i, match := range matches {
		results[i] = items[match.Index]
	}
	return results, nil
}
