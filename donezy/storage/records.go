package storage

import (
	"context"
	"time"

	"github.com/TheOfficialRaven/Donezy-sub000/donezy/models"
)

// Typed accessors over the record paths. Every engine mutation loads the
// full record, modifies it and writes it back through these helpers so
// the read-modify-write discipline lives in one place.

func LoadProgression(ctx context.Context, s RecordStore, userID string, now time.Time) (*models.UserProgression, error) {
	prog := new(models.UserProgression)
	ok, err := ReadJSON(ctx, s, ProgressionPath(userID), prog)
	if err != nil {
		return nil, err
	}
	if !ok {
		return models.NewUserProgression(userID, now), nil
	}
	return prog, nil
}

func SaveProgression(ctx context.Context, s RecordStore, prog *models.UserProgression) error {
	return WriteJSON(ctx, s, ProgressionPath(prog.UserID), prog)
}

func LoadGrants(ctx context.Context, s RecordStore, userID string) (models.GrantSet, error) {
	grants := make(models.GrantSet)
	if _, err := ReadJSON(ctx, s, GrantsPath(userID), &grants); err != nil {
		return nil, err
	}
	return grants, nil
}

func SaveGrants(ctx context.Context, s RecordStore, userID string, grants models.GrantSet) error {
	return WriteJSON(ctx, s, GrantsPath(userID), grants)
}

func LoadBadges(ctx context.Context, s RecordStore, userID string) (models.BadgeMap, error) {
	badges := make(models.BadgeMap)
	if _, err := ReadJSON(ctx, s, BadgesPath(userID), &badges); err != nil {
		return nil, err
	}
	return badges, nil
}

func SaveBadges(ctx context.Context, s RecordStore, userID string, badges models.BadgeMap) error {
	return WriteJSON(ctx, s, BadgesPath(userID), badges)
}

// LoadQuestSet returns the quest batch for a period, or nil when the
// period has not been generated.
func LoadQuestSet(ctx context.Context, s RecordStore, userID, period string) (*models.QuestSet, error) {
	set := new(models.QuestSet)
	ok, err := ReadJSON(ctx, s, QuestsPath(userID, period), set)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return set, nil
}

func SaveQuestSet(ctx context.Context, s RecordStore, userID string, set *models.QuestSet) error {
	return WriteJSON(ctx, s, QuestsPath(userID, set.Period), set)
}
