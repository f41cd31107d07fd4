// Package rewards is the shared idempotent reward path. Every one-time
// reward in the engine (quest completions, badge tiers, level-ups) is
// credited here, guarded by the durable grant ledger.
package rewards

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/TheOfficialRaven/Donezy-sub000/donezy/events"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/models"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/progression"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/storage"
)

const DefaultLevelUpMultiplier = 5

type Issuer struct {
	store  storage.RecordStore
	ledger *progression.Ledger
	sink   *events.Sink

	userID            string
	levelUpMultiplier int64
	now               func() time.Time
}

func NewIssuer(store storage.RecordStore, ledger *progression.Ledger, sink *events.Sink, userID string, levelUpMultiplier int64) *Issuer {
	if levelUpMultiplier <= 0 {
		levelUpMultiplier = DefaultLevelUpMultiplier
	}
	return &Issuer{
		store:             store,
		ledger:            ledger,
		sink:              sink,
		userID:            userID,
		levelUpMultiplier: levelUpMultiplier,
		now:               time.Now,
	}
}

// SetNow overrides the clock, for tests.
func (i *Issuer) SetNow(now func() time.Time) { i.now = now }

// Grant credits a one-time reward under subjectKey. It returns false
// when the key was already granted; that is a suppressed duplicate, not
// an error. The balance update is written before the grant marker, so a
// partial failure can never leave an orphaned marker that would suppress
// a legitimate reward later.
func (i *Issuer) Grant(ctx context.Context, subjectKey string, xp, essence int64) (bool, error) {
	grants, err := storage.LoadGrants(ctx, i.store, i.userID)
	if err != nil {
		return false, fmt.Errorf("failed to load grant ledger: %w", err)
	}
	if grants.Has(subjectKey) {
		slog.Debug("Duplicate grant suppressed",
			slog.String("type", "act"),
			slog.String("user_id", i.userID),
			slog.String("subject", subjectKey))
		return false, nil
	}

	now := i.now()
	prog, err := storage.LoadProgression(ctx, i.store, i.userID, now)
	if err != nil {
		return false, fmt.Errorf("failed to load progression: %w", err)
	}

	oldLevel := i.ledger.LevelForXP(prog.TotalXP)
	if xp > 0 {
		prog.TotalXP += xp
	}
	if essence > 0 {
		prog.Essence += essence
	}
	newLevel := i.ledger.LevelForXP(prog.TotalXP)
	prog.Level = newLevel
	prog.UpdatedAt = now

	if err := storage.SaveProgression(ctx, i.store, prog); err != nil {
		return false, fmt.Errorf("failed to persist reward: %w", err)
	}

	grants.Add(subjectKey, now)
	if err := storage.SaveGrants(ctx, i.store, i.userID, grants); err != nil {
		// Balance is applied but the marker is missing; report it so the
		// caller can surface the degraded state.
		return true, fmt.Errorf("reward applied but grant marker not recorded: %w", err)
	}

	slog.Info("Reward granted",
		slog.String("type", "act"),
		slog.String("user_id", i.userID),
		slog.String("subject", subjectKey),
		slog.Int64("xp", xp),
		slog.Int64("essence", essence),
		slog.Int("level", newLevel))
	i.sink.EmitRewardGranted(xp, essence, subjectKey)

	if newLevel > oldLevel {
		i.sink.EmitLevelUp(oldLevel, newLevel)
		if err := i.grantLevelUps(ctx, oldLevel, newLevel); err != nil {
			return true, err
		}
	}
	return true, nil
}

// grantLevelUps pays the essence bonus for every level crossed in one
// XP application. Each level has its own grant key, so recomputing the
// level from the same stored state never pays twice.
func (i *Issuer) grantLevelUps(ctx context.Context, oldLevel, newLevel int) error {
	for level := oldLevel + 1; level <= newLevel; level++ {
		bonus := int64(level) * i.levelUpMultiplier
		if _, err := i.Grant(ctx, models.GrantKeyLevelUp(level), 0, bonus); err != nil {
			return fmt.Errorf("failed to grant level-up bonus for level %d: %w", level, err)
		}
	}
	return nil
}
