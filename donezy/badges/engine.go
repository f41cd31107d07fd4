// Package badges evaluates the tiered achievement ladders against a
// user's activity counters and issues one-time tier rewards.
package badges

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/TheOfficialRaven/Donezy-sub000/donezy/events"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/models"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/storage"
)

// Granter issues idempotent one-time rewards.
type Granter interface {
	Grant(ctx context.Context, subjectKey string, xp, essence int64) (bool, error)
}

type Engine struct {
	store   storage.RecordStore
	granter Granter
	userID  string
	now     func() time.Time
}

func NewEngine(store storage.RecordStore, granter Granter, userID string) *Engine {
	return &Engine{
		store:   store,
		granter: granter,
		userID:  userID,
		now:     time.Now,
	}
}

// SetNow overrides the clock, for tests.
func (e *Engine) SetNow(now func() time.Time) { e.now = now }

// Evaluate derives the status of every pipeline from the current
// counters alone. Pure; no storage access. Counters that can move
// backwards (the streak) may evaluate below a tier the user already
// earned; Statuses applies the recorded floor on top.
func (e *Engine) Evaluate(prog *models.UserProgression) []events.BadgeStatus {
	statuses := make([]events.BadgeStatus, 0, len(Pipelines))
	for _, p := range Pipelines {
		statuses = append(statuses, p.status(prog.Counter(p.CounterKey), 0))
	}
	return statuses
}

// Statuses is the user-facing view: the live evaluation floored at the
// persisted badge map, so an achieved tier never reads as un-achieved
// after a counter (the streak) resets.
func (e *Engine) Statuses(ctx context.Context, prog *models.UserProgression) ([]events.BadgeStatus, error) {
	badgeMap, err := storage.LoadBadges(ctx, e.store, e.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load badge map: %w", err)
	}
	return flooredStatuses(prog, badgeMap), nil
}

func flooredStatuses(prog *models.UserProgression, badgeMap models.BadgeMap) []events.BadgeStatus {
	statuses := make([]events.BadgeStatus, 0, len(Pipelines))
	for _, p := range Pipelines {
		statuses = append(statuses, p.status(prog.Counter(p.CounterKey), badgeMap.AchievedTier(p.BadgeID)))
	}
	return statuses
}

// status walks the tiers in order: the highest tier whose goal the
// counter reached, or that sits under the recorded floor, is achieved;
// the first tier that is neither is current.
func (p *Pipeline) status(counter, floor int) events.BadgeStatus {
	st := events.BadgeStatus{BadgeID: p.BadgeID}
	for idx, tier := range p.Tiers {
		if counter >= tier.Goal || idx < floor {
			st.AchievedTier = idx + 1
			continue
		}
		st.CurrentTierGoal = tier.Goal
		st.NextTierReward = tier.EssenceReward
		st.ProgressFraction = float64(counter) / float64(tier.Goal)
		if st.ProgressFraction > 1 {
			st.ProgressFraction = 1
		}
		return st
	}
	// Ladder exhausted.
	st.CurrentTierGoal = p.Tiers[len(p.Tiers)-1].Goal
	st.ProgressFraction = 1
	return st
}

// GrantNewlyAchieved compares the evaluation against the persisted badge
// map and routes every newly crossed tier through the reward issuer.
// Re-evaluating the same counters is a no-op: the grant ledger guards
// each (badge, tier) pair.
func (e *Engine) GrantNewlyAchieved(ctx context.Context, prog *models.UserProgression) ([]events.BadgeStatus, error) {
	badgeMap, err := storage.LoadBadges(ctx, e.store, e.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load badge map: %w", err)
	}

	statuses := e.Evaluate(prog)
	now := e.now()
	changed := false

	for _, st := range statuses {
		recorded := badgeMap.AchievedTier(st.BadgeID)
		if st.AchievedTier <= recorded {
			continue
		}
		pipeline := PipelineByID(st.BadgeID)
		for tier := recorded + 1; tier <= st.AchievedTier; tier++ {
			reward := pipeline.Tiers[tier-1].EssenceReward
			granted, err := e.granter.Grant(ctx, models.GrantKeyBadge(st.BadgeID, tier), 0, reward)
			if err != nil {
				return statuses, fmt.Errorf("failed to grant badge tier %s/%d: %w", st.BadgeID, tier, err)
			}
			if granted {
				slog.Info("Badge tier achieved",
					slog.String("type", "act"),
					slog.String("user_id", e.userID),
					slog.String("badge_id", st.BadgeID),
					slog.Int("tier", tier))
			}
		}
		badgeMap.Record(st.BadgeID, st.AchievedTier, now)
		changed = true
	}

	if changed {
		if err := storage.SaveBadges(ctx, e.store, e.userID, badgeMap); err != nil {
			return statuses, fmt.Errorf("failed to persist badge map: %w", err)
		}
	}
	return flooredStatuses(prog, badgeMap), nil
}
