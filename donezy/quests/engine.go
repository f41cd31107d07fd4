// Package quests drives the quest lifecycle: generation of dated
// objective batches, push and pull progress tracking, the state machine
// and completion rewards.
package quests

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/TheOfficialRaven/Donezy-sub000/donezy/models"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/storage"
)

// Granter issues idempotent one-time rewards.
type Granter interface {
	Grant(ctx context.Context, subjectKey string, xp, essence int64) (bool, error)
}

// Source answers live queries about the surrounding application's
// collections. Quest categories measured as "current total" (lists,
// notes) pull from here instead of an incrementing counter.
type Source interface {
	// CurrentTotal returns the present size of the collection behind a
	// tracking key, e.g. the number of active lists.
	CurrentTotal(ctx context.Context, trackingKey string) (int, error)
	// CompletedToday returns how many actions of the given kind
	// happened on the current calendar day.
	CompletedToday(ctx context.Context, kind string) (int, error)
}

type Engine struct {
	store    storage.RecordStore
	granter  Granter
	userID   string
	policies map[string]TypePolicy
	maxBatch int
	minBatch int
	now      func() time.Time
}

func NewEngine(store storage.RecordStore, granter Granter, userID string) *Engine {
	return &Engine{
		store:    store,
		granter:  granter,
		userID:   userID,
		policies: DefaultPolicies,
		maxBatch: DefaultMaxPerPeriod,
		minBatch: DefaultMinPerPeriod,
		now:      time.Now,
	}
}

// SetNow overrides the clock, for tests.
func (e *Engine) SetNow(now func() time.Time) { e.now = now }

// SetBatchBounds overrides the generation batch size bounds.
func (e *Engine) SetBatchBounds(min, max int) {
	if min > 0 {
		e.minBatch = min
	}
	if max > 0 {
		e.maxBatch = max
	}
}

// CurrentPeriods returns the period keys active at now.
func (e *Engine) CurrentPeriods(now time.Time) []string {
	return []string{
		models.DailyPeriod(now),
		models.WeeklyPeriod(now),
		models.PeriodUnique,
	}
}

// Generate builds the quest batch for a period. It is idempotent
// against the authoritative store: when the period record already
// exists the stored set is returned unchanged, so concurrent tabs and
// restarts never produce a second batch.
func (e *Engine) Generate(ctx context.Context, period string, prog *models.UserProgression, src Source) (*models.QuestSet, bool, error) {
	existing, err := storage.LoadQuestSet(ctx, e.store, e.userID, period)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check existing quests: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	now := e.now()
	candidates, err := e.synthesize(ctx, period, prog, src, now)
	if err != nil {
		return nil, false, err
	}
	batch := dedupe(candidates, e.maxBatch)
	if len(batch) < e.minBatch {
		slog.Debug("Generated quest batch below target size",
			slog.String("type", "quest"),
			slog.String("user_id", e.userID),
			slog.String("period", period),
			slog.Int("count", len(batch)))
	}

	set := &models.QuestSet{
		Period:      period,
		GeneratedAt: now,
		Quests:      batch,
	}
	if err := storage.SaveQuestSet(ctx, e.store, e.userID, set); err != nil {
		return nil, false, fmt.Errorf("failed to persist quest batch: %w", err)
	}

	slog.Info("Generated quest batch",
		slog.String("type", "quest"),
		slog.String("user_id", e.userID),
		slog.String("period", period),
		slog.Int("count", len(batch)))
	return set, true, nil
}

// UpdateProgress is the push path, called right after a user action.
// Every progressable quest tracking the activity kind advances by
// amount, clamped to its goal; quests that hit the goal complete and
// are rewarded. The completed quests are returned.
func (e *Engine) UpdateProgress(ctx context.Context, kind string, amount int) ([]*models.Quest, error) {
	if amount <= 0 {
		return nil, nil
	}
	now := e.now()
	var completed []*models.Quest

	for _, period := range e.CurrentPeriods(now) {
		set, err := storage.LoadQuestSet(ctx, e.store, e.userID, period)
		if err != nil {
			return completed, err
		}
		if set == nil {
			continue
		}

		changed := false
		for _, q := range set.Quests {
			if !q.Progressable() || q.TrackingKey != kind {
				continue
			}
			atGoal := q.ApplyProgress(amount, now)
			changed = true
			if atGoal {
				if err := e.complete(ctx, q, now); err != nil {
					return completed, err
				}
				completed = append(completed, q)
			}
		}
		if changed {
			if err := storage.SaveQuestSet(ctx, e.store, e.userID, set); err != nil {
				return completed, err
			}
		}
	}
	return completed, nil
}

// RecomputeFromSource is the pull path: it overwrites progress for
// quests measured against a current total (lists, notes, streak,
// lifetime challenge counters) from the live source. Safe to call
// repeatedly; it has no effect beyond progress correction and at-goal
// completion.
func (e *Engine) RecomputeFromSource(ctx context.Context, prog *models.UserProgression, src Source) ([]*models.Quest, error) {
	now := e.now()
	var completed []*models.Quest

	for _, period := range e.CurrentPeriods(now) {
		set, err := storage.LoadQuestSet(ctx, e.store, e.userID, period)
		if err != nil {
			return completed, err
		}
		if set == nil {
			continue
		}

		changed := false
		for _, q := range set.Quests {
			if !q.Progressable() {
				continue
			}
			total, ok, err := e.liveTotal(ctx, q, prog, src)
			if err != nil {
				return completed, err
			}
			if !ok || total == q.Progress {
				continue
			}
			atGoal := q.SetProgress(total, now)
			changed = true
			if atGoal {
				if err := e.complete(ctx, q, now); err != nil {
					return completed, err
				}
				completed = append(completed, q)
			}
		}
		if changed {
			if err := storage.SaveQuestSet(ctx, e.store, e.userID, set); err != nil {
				return completed, err
			}
		}
	}
	return completed, nil
}

// liveTotal resolves the authoritative progress value for pull-tracked
// quests. Push-only quests (daily/weekly deltas over tasks, calendar,
// system) report ok=false and are left alone.
func (e *Engine) liveTotal(ctx context.Context, q *models.Quest, prog *models.UserProgression, src Source) (int, bool, error) {
	switch q.Category {
	case models.QuestCategoryLists, models.QuestCategoryNotes:
		total, err := src.CurrentTotal(ctx, q.TrackingKey)
		if err != nil {
			return 0, false, fmt.Errorf("failed to query live total for %s: %w", q.TrackingKey, err)
		}
		return total, true, nil
	case models.QuestCategoryStreak:
		return prog.StreakDays, true, nil
	}
	if q.Type == models.QuestTypeUnique {
		// Challenges run against lifetime counters.
		return prog.Counter(q.TrackingKey), true, nil
	}
	return 0, false, nil
}

// Accept moves an accept-required quest from Available to Accepted. Any
// other starting state is an invalid transition.
func (e *Engine) Accept(ctx context.Context, questID string) (*models.Quest, error) {
	set, q, err := e.find(ctx, questID)
	if err != nil {
		return nil, err
	}
	if q.Status != models.StatusAvailable {
		return nil, &InvalidTransitionError{QuestID: questID, From: q.Status, To: models.StatusAccepted}
	}
	now := e.now()
	q.Status = models.StatusAccepted
	q.AcceptedAt = &now
	q.UpdatedAt = now
	if err := storage.SaveQuestSet(ctx, e.store, e.userID, set); err != nil {
		return nil, err
	}
	return q, nil
}

// Complete finishes a quest explicitly. Legal only when the status
// permits completion and progress has reached the goal. Completing an
// already completed quest is a no-op (changed=false): the grant ledger
// suppresses the reward even if state were ever to disagree.
func (e *Engine) Complete(ctx context.Context, questID string) (*models.Quest, bool, error) {
	set, q, err := e.find(ctx, questID)
	if err != nil {
		return nil, false, err
	}
	if q.Status == models.StatusCompleted {
		// Defense in depth: the grant key already exists, so this can
		// never double-pay.
		if _, err := e.granter.Grant(ctx, models.GrantKeyQuest(q.ID), q.RewardXP, q.RewardEssence); err != nil {
			return nil, false, err
		}
		return q, false, nil
	}
	if !q.Progressable() {
		return nil, false, &InvalidTransitionError{QuestID: questID, From: q.Status, To: models.StatusCompleted}
	}
	if q.Progress < q.Goal {
		return nil, false, fmt.Errorf("quest %s at %d/%d: %w", questID, q.Progress, q.Goal, ErrGoalNotReached)
	}
	if err := e.complete(ctx, q, e.now()); err != nil {
		return nil, false, err
	}
	return q, true, storage.SaveQuestSet(ctx, e.store, e.userID, set)
}

func (e *Engine) complete(ctx context.Context, q *models.Quest, now time.Time) error {
	q.Status = models.StatusCompleted
	q.CompletedAt = &now
	q.UpdatedAt = now

	granted, err := e.granter.Grant(ctx, models.GrantKeyQuest(q.ID), q.RewardXP, q.RewardEssence)
	if err != nil {
		return fmt.Errorf("failed to grant quest reward for %s: %w", q.ID, err)
	}
	if granted {
		slog.Info("Quest completed",
			slog.String("type", "quest"),
			slog.String("user_id", e.userID),
			slog.String("quest_id", q.ID),
			slog.String("title", q.Title))
	}
	return nil
}

// ExpirePeriod marks every non-terminal quest of a superseded period as
// expired. Completed quests keep their state.
func (e *Engine) ExpirePeriod(ctx context.Context, period string) error {
	set, err := storage.LoadQuestSet(ctx, e.store, e.userID, period)
	if err != nil || set == nil {
		return err
	}
	now := e.now()
	changed := false
	for _, q := range set.Quests {
		if q.Terminal() {
			continue
		}
		q.Status = models.StatusExpired
		q.UpdatedAt = now
		changed = true
	}
	if !changed {
		return nil
	}
	return storage.SaveQuestSet(ctx, e.store, e.userID, set)
}

// All returns every quest in the currently active periods.
func (e *Engine) All(ctx context.Context) ([]*models.Quest, error) {
	var out []*models.Quest
	for _, period := range e.CurrentPeriods(e.now()) {
		set, err := storage.LoadQuestSet(ctx, e.store, e.userID, period)
		if err != nil {
			return nil, err
		}
		if set != nil {
			out = append(out, set.Quests...)
		}
	}
	return out, nil
}

func (e *Engine) find(ctx context.Context, questID string) (*models.QuestSet, *models.Quest, error) {
	for _, period := range e.CurrentPeriods(e.now()) {
		set, err := storage.LoadQuestSet(ctx, e.store, e.userID, period)
		if err != nil {
			return nil, nil, err
		}
		if set == nil {
			continue
		}
		if q := set.Find(questID); q != nil {
			return set, q, nil
		}
	}
	return nil, nil, &NotFoundError{QuestID: questID}
}
