// Package session wires one user's progression engine together and
// exposes the narrow inbound contract the surrounding application calls
// into. One Session per active user; dependencies are injected
// explicitly, nothing is process-global.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/TheOfficialRaven/Donezy-sub000/donezy/badges"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/events"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/models"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/progression"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/quests"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/rewards"
	"github.com/TheOfficialRaven/Donezy-sub000/donezy/storage"
)

// DependencyTimeoutError reports that a readiness dependency never came
// up within the polling bound. Initialization aborts instead of hanging.
type DependencyTimeoutError struct {
	Attempts int
	Waited   time.Duration
}

func (e *DependencyTimeoutError) Error() string {
	return fmt.Sprintf("dependency not ready after %d attempts (%s)", e.Attempts, e.Waited)
}

// Options configures a session. Zero values fall back to defaults.
type Options struct {
	UserID            string
	Curve             *progression.CurveConfig
	LevelUpMultiplier int64
	MinQuests         int
	MaxQuests         int

	ReadyAttempts     int
	ReadyInterval     time.Duration
	RecomputeInterval time.Duration
	RefreshInterval   time.Duration

	Now func() time.Time
}

const (
	defaultReadyAttempts     = 10
	defaultReadyInterval     = 500 * time.Millisecond
	defaultRecomputeInterval = 45 * time.Second
	defaultRefreshInterval   = time.Minute
)

type Session struct {
	userID string
	store  storage.RecordStore
	source quests.Source
	sink   *events.Sink

	ledger      *progression.Ledger
	issuer      *rewards.Issuer
	badgeEngine *badges.Engine
	questEngine *quests.Engine
	procs       *ProcessManager

	opts Options
	now  func() time.Time

	// mu serializes all mutating operations for this user. The runtime
	// is not the hazard; two awaited storage calls interleaving on the
	// same record is.
	mu sync.Mutex

	lastDailyPeriod  string
	lastWeeklyPeriod string
}

func New(store storage.RecordStore, source quests.Source, sink *events.Sink, opts Options) *Session {
	if opts.ReadyAttempts <= 0 {
		opts.ReadyAttempts = defaultReadyAttempts
	}
	if opts.ReadyInterval <= 0 {
		opts.ReadyInterval = defaultReadyInterval
	}
	if opts.RecomputeInterval <= 0 {
		opts.RecomputeInterval = defaultRecomputeInterval
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = defaultRefreshInterval
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	ledger := progression.NewLedger(opts.Curve)
	issuer := rewards.NewIssuer(store, ledger, sink, opts.UserID, opts.LevelUpMultiplier)
	issuer.SetNow(now)
	badgeEngine := badges.NewEngine(store, issuer, opts.UserID)
	badgeEngine.SetNow(now)
	questEngine := quests.NewEngine(store, issuer, opts.UserID)
	questEngine.SetNow(now)
	questEngine.SetBatchBounds(opts.MinQuests, opts.MaxQuests)

	return &Session{
		userID:      opts.UserID,
		store:       store,
		source:      source,
		sink:        sink,
		ledger:      ledger,
		issuer:      issuer,
		badgeEngine: badgeEngine,
		questEngine: questEngine,
		procs:       NewProcessManager(),
		opts:        opts,
		now:         now,
	}
}

// Ledger exposes the pure level curve for renderers.
func (s *Session) Ledger() *progression.Ledger { return s.ledger }

// WaitReady polls the store until it answers or the bound is exhausted.
func (s *Session) WaitReady(ctx context.Context) error {
	start := s.now()
	for attempt := 1; attempt <= s.opts.ReadyAttempts; attempt++ {
		if err := s.store.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.opts.ReadyInterval):
		}
	}
	return &DependencyTimeoutError{
		Attempts: s.opts.ReadyAttempts,
		Waited:   s.now().Sub(start),
	}
}

// Start readies the session: waits for storage, runs the initial quest
// refresh and launches the background recompute and refresh loops.
func (s *Session) Start(ctx context.Context) error {
	if err := s.WaitReady(ctx); err != nil {
		return err
	}
	if err := s.RequestQuestRefresh(ctx); err != nil {
		return fmt.Errorf("initial quest refresh failed: %w", err)
	}

	s.procs.StartTicker("quest-recompute",
		"recompute pull-tracked quest progress from live counts",
		s.opts.RecomputeInterval, func(ctx context.Context) {
			if err := s.Recompute(ctx); err != nil {
				slog.Error("Quest recompute failed",
					slog.String("type", "quest"),
					slog.String("user_id", s.userID),
					slog.Any("error", err))
			}
		})
	s.procs.StartTicker("quest-refresh",
		"generate quest batches at period rollover",
		s.opts.RefreshInterval, func(ctx context.Context) {
			if err := s.RequestQuestRefresh(ctx); err != nil {
				slog.Error("Quest refresh failed",
					slog.String("type", "quest"),
					slog.String("user_id", s.userID),
					slog.Any("error", err))
			}
		})
	return nil
}

// Close tears down the background loops.
func (s *Session) Close() error {
	return s.procs.Shutdown(5 * time.Second)
}

// ReportActivity is the push entry point called right after a user
// action: it bumps the activity counter, advances matching quests and
// re-evaluates badge tiers.
func (s *Session) ReportActivity(ctx context.Context, kind string, amount int) error {
	if amount <= 0 {
		amount = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	prog, err := storage.LoadProgression(ctx, s.store, s.userID, now)
	if err != nil {
		return err
	}
	prog.MarkActive(now)
	prog.AddCounter(kind, amount)
	prog.UpdatedAt = now
	if err := storage.SaveProgression(ctx, s.store, prog); err != nil {
		return err
	}

	slog.Debug("Activity reported",
		slog.String("type", "act"),
		slog.String("user_id", s.userID),
		slog.String("kind", kind),
		slog.Int("amount", amount))

	completed, err := s.questEngine.UpdateProgress(ctx, kind, amount)
	if err != nil {
		return err
	}
	if err := s.settleCompletions(ctx, completed); err != nil {
		return err
	}
	return s.evaluateBadges(ctx)
}

// settleCompletions credits completed quests into the quests counter
// and cascades the bump into quests that track completions themselves.
// The cascade terminates: every pass completes at least one quest and
// quests complete only once.
func (s *Session) settleCompletions(ctx context.Context, completed []*models.Quest) error {
	for len(completed) > 0 {
		count := len(completed)
		prog, err := storage.LoadProgression(ctx, s.store, s.userID, s.now())
		if err != nil {
			return err
		}
		prog.AddCounter(models.ActivityQuestsCompleted, count)
		prog.UpdatedAt = s.now()
		if err := storage.SaveProgression(ctx, s.store, prog); err != nil {
			return err
		}

		completed, err = s.questEngine.UpdateProgress(ctx, models.ActivityQuestsCompleted, count)
		if err != nil {
			return err
		}
	}
	return s.emitQuestList(ctx)
}

func (s *Session) evaluateBadges(ctx context.Context) error {
	prog, err := storage.LoadProgression(ctx, s.store, s.userID, s.now())
	if err != nil {
		return err
	}
	statuses, err := s.badgeEngine.GrantNewlyAchieved(ctx, prog)
	if err != nil {
		return err
	}
	s.sink.EmitBadgeListChanged(statuses)
	return nil
}

func (s *Session) emitQuestList(ctx context.Context) error {
	all, err := s.questEngine.All(ctx)
	if err != nil {
		return err
	}
	s.sink.EmitQuestListChanged(all)
	return nil
}

// RequestQuestRefresh generates quest batches for every current period.
// Generation is idempotent, so calling this on a timer is safe; stale
// daily and weekly sets are expired when the period rolls over.
func (s *Session) RequestQuestRefresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	daily := models.DailyPeriod(now)
	weekly := models.WeeklyPeriod(now)

	if s.lastDailyPeriod != "" && s.lastDailyPeriod != daily {
		if err := s.questEngine.ExpirePeriod(ctx, s.lastDailyPeriod); err != nil {
			return err
		}
	}
	if s.lastWeeklyPeriod != "" && s.lastWeeklyPeriod != weekly {
		if err := s.questEngine.ExpirePeriod(ctx, s.lastWeeklyPeriod); err != nil {
			return err
		}
	}

	prog, err := storage.LoadProgression(ctx, s.store, s.userID, now)
	if err != nil {
		return err
	}

	created := false
	for _, period := range s.questEngine.CurrentPeriods(now) {
		_, fresh, err := s.questEngine.Generate(ctx, period, prog, s.source)
		if err != nil {
			return err
		}
		created = created || fresh
	}
	s.lastDailyPeriod = daily
	s.lastWeeklyPeriod = weekly

	if created {
		return s.emitQuestList(ctx)
	}
	return nil
}

// RequestBadgeEvaluation re-evaluates badge tiers, granting anything
// newly crossed, and returns the full status list.
func (s *Session) RequestBadgeEvaluation(ctx context.Context) ([]events.BadgeStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prog, err := storage.LoadProgression(ctx, s.store, s.userID, s.now())
	if err != nil {
		return nil, err
	}
	statuses, err := s.badgeEngine.GrantNewlyAchieved(ctx, prog)
	if err != nil {
		return statuses, err
	}
	s.sink.EmitBadgeListChanged(statuses)
	return statuses, nil
}

// AcceptQuest accepts an accept-required quest.
func (s *Session) AcceptQuest(ctx context.Context, questID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.questEngine.Accept(ctx, questID); err != nil {
		return err
	}
	return s.emitQuestList(ctx)
}

// CompleteQuest completes a quest explicitly.
func (s *Session) CompleteQuest(ctx context.Context, questID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, changed, err := s.questEngine.Complete(ctx, questID)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if err := s.settleCompletions(ctx, []*models.Quest{q}); err != nil {
		return err
	}
	return s.evaluateBadges(ctx)
}

// Recompute is the pull path, run by the background ticker: progress
// for current-total quest categories is recalculated from the live
// source.
func (s *Session) Recompute(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prog, err := storage.LoadProgression(ctx, s.store, s.userID, s.now())
	if err != nil {
		return err
	}
	completed, err := s.questEngine.RecomputeFromSource(ctx, prog, s.source)
	if err != nil {
		return err
	}
	if len(completed) == 0 {
		return nil
	}
	if err := s.settleCompletions(ctx, completed); err != nil {
		return err
	}
	return s.evaluateBadges(ctx)
}

// Quests returns every quest in the active periods.
func (s *Session) Quests(ctx context.Context) ([]*models.Quest, error) {
	return s.questEngine.All(ctx)
}

// SearchQuests fuzzy-matches quest titles.
func (s *Session) SearchQuests(ctx context.Context, query string) ([]*models.Quest, error) {
	return s.questEngine.Search(ctx, query)
}

// Badges reports badge status without granting. Achieved tiers are
// floored at the persisted badge map, so a streak reset never reads as
// a lost badge.
func (s *Session) Badges(ctx context.Context) ([]events.BadgeStatus, error) {
	prog, err := storage.LoadProgression(ctx, s.store, s.userID, s.now())
	if err != nil {
		return nil, err
	}
	return s.badgeEngine.Statuses(ctx, prog)
}

// Progression returns the current progression record.
func (s *Session) Progression(ctx context.Context) (*models.UserProgression, error) {
	return storage.LoadProgression(ctx, s.store, s.userID, s.now())
}
