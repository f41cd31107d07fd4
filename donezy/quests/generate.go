package quests

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/TheOfficialRaven/Donezy-sub000/donezy/models"
)

// Batch size bounds per generation period.
const (
	DefaultMinPerPeriod = 5
	DefaultMaxPerPeriod = 8
)

// Daily activity targets used by the shortfall analysis.
const (
	dailyTaskTarget   = 5
	dailyTaskFloor    = 3
	dailyNoteTarget   = 2
	dailyEventTarget  = 2
	listTotalTarget   = 5
	noteTotalTarget   = 10
	streakCeiling     = 30
	weeklyTaskTarget  = 20
	weeklyNoteTarget  = 8
	weeklyEventTarget = 5
	weeklyQuestTarget = 10
)

// periodType extracts the quest type from a period key.
func periodType(period string) string {
	if period == models.PeriodUnique {
		return models.QuestTypeUnique
	}
	if idx := strings.IndexByte(period, ':'); idx > 0 {
		return period[:idx]
	}
	return period
}

func (e *Engine) newQuest(title, description, questType, category, trackingKey string, goal int, xp, essence int64, now time.Time) *models.Quest {
	policy := e.policies[questType]
	return &models.Quest{
		ID:            uuid.NewString(),
		Title:         title,
		Description:   description,
		Type:          questType,
		Category:      category,
		TrackingKey:   trackingKey,
		Goal:          goal,
		Status:        policy.initialStatus(),
		RewardXP:      xp,
		RewardEssence: essence,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// synthesize builds the candidate quest list for one period by
// analyzing the user's progression and live collection counts: a
// category below its target emits a quest sized to the shortfall.
func (e *Engine) synthesize(ctx context.Context, period string, prog *models.UserProgression, src Source, now time.Time) ([]*models.Quest, error) {
	switch periodType(period) {
	case models.QuestTypeDaily:
		return e.synthesizeDaily(ctx, prog, src, now)
	case models.QuestTypeWeekly:
		return e.synthesizeWeekly(now), nil
	case models.QuestTypeUnique:
		return e.synthesizeUnique(prog, now), nil
	}
	return nil, fmt.Errorf("unknown generation period: %s", period)
}

func (e *Engine) synthesizeDaily(ctx context.Context, prog *models.UserProgression, src Source, now time.Time) ([]*models.Quest, error) {
	tasksToday, err := src.CompletedToday(ctx, models.ActivityTasksCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to read today's task count: %w", err)
	}
	taskGoal := dailyTaskTarget - tasksToday
	if taskGoal < dailyTaskFloor {
		taskGoal = dailyTaskFloor
	}

	quests := []*models.Quest{
		e.newQuest("Daily Focus",
			fmt.Sprintf("Complete %d tasks today", taskGoal),
			models.QuestTypeDaily, models.QuestCategoryTasks,
			models.ActivityTasksCompleted, taskGoal, 30, 5, now),
		e.newQuest("Thought Collector",
			fmt.Sprintf("Write %d notes today", dailyNoteTarget),
			models.QuestTypeDaily, models.QuestCategoryNotes,
			models.ActivityNotesCreated, dailyNoteTarget, 20, 5, now),
		e.newQuest("Planner",
			fmt.Sprintf("Schedule %d events today", dailyEventTarget),
			models.QuestTypeDaily, models.QuestCategoryCalendar,
			models.ActivityEventsCreated, dailyEventTarget, 20, 5, now),
		e.newQuest("Quest Runner",
			"Complete 3 quests today",
			models.QuestTypeDaily, models.QuestCategorySystem,
			models.ActivityQuestsCompleted, 3, 25, 5, now),
	}

	// Streak quests pull their progress from the streak counter; the
	// goal is always one day past the current streak.
	if prog.StreakDays < streakCeiling {
		quests = append(quests, e.newQuest("Keep It Going",
			fmt.Sprintf("Reach a %d-day streak", prog.StreakDays+1),
			models.QuestTypeDaily, models.QuestCategoryStreak,
			models.ActivityStreakDays, prog.StreakDays+1, 15, 5, now))
	}

	// List quests are measured as current totals, so they only appear
	// while the user is below the target.
	listTotal, err := src.CurrentTotal(ctx, models.ActivityListsCreated)
	if err != nil {
		return nil, fmt.Errorf("failed to read list count: %w", err)
	}
	if listTotal < listTotalTarget {
		q := e.newQuest("List Organizer",
			fmt.Sprintf("Have %d active lists", listTotalTarget),
			models.QuestTypeDaily, models.QuestCategoryLists,
			models.ActivityListsCreated, listTotalTarget, 25, 5, now)
		q.SetProgress(listTotal, now)
		quests = append(quests, q)
	}

	noteTotal, err := src.CurrentTotal(ctx, models.ActivityNotesCreated)
	if err != nil {
		return nil, fmt.Errorf("failed to read note count: %w", err)
	}
	if noteTotal < noteTotalTarget {
		q := e.newQuest("Notebook Builder",
			fmt.Sprintf("Grow your notebook to %d notes", noteTotalTarget),
			models.QuestTypeDaily, models.QuestCategoryNotes,
			models.ActivityNotesCreated, noteTotalTarget, 25, 5, now)
		q.SetProgress(noteTotal, now)
		quests = append(quests, q)
	}

	return quests, nil
}

func (e *Engine) synthesizeWeekly(now time.Time) []*models.Quest {
	return []*models.Quest{
		e.newQuest("Weekly Grind",
			fmt.Sprintf("Complete %d tasks this week", weeklyTaskTarget),
			models.QuestTypeWeekly, models.QuestCategoryTasks,
			models.ActivityTasksCompleted, weeklyTaskTarget, 100, 20, now),
		e.newQuest("Chronicler",
			fmt.Sprintf("Write %d notes this week", weeklyNoteTarget),
			models.QuestTypeWeekly, models.QuestCategoryNotes,
			models.ActivityNotesCreated, weeklyNoteTarget, 80, 15, now),
		e.newQuest("Week Planner",
			fmt.Sprintf("Schedule %d events this week", weeklyEventTarget),
			models.QuestTypeWeekly, models.QuestCategoryCalendar,
			models.ActivityEventsCreated, weeklyEventTarget, 80, 15, now),
		e.newQuest("Dedicated",
			fmt.Sprintf("Complete %d quests this week", weeklyQuestTarget),
			models.QuestTypeWeekly, models.QuestCategorySystem,
			models.ActivityQuestsCompleted, weeklyQuestTarget, 120, 25, now),
		e.newQuest("Up All Week",
			"Keep your streak alive for 7 days",
			models.QuestTypeWeekly, models.QuestCategoryStreak,
			models.ActivityStreakDays, 7, 100, 20, now),
	}
}

// synthesizeUnique builds the persistent challenge set. Progress for
// these is recomputed from lifetime counters, so quests for milestones
// the user already passed complete on the first recompute.
func (e *Engine) synthesizeUnique(prog *models.UserProgression, now time.Time) []*models.Quest {
	quests := []*models.Quest{
		e.newQuest("Centurion",
			"Complete 100 tasks in total",
			models.QuestTypeUnique, models.QuestCategoryTasks,
			models.ActivityTasksCompleted, 100, 250, 50, now),
		e.newQuest("Archivist",
			"Write 50 notes in total",
			models.QuestTypeUnique, models.QuestCategoryNotes,
			models.ActivityNotesCreated, 50, 200, 40, now),
		e.newQuest("Scheduler Supreme",
			"Schedule 30 events in total",
			models.QuestTypeUnique, models.QuestCategoryCalendar,
			models.ActivityEventsCreated, 30, 200, 40, now),
		e.newQuest("Monthly Devotion",
			"Reach a 30-day streak",
			models.QuestTypeUnique, models.QuestCategoryStreak,
			models.ActivityStreakDays, 30, 300, 60, now),
		e.newQuest("Completionist",
			"Complete 50 quests in total",
			models.QuestTypeUnique, models.QuestCategorySystem,
			models.ActivityQuestsCompleted, 50, 300, 60, now),
	}
	return quests
}

// dedupe drops later candidates that repeat an earlier (title, type,
// goal) triple, then caps the batch.
func dedupe(quests []*models.Quest, max int) []*models.Quest {
	seen := make(map[string]bool, len(quests))
	out := quests[:0]
	for _, q := range quests {
		key := fmt.Sprintf("%s|%s|%d", q.Title, q.Type, q.Goal)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, q)
	}
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}
