package models

import (
	"fmt"
	"time"
)

// Quest is one time-boxed (or persistent) objective. Quest sets are
// stored per generation period; the next period's generation supersedes
// the previous set instead of mutating it.
type Quest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	TrackingKey string `json:"tracking_key"`

	Goal     int    `json:"goal"`
	Progress int    `json:"progress"`
	Status   string `json:"status"`

	RewardXP      int64 `json:"reward_xp"`
	RewardEssence int64 `json:"reward_essence"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Quest type constants
const (
	QuestTypeDaily  = "daily"
	QuestTypeWeekly = "weekly"
	QuestTypeUnique = "unique"
)

// Quest category constants
const (
	QuestCategoryTasks    = "tasks"
	QuestCategoryLists    = "lists"
	QuestCategoryNotes    = "notes"
	QuestCategoryCalendar = "calendar"
	QuestCategoryStreak   = "streak"
	QuestCategorySystem   = "system"
)

// Lifecycle states. Auto-active quest types use StatusActive in place of
// the Available/Accepted pair.
const (
	StatusAvailable = "available"
	StatusAccepted  = "accepted"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusExpired   = "expired"
)

// Progressable reports whether the quest can still accumulate progress.
func (q *Quest) Progressable() bool {
	return q.Status == StatusActive || q.Status == StatusAccepted
}

// Terminal reports whether the quest reached a terminal state.
func (q *Quest) Terminal() bool {
	return q.Status == StatusCompleted || q.Status == StatusExpired
}

// ApplyProgress adds amount to the quest's progress, clamped to
// [0, Goal], and reports whether the goal is now reached. It does not
// change status; the engine drives the transition.
func (q *Quest) ApplyProgress(amount int, now time.Time) bool {
	next := q.Progress + amount
	if next < 0 {
		next = 0
	}
	if next > q.Goal {
		next = q.Goal
	}
	if next != q.Progress {
		q.Progress = next
		q.UpdatedAt = now
	}
	return q.Progress >= q.Goal
}

// SetProgress overwrites progress from a live source count, clamped to
// [0, Goal], and reports whether the goal is now reached.
func (q *Quest) SetProgress(total int, now time.Time) bool {
	if total < 0 {
		total = 0
	}
	if total > q.Goal {
		total = q.Goal
	}
	if total != q.Progress {
		q.Progress = total
		q.UpdatedAt = now
	}
	return q.Progress >= q.Goal
}

// ProgressFraction returns progress as a fraction in [0,1].
func (q *Quest) ProgressFraction() float64 {
	if q.Goal <= 0 {
		return 0
	}
	f := float64(q.Progress) / float64(q.Goal)
	if f > 1 {
		f = 1
	}
	return f
}

// QuestSet is the persisted quest batch for one generation period.
type QuestSet struct {
	Period      string    `json:"period"`
	GeneratedAt time.Time `json:"generated_at"`
	Quests      []*Quest  `json:"quests"`
}

// Find returns the quest with the given id, or nil.
func (s *QuestSet) Find(id string) *Quest {
	for _, q := range s.Quests {
		if q.ID == id {
			return q
		}
	}
	return nil
}

// Period key helpers. Daily periods key by calendar date, weekly by ISO
// week; unique quests live under a single persistent key.
const PeriodUnique = "unique"

func DailyPeriod(t time.Time) string {
	return "daily:" + t.Format("2006-01-02")
}

func WeeklyPeriod(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("weekly:%04d-W%02d", year, week)
}
