package models

import "time"

// UserProgression is the per-user progression record. It is stored as a
// single JSON document so every mutation is a full read-modify-write of
// the record, never a field-level patch.
type UserProgression struct {
	UserID  string `json:"user_id"`
	TotalXP int64  `json:"total_xp"`
	// Level is a cache of the curve derivation over TotalXP. It is
	// recomputed on every XP change and must always agree with the
	// ledger; it is never independent truth.
	Level   int   `json:"level"`
	Essence int64 `json:"essence"`

	StreakDays      int    `json:"streak_days"`
	TotalActiveDays int    `json:"total_active_days"`
	LastActiveDate  string `json:"last_active_date"` // YYYY-MM-DD

	TasksCompleted  int `json:"tasks_completed"`
	ListsCreated    int `json:"lists_created"`
	NotesCreated    int `json:"notes_created"`
	EventsCreated   int `json:"events_created"`
	QuestsCompleted int `json:"quests_completed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Activity kinds double as quest tracking keys.
const (
	ActivityTasksCompleted  = "tasks_completed"
	ActivityListsCreated    = "lists_created"
	ActivityNotesCreated    = "notes_created"
	ActivityEventsCreated   = "events_created"
	ActivityQuestsCompleted = "quests_completed"
	ActivityStreakDays      = "streak_days"
	ActivityDaysActive      = "days_active"
)

func NewUserProgression(userID string, now time.Time) *UserProgression {
	return &UserProgression{
		UserID:    userID,
		Level:     1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Counter returns the activity counter mapped to the given kind, or 0
// for unknown kinds.
func (p *UserProgression) Counter(kind string) int {
	switch kind {
	case ActivityTasksCompleted:
		return p.TasksCompleted
	case ActivityListsCreated:
		return p.ListsCreated
	case ActivityNotesCreated:
		return p.NotesCreated
	case ActivityEventsCreated:
		return p.EventsCreated
	case ActivityQuestsCompleted:
		return p.QuestsCompleted
	case ActivityStreakDays:
		return p.StreakDays
	case ActivityDaysActive:
		return p.TotalActiveDays
	}
	return 0
}

// AddCounter bumps the activity counter mapped to kind. Counters are
// monotonically non-decreasing; negative amounts are ignored.
func (p *UserProgression) AddCounter(kind string, amount int) bool {
	if amount <= 0 {
		return false
	}
	switch kind {
	case ActivityTasksCompleted:
		p.TasksCompleted += amount
	case ActivityListsCreated:
		p.ListsCreated += amount
	case ActivityNotesCreated:
		p.NotesCreated += amount
	case ActivityEventsCreated:
		p.EventsCreated += amount
	case ActivityQuestsCompleted:
		p.QuestsCompleted += amount
	default:
		return false
	}
	return true
}

// MarkActive updates streak bookkeeping for an action performed at now.
// A gap of exactly one day extends the streak, anything longer resets it.
func (p *UserProgression) MarkActive(now time.Time) {
	today := now.Format("2006-01-02")
	if p.LastActiveDate == today {
		return
	}
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")
	if p.LastActiveDate == yesterday {
		p.StreakDays++
	} else {
		p.StreakDays = 1
	}
	p.LastActiveDate = today
	p.TotalActiveDays++
}
