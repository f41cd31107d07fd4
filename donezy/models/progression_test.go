package models

import (
	"testing"
	"time"
)

func TestMarkActive(t *testing.T) {
	base := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		lastActive     string
		streak         int
		activeDays     int
		now            time.Time
		wantStreak     int
		wantActiveDays int
	}{
		{
			name:           "first ever activity",
			lastActive:     "",
			streak:         0,
			activeDays:     0,
			now:            base,
			wantStreak:     1,
			wantActiveDays: 1,
		},
		{
			name:           "same day is a no-op",
			lastActive:     "2025-06-10",
			streak:         4,
			activeDays:     9,
			now:            base,
			wantStreak:     4,
			wantActiveDays: 9,
		},
		{
			name:           "consecutive day extends the streak",
			lastActive:     "2025-06-09",
			streak:         4,
			activeDays:     9,
			now:            base,
			wantStreak:     5,
			wantActiveDays: 10,
		},
		{
			name:           "two day gap resets the streak",
			lastActive:     "2025-06-08",
			streak:         4,
			activeDays:     9,
			now:            base,
			wantStreak:     1,
			wantActiveDays: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewUserProgression("u1", base)
			p.LastActiveDate = tt.lastActive
			p.StreakDays = tt.streak
			p.TotalActiveDays = tt.activeDays

			p.MarkActive(tt.now)

			if p.StreakDays != tt.wantStreak {
				t.Errorf("StreakDays = %d, want %d", p.StreakDays, tt.wantStreak)
			}
			if p.TotalActiveDays != tt.wantActiveDays {
				t.Errorf("TotalActiveDays = %d, want %d", p.TotalActiveDays, tt.wantActiveDays)
			}
			if tt.wantActiveDays != tt.activeDays && p.LastActiveDate != tt.now.Format("2006-01-02") {
				t.Errorf("LastActiveDate = %q, want %q", p.LastActiveDate, tt.now.Format("2006-01-02"))
			}
		})
	}
}

func TestAddCounter(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		kind    string
		amount  int
		wantOK  bool
		wantVal int
	}{
		{"tasks", ActivityTasksCompleted, 3, true, 3},
		{"lists", ActivityListsCreated, 1, true, 1},
		{"notes", ActivityNotesCreated, 2, true, 2},
		{"events", ActivityEventsCreated, 5, true, 5},
		{"quests", ActivityQuestsCompleted, 1, true, 1},
		{"zero amount ignored", ActivityTasksCompleted, 0, false, 0},
		{"negative amount ignored", ActivityTasksCompleted, -4, false, 0},
		{"unknown kind ignored", "time_travelled", 1, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewUserProgression("u1", now)
			ok := p.AddCounter(tt.kind, tt.amount)
			if ok != tt.wantOK {
				t.Fatalf("AddCounter(%q, %d) = %v, want %v", tt.kind, tt.amount, ok, tt.wantOK)
			}
			if got := p.Counter(tt.kind); got != tt.wantVal {
				t.Errorf("Counter(%q) = %d, want %d", tt.kind, got, tt.wantVal)
			}
		})
	}
}

func TestCounterStreakAlias(t *testing.T) {
	p := NewUserProgression("u1", time.Now())
	p.StreakDays = 12
	if got := p.Counter(ActivityStreakDays); got != 12 {
		t.Errorf("Counter(streak_days) = %d, want 12", got)
	}
}
