package models

import (
	"testing"
	"time"
)

func TestApplyProgress(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		start        int
		goal         int
		amount       int
		wantProgress int
		wantAtGoal   bool
	}{
		{"partial advance", 0, 5, 2, 2, false},
		{"exact goal", 3, 5, 2, 5, true},
		{"overshoot clamps to goal", 3, 5, 10, 5, true},
		{"negative clamps to zero", 2, 5, -10, 0, false},
		{"already at goal stays", 5, 5, 1, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &Quest{Goal: tt.goal, Progress: tt.start, Status: StatusActive}
			atGoal := q.ApplyProgress(tt.amount, now)
			if q.Progress != tt.wantProgress {
				t.Errorf("Progress = %d, want %d", q.Progress, tt.wantProgress)
			}
			if atGoal != tt.wantAtGoal {
				t.Errorf("atGoal = %v, want %v", atGoal, tt.wantAtGoal)
			}
		})
	}
}

func TestSetProgress(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		total        int
		goal         int
		wantProgress int
		wantAtGoal   bool
	}{
		{"below goal", 3, 10, 3, false},
		{"at goal", 10, 10, 10, true},
		{"above goal clamps", 25, 10, 10, true},
		{"negative clamps to zero", -3, 10, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &Quest{Goal: tt.goal, Progress: 7, Status: StatusActive}
			atGoal := q.SetProgress(tt.total, now)
			if q.Progress != tt.wantProgress {
				t.Errorf("Progress = %d, want %d", q.Progress, tt.wantProgress)
			}
			if atGoal != tt.wantAtGoal {
				t.Errorf("atGoal = %v, want %v", atGoal, tt.wantAtGoal)
			}
		})
	}
}

func TestQuestStates(t *testing.T) {
	tests := []struct {
		status           string
		wantProgressable bool
		wantTerminal     bool
	}{
		{StatusAvailable, false, false},
		{StatusAccepted, true, false},
		{StatusActive, true, false},
		{StatusCompleted, false, true},
		{StatusExpired, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			q := &Quest{Status: tt.status}
			if got := q.Progressable(); got != tt.wantProgressable {
				t.Errorf("Progressable() = %v, want %v", got, tt.wantProgressable)
			}
			if got := q.Terminal(); got != tt.wantTerminal {
				t.Errorf("Terminal() = %v, want %v", got, tt.wantTerminal)
			}
		})
	}
}

func TestPeriodKeys(t *testing.T) {
	// Dec 30 2024 is a Monday that already belongs to ISO week 1 of 2025.
	rollover := time.Date(2024, 12, 30, 8, 0, 0, 0, time.UTC)
	if got := DailyPeriod(rollover); got != "daily:2024-12-30" {
		t.Errorf("DailyPeriod = %q", got)
	}
	if got := WeeklyPeriod(rollover); got != "weekly:2025-W01" {
		t.Errorf("WeeklyPeriod = %q", got)
	}

	midYear := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	if got := WeeklyPeriod(midYear); got != "weekly:2025-W24" {
		t.Errorf("WeeklyPeriod = %q", got)
	}
}

func TestQuestSetFind(t *testing.T) {
	set := &QuestSet{Quests: []*Quest{{ID: "a"}, {ID: "b"}}}
	if q := set.Find("b"); q == nil || q.ID != "b" {
		t.Errorf("Find(b) = %v", q)
	}
	if q := set.Find("missing"); q != nil {
		t.Errorf("Find(missing) = %v, want nil", q)
	}
}
