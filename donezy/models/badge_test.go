package models

import (
	"testing"
	"time"
)

func TestBadgeMapRecord(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	later := now.Add(48 * time.Hour)

	m := make(BadgeMap)

	m.Record("task-master", 2, now)
	if got := m.AchievedTier("task-master"); got != 2 {
		t.Fatalf("AchievedTier = %d, want 2", got)
	}
	first := m["task-master"].UnlockedAt
	if first == nil || !first.Equal(now) {
		t.Fatalf("UnlockedAt = %v, want %v", first, now)
	}

	// A lower or equal tier never downgrades the record.
	m.Record("task-master", 1, later)
	m.Record("task-master", 2, later)
	if got := m.AchievedTier("task-master"); got != 2 {
		t.Errorf("AchievedTier after downgrade attempts = %d, want 2", got)
	}

	// A higher tier advances but keeps the original unlock time.
	m.Record("task-master", 3, later)
	if got := m.AchievedTier("task-master"); got != 3 {
		t.Errorf("AchievedTier = %d, want 3", got)
	}
	if got := m["task-master"].UnlockedAt; got == nil || !got.Equal(now) {
		t.Errorf("UnlockedAt = %v, want original %v", got, now)
	}
}

func TestGrantSet(t *testing.T) {
	now := time.Now()
	g := make(GrantSet)

	key := GrantKeyQuest("q-123")
	if g.Has(key) {
		t.Fatal("fresh set should not have key")
	}
	g.Add(key, now)
	if !g.Has(key) {
		t.Fatal("added key missing")
	}
}

func TestGrantKeys(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"quest", GrantKeyQuest("abc"), "quest:abc"},
		{"badge", GrantKeyBadge("task-master", 3), "badge:task-master:3"},
		{"levelup", GrantKeyLevelUp(7), "levelup:7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
