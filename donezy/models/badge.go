package models

import "time"

// BadgeUnlock is the persisted per-badge state inside the user's badge
// map. TierProgress holds the highest achieved tier, 0 when none.
type BadgeUnlock struct {
	Achieved     bool       `json:"achieved"`
	TierProgress int        `json:"tier_progress"`
	UnlockedAt   *time.Time `json:"unlocked_at,omitempty"`
}

// BadgeMap is the per-user badge record keyed by badge id.
type BadgeMap map[string]BadgeUnlock

// AchievedTier returns the recorded tier for a badge id, 0 when absent.
func (m BadgeMap) AchievedTier(badgeID string) int {
	return m[badgeID].TierProgress
}

// Record stores an achieved tier, keeping the earliest unlock timestamp.
// Tiers are monotonic; a lower tier never overwrites a higher one.
func (m BadgeMap) Record(badgeID string, tier int, now time.Time) {
	cur := m[badgeID]
	if tier <= cur.TierProgress {
		return
	}
	unlockedAt := cur.UnlockedAt
	if unlockedAt == nil {
		t := now
		unlockedAt = &t
	}
	m[badgeID] = BadgeUnlock{
		Achieved:     true,
		TierProgress: tier,
		UnlockedAt:   unlockedAt,
	}
}
