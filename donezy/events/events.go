// Package events carries the engine's outbound notifications. The
// presentation layer subscribes by filling in callbacks; the engine does
// not care how they are rendered.
package events

import "github.com/TheOfficialRaven/Donezy-sub000/donezy/models"

// BadgeStatus is the derived state of one badge pipeline for a user.
type BadgeStatus struct {
	BadgeID          string
	AchievedTier     int
	CurrentTierGoal  int
	ProgressFraction float64
	NextTierReward   int64
}

// Sink holds the outbound callbacks. Any field may be nil; use the Emit
// helpers so callers never nil-check.
type Sink struct {
	OnRewardGranted    func(xp, essence int64, reason string)
	OnLevelUp          func(oldLevel, newLevel int)
	OnQuestListChanged func(quests []*models.Quest)
	OnBadgeListChanged func(badges []BadgeStatus)
}

func (s *Sink) EmitRewardGranted(xp, essence int64, reason string) {
	if s != nil && s.OnRewardGranted != nil {
		s.OnRewardGranted(xp, essence, reason)
	}
}

func (s *Sink) EmitLevelUp(oldLevel, newLevel int) {
	if s != nil && s.OnLevelUp != nil {
		s.OnLevelUp(oldLevel, newLevel)
	}
}

func (s *Sink) EmitQuestListChanged(quests []*models.Quest) {
	if s != nil && s.OnQuestListChanged != nil {
		s.OnQuestListChanged(quests)
	}
}

func (s *Sink) EmitBadgeListChanged(badges []BadgeStatus) {
	if s != nil && s.OnBadgeListChanged != nil {
		s.OnBadgeListChanged(badges)
	}
}
