package badges

import "github.com/TheOfficialRaven/Donezy-sub000/donezy/models"

// Tier is one rung of a badge ladder.
type Tier struct {
	Goal          int
	Description   string
	EssenceReward int64
}

// Pipeline is a code-defined ladder of tiers for one achievement
// category. CounterKey names the UserProgression counter that drives it.
type Pipeline struct {
	BadgeID    string
	Name       string
	CounterKey string
	Tiers      []Tier
}

// Pipelines is the static badge catalog. Tiers are ordered by goal;
// counters only increase, so an achieved tier can never be lost.
var Pipelines = []Pipeline{
	{
		BadgeID:    "task-master",
		Name:       "Task Master",
		CounterKey: models.ActivityTasksCompleted,
		Tiers: []Tier{
			{Goal: 10, Description: "Complete 10 tasks", EssenceReward: 10},
			{Goal: 50, Description: "Complete 50 tasks", EssenceReward: 25},
			{Goal: 100, Description: "Complete 100 tasks", EssenceReward: 50},
			{Goal: 250, Description: "Complete 250 tasks", EssenceReward: 100},
			{Goal: 500, Description: "Complete 500 tasks", EssenceReward: 250},
		},
	},
	{
		BadgeID:    "list-builder",
		Name:       "List Builder",
		CounterKey: models.ActivityListsCreated,
		Tiers: []Tier{
			{Goal: 3, Description: "Create 3 lists", EssenceReward: 10},
			{Goal: 10, Description: "Create 10 lists", EssenceReward: 25},
			{Goal: 25, Description: "Create 25 lists", EssenceReward: 50},
			{Goal: 50, Description: "Create 50 lists", EssenceReward: 100},
		},
	},
	{
		BadgeID:    "note-taker",
		Name:       "Note Taker",
		CounterKey: models.ActivityNotesCreated,
		Tiers: []Tier{
			{Goal: 5, Description: "Write 5 notes", EssenceReward: 10},
			{Goal: 25, Description: "Write 25 notes", EssenceReward: 25},
			{Goal: 75, Description: "Write 75 notes", EssenceReward: 50},
			{Goal: 150, Description: "Write 150 notes", EssenceReward: 100},
		},
	},
	{
		BadgeID:    "event-planner",
		Name:       "Event Planner",
		CounterKey: models.ActivityEventsCreated,
		Tiers: []Tier{
			{Goal: 3, Description: "Schedule 3 events", EssenceReward: 10},
			{Goal: 15, Description: "Schedule 15 events", EssenceReward: 25},
			{Goal: 50, Description: "Schedule 50 events", EssenceReward: 50},
		},
	},
	{
		BadgeID:    "quest-hunter",
		Name:       "Quest Hunter",
		CounterKey: models.ActivityQuestsCompleted,
		Tiers: []Tier{
			{Goal: 5, Description: "Complete 5 quests", EssenceReward: 15},
			{Goal: 20, Description: "Complete 20 quests", EssenceReward: 40},
			{Goal: 60, Description: "Complete 60 quests", EssenceReward: 80},
			{Goal: 120, Description: "Complete 120 quests", EssenceReward: 160},
		},
	},
	{
		BadgeID:    "veteran",
		Name:       "Veteran",
		CounterKey: models.ActivityDaysActive,
		Tiers: []Tier{
			{Goal: 7, Description: "Be active on 7 days", EssenceReward: 10},
			{Goal: 30, Description: "Be active on 30 days", EssenceReward: 30},
			{Goal: 90, Description: "Be active on 90 days", EssenceReward: 80},
			{Goal: 365, Description: "Be active on 365 days", EssenceReward: 250},
		},
	},
	{
		BadgeID:    "streak-keeper",
		Name:       "Streak Keeper",
		CounterKey: models.ActivityStreakDays,
		Tiers: []Tier{
			{Goal: 3, Description: "Keep a 3-day streak", EssenceReward: 10},
			{Goal: 7, Description: "Keep a 7-day streak", EssenceReward: 30},
			{Goal: 30, Description: "Keep a 30-day streak", EssenceReward: 100},
			{Goal: 100, Description: "Keep a 100-day streak", EssenceReward: 300},
		},
	},
}

// PipelineByID returns the pipeline for a badge id, or nil.
func PipelineByID(badgeID string) *Pipeline {
	for idx := range Pipelines {
		if Pipelines[idx].BadgeID == badgeID {
			return &Pipelines[idx]
		}
	}
	return nil
}
