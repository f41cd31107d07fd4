package quests

import "github.com/TheOfficialRaven/Donezy-sub000/donezy/models"

// TypePolicy selects the lifecycle variant for a quest type. The policy
// is uniform per type, never per instance.
type TypePolicy int

const (
	// PolicyAutoActive collapses Available/Accepted into a single
	// Active state that completes as soon as progress reaches the goal.
	PolicyAutoActive TypePolicy = iota
	// PolicyAcceptRequired keeps the Available -> Accepted step; only
	// accepted quests accumulate progress.
	PolicyAcceptRequired
)

// DefaultPolicies is the deployment policy: daily and weekly quests are
// auto-active, unique challenges must be accepted first.
var DefaultPolicies = map[string]TypePolicy{
	models.QuestTypeDaily:  PolicyAutoActive,
	models.QuestTypeWeekly: PolicyAutoActive,
	models.QuestTypeUnique: PolicyAcceptRequired,
}

// initialStatus returns the status a freshly generated quest starts in.
func (p TypePolicy) initialStatus() string {
	if p == PolicyAcceptRequired {
		return models.StatusAvailable
	}
	return models.StatusActive
}
