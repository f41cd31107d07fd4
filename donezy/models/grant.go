package models

import (
	"fmt"
	"time"
)

// GrantSet is the durable idempotency ledger of issued one-time rewards,
// keyed by subject key. Entries are never deleted; an absent key is the
// only permission to grant.
type GrantSet map[string]time.Time

func (g GrantSet) Has(key string) bool {
	_, ok := g[key]
	return ok
}

func (g GrantSet) Add(key string, now time.Time) {
	g[key] = now
}

// Subject key builders. Keys are uniform across call sites so the same
// reward can never be issued twice under different spellings.
func GrantKeyQuest(questID string) string {
	return "quest:" + questID
}

func GrantKeyBadge(badgeID string, tier int) string {
	return fmt.Sprintf("badge:%s:%d", badgeID, tier)
}

func GrantKeyLevelUp(level int) string {
	return fmt.Sprintf("levelup:%d", level)
}
