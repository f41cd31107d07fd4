// Package progression maps accumulated XP to levels. The ledger is pure
// computation: it never touches storage, callers persist the derived
// level next to the XP total.
package progression

import "math"

type Ledger struct {
	cfg *CurveConfig
}

func NewLedger(cfg *CurveConfig) *Ledger {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	// Normalize a sparse or nonsensical curve to the defaults. A Base
	// of 0 or a Multiplier below 1 would make per-level costs collapse
	// to zero and the level derivation would never terminate.
	norm := *cfg
	if norm.Base <= 0 {
		norm.Base = defaultBase
	}
	if norm.Multiplier < 1 {
		norm.Multiplier = defaultMultiplier
	}
	if norm.MaxLevel < 0 {
		norm.MaxLevel = 0
	}
	return &Ledger{cfg: &norm}
}

// XPRequiredForLevel returns the XP cost of reaching level from the one
// below it. Level 1 is free.
func (l *Ledger) XPRequiredForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	return int64(math.Round(float64(l.cfg.Base) * math.Pow(l.cfg.Multiplier, float64(level-2))))
}

// TotalXPForLevel returns the accumulated XP needed to sit at level,
// i.e. the sum of per-level requirements from level 2 upward.
func (l *Ledger) TotalXPForLevel(level int) int64 {
	var total int64
	for lv := 2; lv <= level; lv++ {
		total += l.XPRequiredForLevel(lv)
	}
	return total
}

// LevelForXP derives the level for an XP total. Monotonic
// non-decreasing in xp.
func (l *Ledger) LevelForXP(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	level := 1
	var total int64
	for {
		if l.cfg.MaxLevel > 0 && level >= l.cfg.MaxLevel {
			return level
		}
		next := total + l.XPRequiredForLevel(level+1)
		if next > xp {
			return level
		}
		total = next
		level++
	}
}

// XPIntoCurrentLevel returns how far into the current level an XP total
// sits.
func (l *Ledger) XPIntoCurrentLevel(totalXP int64) int64 {
	return totalXP - l.TotalXPForLevel(l.LevelForXP(totalXP))
}

// ProgressToNextLevel returns the fraction in [0,1] toward the next
// level, for renderers. At the level cap it reports 1.
func (l *Ledger) ProgressToNextLevel(totalXP int64) float64 {
	level := l.LevelForXP(totalXP)
	if l.cfg.MaxLevel > 0 && level >= l.cfg.MaxLevel {
		return 1
	}
	required := l.XPRequiredForLevel(level + 1)
	if required <= 0 {
		return 0
	}
	f := float64(l.XPIntoCurrentLevel(totalXP)) / float64(required)
	if f > 1 {
		f = 1
	}
	return f
}
