package progression

// CurveConfig defines the single leveling rule used across the engine:
// a geometric step over per-level XP requirements. Level 1 costs
// nothing; level l (l >= 2) costs round(Base * Multiplier^(l-2)) XP on
// top of the previous levels.
type CurveConfig struct {
	Base       int64
	Multiplier float64

	// MaxLevel caps the curve; 0 means unbounded.
	MaxLevel int
}

const (
	defaultBase       = 100
	defaultMultiplier = 1.2
)

func NewDefaultConfig() *CurveConfig {
	return &CurveConfig{
		Base:       defaultBase,
		Multiplier: defaultMultiplier,
		MaxLevel:   0,
	}
}
