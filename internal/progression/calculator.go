package progression

import "fmt"

// Snapshot is the display view of a progression, derived from XP alone.
type Snapshot struct {
	XPTotal    int64
	Niveau     int
	ProgressXP int
	TierMax    int
}

// Outcome describes a single award.
type Outcome struct {
	Awarded int64
	Before  Snapshot
	After   Snapshot
	LevelUp bool
}

// Calculator derives tiers from XP. It holds no per-user state; niveau is
// always recomputed from the XP total.
type Calculator struct {
	cfg Config
	// starts[i] is the XP at which tier i+1 begins.
	starts []int64
}

func NewCalculator(cfg Config) (*Calculator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	starts := make([]int64, cfg.TierMax)
	for i := 1; i < cfg.TierMax; i++ {
		if len(cfg.Thresholds) > 0 {
			starts[i] = int64(cfg.Thresholds[i-1])
		} else {
			starts[i] = int64(i) * int64(cfg.LevelThreshold)
		}
	}
	return &Calculator{cfg: cfg, starts: starts}, nil
}

// MustCalculator panics on an invalid config; meant for constants and tests.
func MustCalculator(cfg Config) *Calculator {
	c, err := NewCalculator(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Calculator) TierMax() int { return c.cfg.TierMax }

// Level returns min(TierMax, 1 + tiers fully crossed by xp).
func (c *Calculator) Level(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	level := 1
	for i := 1; i < len(c.starts); i++ {
		if xp >= c.starts[i] {
			level = i + 1
		}
	}
	return level
}

// TierStart is the XP at which level begins.
func (c *Calculator) TierStart(level int) int64 {
	if level < 1 {
		level = 1
	}
	if level > c.cfg.TierMax {
		level = c.cfg.TierMax
	}
	return c.starts[level-1]
}

func (c *Calculator) span(level int) int64 {
	if level < c.cfg.TierMax {
		return c.starts[level] - c.starts[level-1]
	}
	if len(c.cfg.Thresholds) == 0 || c.cfg.TierMax == 1 {
		if c.cfg.LevelThreshold > 0 {
			return int64(c.cfg.LevelThreshold)
		}
		return 1
	}
	// top tier reuses the width of the tier below it
	return c.starts[level-1] - c.starts[level-2]
}

// ProgressPercent is the floored percentage of the current tier already
// covered, clamped to [0,100].
func (c *Calculator) ProgressPercent(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	level := c.Level(xp)
	pct := (xp - c.TierStart(level)) * 100 / c.span(level)
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return int(pct)
}

func (c *Calculator) Snapshot(xp int64) Snapshot {
	if xp < 0 {
		xp = 0
	}
	return Snapshot{
		XPTotal:    xp,
		Niveau:     c.Level(xp),
		ProgressXP: c.ProgressPercent(xp),
		TierMax:    c.cfg.TierMax,
	}
}

// Award adds xp to xpTotal. XP keeps accumulating past the top tier while
// niveau saturates at TierMax.
func (c *Calculator) Award(xpTotal, xp int64) (Outcome, error) {
	if xp < 0 {
		return Outcome{}, fmt.Errorf("%w: %d", ErrNegativeAward, xp)
	}
	before := c.Snapshot(xpTotal)
	after := c.Snapshot(before.XPTotal + xp)
	return Outcome{
		Awarded: xp,
		Before:  before,
		After:   after,
		LevelUp: after.Niveau > before.Niveau,
	}, nil
}
