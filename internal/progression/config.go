package progression

import (
	"errors"
	"fmt"
)

const (
	DefaultTierMax        = 5
	DefaultLevelThreshold = 100
)

var (
	ErrNegativeAward = errors.New("progression: negative xp award")
	ErrInvalidConfig = errors.New("progression: invalid config")
)

// Config describes how accumulated XP maps onto tiers.
type Config struct {
	// LevelThreshold is the XP width of every tier when Thresholds is empty.
	LevelThreshold int
	// TierMax is the highest reachable tier.
	TierMax int
	// Thresholds optionally lists the cumulative XP needed to enter tiers
	// 2..TierMax, strictly increasing. It must hold TierMax-1 entries.
	Thresholds []int
}

func NewDefaultConfig() Config {
	return Config{
		LevelThreshold: DefaultLevelThreshold,
		TierMax:        DefaultTierMax,
	}
}

func (c Config) validate() error {
	if c.TierMax < 1 {
		return fmt.Errorf("%w: tier max %d", ErrInvalidConfig, c.TierMax)
	}
	if len(c.Thresholds) == 0 {
		if c.LevelThreshold <= 0 {
			return fmt.Errorf("%w: level threshold %d", ErrInvalidConfig, c.LevelThreshold)
		}
		return nil
	}
	if len(c.Thresholds) != c.TierMax-1 {
		return fmt.Errorf("%w: want %d thresholds, got %d", ErrInvalidConfig, c.TierMax-1, len(c.Thresholds))
	}
	prev := 0
	for i, t := range c.Thresholds {
		if t <= prev {
			return fmt.Errorf("%w: threshold %d (%d) not increasing", ErrInvalidConfig, i, t)
		}
		prev = t
	}
	return nil
}
