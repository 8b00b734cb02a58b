package affinity

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/worldtick/pkg/worldtick/partition"
)

// Strategy names an affinity policy. It is chosen once at configuration
// time and applied to every partition.
type Strategy string

const (
	// StrategyPartition selects PerPartition.
	StrategyPartition Strategy = "partition"

	// StrategyRegion selects PerRegion.
	StrategyRegion Strategy = "region"
)

// ParseStrategy resolves a strategy name, case-insensitively.
func ParseStrategy(name string) (Strategy, error) {
	switch s := Strategy(strings.ToLower(strings.TrimSpace(name))); s {
	case StrategyPartition, StrategyRegion:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// New returns the provider for a strategy.
func New(s Strategy) (ThreadProvider[partition.Partition], error) {
	switch s {
	case StrategyPartition:
		return PerPartition[partition.Partition]{}, nil
	case StrategyRegion:
		return PerRegion[partition.Partition]{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, string(s))
	}
}
