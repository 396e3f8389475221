package searcher

import "hexmind/analysis"

// Personality shapes how the exploration constant flexes during a
// search. It is a difficulty-tier flavor, not a strength setting.
type Personality int

const (
	Balanced Personality = iota
	Aggressive
	Defensive
	Unpredictable
)

func (p Personality) String() string {
	switch p {
	case Aggressive:
		return "aggressive"
	case Defensive:
		return "defensive"
	case Unpredictable:
		return "unpredictable"
	default:
		return "balanced"
	}
}

// Exploration scaling factors. Empirically chosen; only the direction
// matters: winning positions and hot threats push toward exploitation,
// the unpredictable personality keeps roaming.
const (
	winningExploitFactor = 0.8
	losingExploreFactor  = 1.2
	winningRateCutoff    = 0.6
	losingRateCutoff     = 0.4
	aggressiveFactor     = 0.85
	defensiveFactor      = 1.15
	unpredictableFactor  = 1.3
	highThreatFactor     = 0.6
	criticalThreatFactor = 0.4
)

// explorationFor scales the base constant by the root's current win
// rate, the configured personality, and the position's threat level.
func explorationFor(base, winRate float64, p Personality, threat analysis.ThreatLevel) float64 {
	c := base
	switch {
	case winRate > winningRateCutoff:
		c *= winningExploitFactor
	case winRate < losingRateCutoff:
		c *= losingExploreFactor
	}
	switch p {
	case Aggressive:
		c *= aggressiveFactor
	case Defensive:
		c *= defensiveFactor
	case Unpredictable:
		c *= unpredictableFactor
	}
	switch threat {
	case analysis.ThreatHigh:
		c *= highThreatFactor
	case analysis.ThreatCritical:
		c *= criticalThreatFactor
	}
	return c
}
