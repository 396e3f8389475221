package searcher

import "time"

// SearchMetric summarizes one top-level search for diagnostics and the
// self-play harness.
type SearchMetric struct {
	Simulations  int
	FullPlayouts int
	RolloutPlies int
	TreeNodes    int
	Duration     time.Duration
	EarlyExit    bool
}

// collector accumulates counters during a search. One search runs on
// one goroutine, so plain ints suffice; parallel workers each own a
// full MCTS instance with its own collector.
type collector struct {
	start        time.Time
	simulations  int
	fullPlayouts int
	rolloutPlies int
	earlyExit    bool
}

func (c *collector) reset() {
	*c = collector{start: time.Now()}
}

func (c *collector) addSimulation()  { c.simulations++ }
func (c *collector) addFullPlayout() { c.fullPlayouts++ }
func (c *collector) addRolloutPly()  { c.rolloutPlies++ }
func (c *collector) markEarlyExit()  { c.earlyExit = true }

func (c *collector) complete(treeNodes int) SearchMetric {
	return SearchMetric{
		Simulations:  c.simulations,
		FullPlayouts: c.fullPlayouts,
		RolloutPlies: c.rolloutPlies,
		TreeNodes:    treeNodes,
		Duration:     time.Since(c.start),
		EarlyExit:    c.earlyExit,
	}
}
