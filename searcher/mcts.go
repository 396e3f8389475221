// Package searcher is the Monte-Carlo tree search: UCB1 selection
// blended with RAVE, progressive widening, weighted rollouts and an
// arena-allocated node pool. One MCTS instance serves one search at a
// time; parallel workers each own their own instance.
package searcher

import (
	"context"
	"math"
	"runtime"
	"sort"
	"time"

	"hexmind/analysis"
	"hexmind/game"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Search-loop policy constants.
const (
	yieldInterval             = 50 // Gosched cadence, keeps a core from pegging
	earlyExitCheckEvery       = 64
	earlyExitVisitRatio       = 3
	earlyExitWinRate          = 0.8
	unpredictableOverrideProb = 0.12
	unpredictableTopN         = 3
	unpredictableVisitFloor   = 0.6
)

type Option func(*MCTS)

func WithEpisodes(episodes int) Option {
	return func(m *MCTS) {
		if episodes > 0 {
			m.cfg.episodes = episodes
		}
	}
}

func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		if duration > 0 {
			m.cfg.duration = duration
		}
	}
}

func WithExploration(c float64) Option {
	return func(m *MCTS) {
		if c > 0 {
			m.cfg.exploration = c
		}
	}
}

func WithPersonality(p Personality) Option {
	return func(m *MCTS) {
		m.cfg.personality = p
	}
}

// WithRAVE enables the all-moves-as-first blend with equivalence
// parameter k; a non-positive k disables RAVE entirely.
func WithRAVE(k float64) Option {
	return func(m *MCTS) {
		m.cfg.raveEnabled = k > 0
		m.cfg.raveK = k
	}
}

// WithProgressiveWidening caps each node's children at
// ceil(w*sqrt(visits+1)); a w below 1 disables the cap.
func WithProgressiveWidening(w float64) Option {
	return func(m *MCTS) {
		m.cfg.widening = w >= 1
		m.cfg.wideningW = w
	}
}

func WithCheckInterval(plies int) Option {
	return func(m *MCTS) {
		if plies > 0 {
			m.cfg.checkInterval = plies
		}
	}
}

func WithMinIterations(n int) Option {
	return func(m *MCTS) {
		if n > 0 {
			m.cfg.minIterations = n
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.cfg.seed = seed
	}
}

type config struct {
	episodes      int
	duration      time.Duration
	exploration   float64
	personality   Personality
	raveEnabled   bool
	raveK         float64
	widening      bool
	wideningW     float64
	checkInterval int
	minIterations int
	seed          uint64
}

// MCTS owns all per-search state: the node arena, the RNG and the
// metrics collector. It must not be shared between concurrent searches.
type MCTS struct {
	cfg     config
	arena   *arena
	rng     *rand.Rand
	threat  analysis.ThreatLevel
	metrics collector
}

func NewMCTS(options ...Option) *MCTS {
	m := &MCTS{ // Default values
		cfg: config{
			exploration:   1.4,
			raveEnabled:   true,
			raveK:         500,
			widening:      true,
			wideningW:     2.0,
			checkInterval: 3,
			minIterations: 64,
			seed:          uint64(time.Now().UnixNano()),
		},
		arena: newArena(4096),
	}
	for _, option := range options {
		option(m)
	}
	if m.cfg.episodes <= 0 && m.cfg.duration <= 0 {
		panic("Must specify search episodes or duration")
	}
	m.rng = rand.New(rand.NewSource(m.cfg.seed))
	return m
}

// Result is the outcome of one top-level search.
type Result struct {
	Move    game.Move
	HasMove bool
	Visits  int
	WinRate float64
	Metric  SearchMetric
}

// Search picks a move for mover on a snapshot of b. Every call builds a
// fresh root; no tree survives between turns, and the arena is returned
// to the pool empty.
func (m *MCTS) Search(ctx context.Context, b *game.Board, mover game.CellState) Result {
	m.metrics.reset()
	m.arena.reset()
	defer m.arena.reset()

	moves := b.LegalMoves()
	if len(moves) == 0 {
		return Result{}
	}

	// Tactical shortcuts before any tree is grown: take a win, then
	// deny the opponent's.
	opp := mover.Opponent()
	for _, mv := range moves {
		if game.WouldWin(b, mv, mover) {
			return Result{Move: mv, HasMove: true, WinRate: 1, Metric: m.metrics.complete(0)}
		}
	}
	for _, mv := range moves {
		if game.WouldWin(b, mv, opp) {
			return Result{Move: mv, HasMove: true, WinRate: 0.5, Metric: m.metrics.complete(0)}
		}
	}

	m.threat = analysis.AssessThreat(b, mover)
	if oppThreat := analysis.AssessThreat(b, opp); oppThreat > m.threat {
		m.threat = oppThreat
	}

	root := m.arena.alloc(noParent, game.Move{}, false, opp, moves)
	m.run(ctx, b, root, mover)

	res := m.pickRootMove(root)
	res.Metric = m.metrics.complete(m.arena.size())
	log.Debug().
		Str("move", res.Move.String()).
		Int("visits", res.Visits).
		Float64("win_rate", res.WinRate).
		Int("simulations", res.Metric.Simulations).
		Str("threat", m.threat.String()).
		Msg("tree search finished")
	return res
}

// run drives simulations until the budget is spent: a fixed episode
// count, or a wall-clock budget with a minimum-iteration floor and a
// hard ceiling at twice the budget. With both set, whichever bound hits
// first wins. Either mode may exit early once the best child dominates.
func (m *MCTS) run(ctx context.Context, b *game.Board, root int32, mover game.CellState) {
	start := time.Now()
	var soft, hard time.Time
	timed := m.cfg.duration > 0
	if timed {
		soft = start.Add(m.cfg.duration)
		hard = start.Add(2 * m.cfg.duration)
	}

	for i := 0; ; i++ {
		if ctx.Err() != nil {
			return
		}
		if timed {
			// An episode count alongside a duration is a cap, not a
			// floor: workers handed a slice of a partitioned budget
			// stop at their slice even with wall clock to spare.
			if m.cfg.episodes > 0 && i >= m.cfg.episodes {
				return
			}
			now := time.Now()
			if !now.Before(hard) {
				return
			}
			if i >= m.cfg.minIterations && !now.Before(soft) {
				return
			}
		} else if i >= m.cfg.episodes {
			return
		}
		if i > 0 && i%earlyExitCheckEvery == 0 && i >= m.cfg.minIterations && m.dominated(root) {
			m.metrics.markEarlyExit()
			return
		}
		if i > 0 && i%yieldInterval == 0 {
			runtime.Gosched()
		}

		m.simulate(b, root, mover)
		m.metrics.addSimulation()
	}
}

// dominated reports whether the most-visited child has both an
// overwhelming visit lead and a high win rate.
func (m *MCTS) dominated(root int32) bool {
	children := m.arena.at(root).children
	if len(children) < 2 {
		return false
	}
	best, runnerUp := int32(-1), int32(-1)
	for _, c := range children {
		v := m.arena.at(c).visits
		if best < 0 || v > m.arena.at(best).visits {
			best, runnerUp = c, best
		} else if runnerUp < 0 || v > m.arena.at(runnerUp).visits {
			runnerUp = c
		}
	}
	bestNode := m.arena.at(best)
	return bestNode.visits > earlyExitVisitRatio*m.arena.at(runnerUp).visits &&
		bestNode.winRate() > earlyExitWinRate
}

// simulate runs one select-expand-rollout-backpropagate episode.
func (m *MCTS) simulate(rootBoard *game.Board, root int32, mover game.CellState) {
	b := rootBoard.Clone()
	idx := root

	for {
		n := m.arena.at(idx)
		toMove := n.toMove()

		if len(n.untried) > 0 && (len(n.children) == 0 || !m.widened(n)) {
			// Expand: one untried move, chosen at random.
			j := m.rng.Intn(len(n.untried))
			mv := n.untried[j]
			n.untried[j] = n.untried[len(n.untried)-1]
			n.untried = n.untried[:len(n.untried)-1]

			if err := b.Place(mv, toMove); err != nil {
				panic(err)
			}
			child := m.arena.alloc(idx, mv, true, toMove, b.LegalMoves())
			parent := m.arena.at(idx) // alloc may have moved the arena
			parent.children = append(parent.children, child)

			if b.IsConnected(toMove) {
				m.backpropagate(child, toMove, nil)
				return
			}
			winner, played := m.rollout(b, toMove.Opponent())
			m.backpropagate(child, winner, played)
			return
		}

		if len(n.children) == 0 {
			// No children and nothing untried: the position is full.
			winner, _ := game.Winner(b)
			m.backpropagate(idx, winner, nil)
			return
		}

		child := m.selectChild(n)
		c := m.arena.at(child)
		if err := b.Place(c.move, c.mover); err != nil {
			panic(err)
		}
		if b.IsConnected(c.mover) {
			m.backpropagate(child, c.mover, nil)
			return
		}
		idx = child
	}
}

// widened reports whether progressive widening currently blocks
// expansion at n, forcing depth over breadth.
func (m *MCTS) widened(n *node) bool {
	if !m.cfg.widening {
		return false
	}
	limit := int(math.Ceil(m.cfg.wideningW * math.Sqrt(float64(n.visits+1))))
	return len(n.children) >= limit
}

// selectChild descends by the blended score
// (1-beta)*UCT + beta*RAVE with beta = sqrt(k/(3*visits+k)).
// Unvisited children take absolute priority.
func (m *MCTS) selectChild(parent *node) int32 {
	chooserRate := 0.5
	if parent.visits > 0 {
		chooserRate = 1 - parent.winRate()
	}
	c := explorationFor(m.cfg.exploration, chooserRate, m.cfg.personality, m.threat)
	lnParent := math.Log(float64(parent.visits + 1))

	bestScore := math.Inf(-1)
	best := parent.children[0]
	for _, ci := range parent.children {
		child := m.arena.at(ci)
		if child.visits == 0 {
			return ci
		}

		value := child.winRate() + c*math.Sqrt(lnParent/float64(child.visits))
		if m.cfg.raveEnabled {
			if stat, ok := parent.raveFor(child.move); ok && stat.visits > 0 {
				beta := math.Sqrt(m.cfg.raveK / (3*float64(child.visits) + m.cfg.raveK))
				raveValue := stat.wins / float64(stat.visits)
				value = (1-beta)*value + beta*raveValue
			}
		}
		if value > bestScore {
			bestScore = value
			best = ci
		}
	}
	return best
}

// backpropagate walks to the root updating visit and win counts, and
// feeds each ancestor's RAVE table with every later move made by the
// player choosing at that ancestor.
func (m *MCTS) backpropagate(leaf int32, winner game.CellState, played []playedMove) {
	idx := leaf
	for idx != noParent {
		n := m.arena.at(idx)
		n.visits++
		if winner == n.mover {
			n.wins++
		}
		if m.cfg.raveEnabled {
			chooser := n.toMove()
			for _, pm := range played {
				if pm.by == chooser {
					n.addRave(pm.move, winner == chooser)
				}
			}
		}
		if n.hasMove {
			played = append(played, playedMove{move: n.move, by: n.mover})
		}
		idx = n.parent
	}
}

// pickRootMove selects the most-visited child. The unpredictable
// personality occasionally takes a close runner-up instead.
func (m *MCTS) pickRootMove(root int32) Result {
	children := m.arena.at(root).children
	if len(children) == 0 {
		return Result{}
	}

	sorted := make([]int32, len(children))
	copy(sorted, children)
	sort.Slice(sorted, func(i, j int) bool {
		return m.arena.at(sorted[i]).visits > m.arena.at(sorted[j]).visits
	})

	pick := sorted[0]
	if m.cfg.personality == Unpredictable && m.rng.Float64() < unpredictableOverrideProb {
		floor := int(unpredictableVisitFloor * float64(m.arena.at(sorted[0]).visits))
		var pool []int32
		for _, ci := range sorted[:min(unpredictableTopN, len(sorted))] {
			if m.arena.at(ci).visits >= floor {
				pool = append(pool, ci)
			}
		}
		if len(pool) > 0 {
			pick = pool[m.rng.Intn(len(pool))]
		}
	}

	n := m.arena.at(pick)
	return Result{Move: n.move, HasMove: true, Visits: n.visits, WinRate: n.winRate()}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
