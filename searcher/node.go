package searcher

import (
	"hexmind/game"
)

// noParent marks the root's parent index.
const noParent = int32(-1)

// raveStat aggregates all-moves-as-first statistics for one move.
type raveStat struct {
	visits int
	wins   float64
}

// node is one search-tree position. Nodes live in a flat arena and
// refer to each other by index, so reclaiming a finished search is a
// single slice truncation with no ownership cycles to unpick.
type node struct {
	move    game.Move
	hasMove bool
	// mover made move; the player to move at this node is its opponent.
	mover    game.CellState
	parent   int32
	children []int32
	untried  []game.Move
	visits   int
	wins     float64
	// rave is scoped to the children's shared mover: every move the
	// player to move here made later in a playout feeds it.
	rave map[int]raveStat
}

func (n *node) toMove() game.CellState {
	return n.mover.Opponent()
}

func (n *node) winRate() float64 {
	if n.visits == 0 {
		return 0
	}
	return n.wins / float64(n.visits)
}

func (n *node) raveFor(m game.Move) (raveStat, bool) {
	if n.rave == nil {
		return raveStat{}, false
	}
	s, ok := n.rave[m.Index()]
	return s, ok
}

func (n *node) addRave(m game.Move, won bool) {
	if n.rave == nil {
		n.rave = make(map[int]raveStat, 16)
	}
	s := n.rave[m.Index()]
	s.visits++
	if won {
		s.wins++
	}
	n.rave[m.Index()] = s
}

// arena is the reusable node pool. Indices are only valid within one
// top-level search; Reset must run before the arena serves another.
type arena struct {
	nodes []node
}

func newArena(capacity int) *arena {
	return &arena{nodes: make([]node, 0, capacity)}
}

// alloc appends a fresh node and returns its index.
func (a *arena) alloc(parent int32, m game.Move, hasMove bool, mover game.CellState, untried []game.Move) int32 {
	a.nodes = append(a.nodes, node{
		move:    m,
		hasMove: hasMove,
		mover:   mover,
		parent:  parent,
		untried: untried,
	})
	return int32(len(a.nodes) - 1)
}

func (a *arena) at(i int32) *node {
	return &a.nodes[i]
}

// reset truncates the arena. Old nodes become garbage in place; the
// backing array is reused by the next search.
func (a *arena) reset() {
	a.nodes = a.nodes[:0]
}

func (a *arena) size() int {
	return len(a.nodes)
}
