package game

// Virtual boundary nodes appended after the cell indices. Each
// connectivity query concerns a single player, so two nodes suffice:
// start edge (top/left) and end edge (bottom/right).
const (
	startNode = NumCells
	endNode   = NumCells + 1
	numNodes  = NumCells + 2
)

// unionFind is a disjoint-set forest with union by rank and iterative
// path compression.
type unionFind struct {
	parent [numNodes]int32
	rank   [numNodes]int8
}

func newUnionFind() *unionFind {
	uf := &unionFind{}
	for i := range uf.parent {
		uf.parent[i] = int32(i)
	}
	return uf
}

func (uf *unionFind) find(x int32) int32 {
	root := x
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[x] != root {
		uf.parent[x], x = root, uf.parent[x]
	}
	return root
}

func (uf *unionFind) union(a, b int32) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	switch {
	case uf.rank[ra] < uf.rank[rb]:
		uf.parent[ra] = rb
	case uf.rank[ra] > uf.rank[rb]:
		uf.parent[rb] = ra
	default:
		uf.parent[rb] = ra
		uf.rank[ra]++
	}
}

func (uf *unionFind) connected(a, b int32) bool {
	return uf.find(a) == uf.find(b)
}

// ConnectivityIndex is a disjoint-set view of one player's cells plus
// the two virtual boundary nodes. It is rebuilt per query and never
// persisted across board mutations.
type ConnectivityIndex struct {
	uf     *unionFind
	player CellState
}

// NewConnectivityIndex builds the index for p from a board snapshot.
func NewConnectivityIndex(b *Board, p CellState) *ConnectivityIndex {
	ci := &ConnectivityIndex{uf: newUnionFind(), player: p}
	for i := 0; i < NumCells; i++ {
		if b.cells[i] != p {
			continue
		}
		m := MoveFromIndex(i)
		if OnStartEdge(m, p) {
			ci.uf.union(int32(i), startNode)
		}
		if OnEndEdge(m, p) {
			ci.uf.union(int32(i), endNode)
		}
		for _, n := range Neighbors(m) {
			if b.cells[n.Index()] == p {
				ci.uf.union(int32(i), int32(n.Index()))
			}
		}
	}
	return ci
}

// Connected reports whether the player's two boundaries are linked.
func (ci *ConnectivityIndex) Connected() bool {
	return ci.uf.connected(startNode, endNode)
}

// Linked reports whether two cells belong to the same group. Both must
// hold the indexed player's pieces to be meaningful.
func (ci *ConnectivityIndex) Linked(a, b Move) bool {
	return ci.uf.connected(int32(a.Index()), int32(b.Index()))
}

// StartLinked reports whether m's group reaches the player's start edge.
func (ci *ConnectivityIndex) StartLinked(m Move) bool {
	return ci.uf.connected(int32(m.Index()), startNode)
}

// EndLinked reports whether m's group reaches the player's end edge.
func (ci *ConnectivityIndex) EndLinked(m Move) bool {
	return ci.uf.connected(int32(m.Index()), endNode)
}

// UnionCells joins two cells' groups. Used by callers that overlay
// extra (virtual) links on literal adjacency.
func (ci *ConnectivityIndex) UnionCells(a, b Move) {
	ci.uf.union(int32(a.Index()), int32(b.Index()))
}

// UnionStart joins m's group with the start boundary node.
func (ci *ConnectivityIndex) UnionStart(m Move) {
	ci.uf.union(int32(m.Index()), startNode)
}

// UnionEnd joins m's group with the end boundary node.
func (ci *ConnectivityIndex) UnionEnd(m Move) {
	ci.uf.union(int32(m.Index()), endNode)
}

// ConnectedUnionFind is the reference connectivity oracle. The bitboard
// flood fill must agree with it on every legal board.
func ConnectedUnionFind(b *Board, p CellState) bool {
	return NewConnectivityIndex(b, p).Connected()
}

// IsConnected reports whether p's pieces form an unbroken chain between
// p's two boundaries. Correct for every legal board, full boards
// included; no structural shortcut is taken here.
func (b *Board) IsConnected(p CellState) bool {
	return ConnectedBitboard(b, p)
}

// WouldWin reports whether placing m for p completes p's connection.
// The receiver is left untouched.
func WouldWin(b *Board, m Move, p CellState) bool {
	if !m.InBounds() || b.At(m) != Empty {
		return false
	}
	nb := b.Clone()
	nb.cells[m.Index()] = p
	return nb.IsConnected(p)
}
