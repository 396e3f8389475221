package game

import "math/bits"

// mask128 packs the 121 cells into two machine words: cell i lives in
// bit i of lo for i < 64, else bit i-64 of hi.
type mask128 struct {
	lo, hi uint64
}

func (m *mask128) set(i int) {
	if i < 64 {
		m.lo |= 1 << uint(i)
	} else {
		m.hi |= 1 << uint(i-64)
	}
}

func (m mask128) test(i int) bool {
	if i < 64 {
		return m.lo&(1<<uint(i)) != 0
	}
	return m.hi&(1<<uint(i-64)) != 0
}

func (m mask128) or(o mask128) mask128 {
	return mask128{lo: m.lo | o.lo, hi: m.hi | o.hi}
}

func (m mask128) and(o mask128) mask128 {
	return mask128{lo: m.lo & o.lo, hi: m.hi & o.hi}
}

func (m mask128) andNot(o mask128) mask128 {
	return mask128{lo: m.lo &^ o.lo, hi: m.hi &^ o.hi}
}

func (m mask128) isEmpty() bool {
	return m.lo == 0 && m.hi == 0
}

func (m mask128) intersects(o mask128) bool {
	return m.lo&o.lo != 0 || m.hi&o.hi != 0
}

func (m mask128) count() int {
	return bits.OnesCount64(m.lo) + bits.OnesCount64(m.hi)
}

// forEach calls fn with the index of every set bit, ascending.
func (m mask128) forEach(fn func(i int)) {
	w := m.lo
	for w != 0 {
		fn(bits.TrailingZeros64(w))
		w &= w - 1
	}
	w = m.hi
	for w != 0 {
		fn(64 + bits.TrailingZeros64(w))
		w &= w - 1
	}
}

// Precomputed per-cell neighbor masks and the four edge masks. The
// neighbor table already encodes the row-parity deltas, so building the
// masks from it keeps the two adjacency definitions in lockstep.
var (
	cellNeighborMask = buildCellNeighborMasks()

	// Edge masks: red connects the top and bottom rows, blue the left
	// and right columns.
	redStartMask, redEndMask, blueStartMask, blueEndMask = buildEdgeMasks()
)

// buildCellNeighborMasks references neighborTable, so Go's package
// variable initialization ordering guarantees the table is built first.
func buildCellNeighborMasks() (masks [NumCells]mask128) {
	for i := 0; i < NumCells; i++ {
		for _, n := range neighborTable[i] {
			masks[i].set(n.Index())
		}
	}
	return masks
}

func buildEdgeMasks() (redStart, redEnd, blueStart, blueEnd mask128) {
	for i := 0; i < NumCells; i++ {
		m := MoveFromIndex(i)
		if m.Row == 0 {
			redStart.set(i)
		}
		if m.Row == Size-1 {
			redEnd.set(i)
		}
		if m.Col == 0 {
			blueStart.set(i)
		}
		if m.Col == Size-1 {
			blueEnd.set(i)
		}
	}
	return redStart, redEnd, blueStart, blueEnd
}

// Bitboard mirrors a snapshot as two occupancy masks, one per player.
// It is rebuilt from the snapshot on demand; the board stays canonical.
type Bitboard struct {
	occupied [2]mask128
}

func NewBitboard(b *Board) *Bitboard {
	bb := &Bitboard{}
	for i, s := range b.cells {
		switch s {
		case Red:
			bb.occupied[0].set(i)
		case Blue:
			bb.occupied[1].set(i)
		}
	}
	return bb
}

func (bb *Bitboard) mask(p CellState) mask128 {
	if p == Red {
		return bb.occupied[0]
	}
	return bb.occupied[1]
}

// Connected runs a flood fill from p's start edge over p's pieces and
// reports whether it reaches the end edge. O(edges) per query.
func (bb *Bitboard) Connected(p CellState) bool {
	own := bb.mask(p)
	start, end := redStartMask, redEndMask
	if p == Blue {
		start, end = blueStartMask, blueEndMask
	}

	reached := own.and(start)
	if reached.isEmpty() {
		return false
	}
	for {
		if reached.intersects(end) {
			return true
		}
		var grown mask128
		reached.forEach(func(i int) {
			grown = grown.or(cellNeighborMask[i])
		})
		grown = grown.and(own).andNot(reached)
		if grown.isEmpty() {
			return false
		}
		reached = reached.or(grown)
	}
}

// ConnectedBitboard is the flood-fill fast path for board connectivity.
func ConnectedBitboard(b *Board, p CellState) bool {
	return NewBitboard(b).Connected(p)
}
