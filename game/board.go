package game

import "fmt"

// Board dimensions. The engine is built for a fixed 11x11 grid; the
// algorithms generalize but the neighbor tables and bitmasks do not.
const (
	Size     = 11
	NumCells = Size * Size
)

type CellState uint8

const (
	Empty CellState = iota
	Red             // connects the top and bottom edges
	Blue            // connects the left and right edges
)

func (s CellState) String() string {
	switch s {
	case Red:
		return "red"
	case Blue:
		return "blue"
	default:
		return "empty"
	}
}

// Opponent returns the other player. Calling it on Empty is a programmer
// error.
func (s CellState) Opponent() CellState {
	switch s {
	case Red:
		return Blue
	case Blue:
		return Red
	default:
		panic("empty cell has no opponent")
	}
}

// Move is a single placement. Pieces are placed, never relocated.
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (m Move) String() string {
	return fmt.Sprintf("%c%d", 'a'+rune(m.Col), m.Row+1)
}

func (m Move) InBounds() bool {
	return m.Row >= 0 && m.Row < Size && m.Col >= 0 && m.Col < Size
}

// Index maps a move to its row-major cell index.
func (m Move) Index() int {
	return m.Row*Size + m.Col
}

func MoveFromIndex(i int) Move {
	return Move{Row: i / Size, Col: i % Size}
}

// Neighbor deltas for the odd-r offset layout: odd rows are shifted half
// a cell to the right, so the diagonal neighbors depend on row parity.
var (
	evenRowDeltas = [6][2]int{{-1, -1}, {-1, 0}, {0, -1}, {0, 1}, {1, -1}, {1, 0}}
	oddRowDeltas  = [6][2]int{{-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, 0}, {1, 1}}
)

// neighborTable[i] holds the in-bounds neighbors of cell i, precomputed
// once at startup.
var neighborTable = buildNeighborTable()

func buildNeighborTable() (table [NumCells][]Move) {
	for i := 0; i < NumCells; i++ {
		m := MoveFromIndex(i)
		deltas := evenRowDeltas
		if m.Row%2 == 1 {
			deltas = oddRowDeltas
		}
		for _, d := range deltas {
			n := Move{Row: m.Row + d[0], Col: m.Col + d[1]}
			if n.InBounds() {
				table[i] = append(table[i], n)
			}
		}
	}
	return table
}

// Neighbors returns the in-bounds hex neighbors of m. The returned slice
// is shared; callers must not mutate it.
func Neighbors(m Move) []Move {
	return neighborTable[m.Index()]
}

// HexDistance returns the minimum number of steps between two cells on
// the hex grid, computed through cube coordinates.
func HexDistance(a, b Move) int {
	ax, ay, az := toCube(a)
	bx, by, bz := toCube(b)
	return (abs(ax-bx) + abs(ay-by) + abs(az-bz)) / 2
}

func toCube(m Move) (x, y, z int) {
	x = m.Col - (m.Row-(m.Row&1))/2
	z = m.Row
	y = -x - z
	return x, y, z
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Board is a snapshot of the game: one tri-state value per cell plus a
// turn counter. Turn parity determines the mover (Red moves first). All
// analysis works on cloned snapshots; Place is the only mutation and it
// only ever fills an Empty cell.
type Board struct {
	cells [NumCells]CellState
	turn  int
}

func NewBoard() *Board {
	return &Board{}
}

// Clone returns an independent copy of the board.
func (b *Board) Clone() *Board {
	nb := *b
	return &nb
}

func (b *Board) Get(row, col int) CellState {
	return b.cells[row*Size+col]
}

func (b *Board) At(m Move) CellState {
	return b.cells[m.Index()]
}

// Place puts p's piece on an empty cell. It does not advance the turn
// counter; the session layer owns turn bookkeeping.
func (b *Board) Place(m Move, p CellState) error {
	if p != Red && p != Blue {
		panic("cannot place an empty piece")
	}
	if !m.InBounds() {
		return &IllegalMoveError{Move: m, Reason: ReasonOutOfBounds}
	}
	if b.cells[m.Index()] != Empty {
		return &IllegalMoveError{Move: m, Reason: ReasonOccupied}
	}
	b.cells[m.Index()] = p
	return nil
}

func (b *Board) Turn() int {
	return b.turn
}

func (b *Board) AdvanceTurn() {
	b.turn++
}

// ToMove returns the player whose turn it is. Red moves on even turns.
func (b *Board) ToMove() CellState {
	if b.turn%2 == 0 {
		return Red
	}
	return Blue
}

// PieceCount returns the number of occupied cells per player.
func (b *Board) PieceCount(p CellState) int {
	count := 0
	for _, s := range b.cells {
		if s == p {
			count++
		}
	}
	return count
}

// EmptyCount returns the number of unoccupied cells.
func (b *Board) EmptyCount() int {
	count := 0
	for _, s := range b.cells {
		if s == Empty {
			count++
		}
	}
	return count
}

// LegalMoves returns every empty cell in row-major order.
func (b *Board) LegalMoves() []Move {
	moves := make([]Move, 0, b.EmptyCount())
	for i, s := range b.cells {
		if s == Empty {
			moves = append(moves, MoveFromIndex(i))
		}
	}
	return moves
}

// Cells returns the player's occupied cells in row-major order.
func (b *Board) Cells(p CellState) []Move {
	cells := make([]Move, 0, 16)
	for i, s := range b.cells {
		if s == p {
			cells = append(cells, MoveFromIndex(i))
		}
	}
	return cells
}

// OnStartEdge reports whether m lies on p's first boundary: the top row
// for Red, the left column for Blue.
func OnStartEdge(m Move, p CellState) bool {
	if p == Red {
		return m.Row == 0
	}
	return m.Col == 0
}

// OnEndEdge reports whether m lies on p's second boundary: the bottom
// row for Red, the right column for Blue.
func OnEndEdge(m Move, p CellState) bool {
	if p == Red {
		return m.Row == Size-1
	}
	return m.Col == Size-1
}
