package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Wire encoding: one rune per cell in row-major order, a separator, and
// the turn counter. The form is the session contract's board snapshot;
// it must round-trip losslessly.
const (
	encEmpty = '.'
	encRed   = 'r'
	encBlue  = 'b'
	encSep   = ':'
)

// Encode renders the board as a compact string, e.g. "...r..b...:3".
func Encode(b *Board) string {
	var sb strings.Builder
	sb.Grow(NumCells + 4)
	for _, s := range b.cells {
		switch s {
		case Red:
			sb.WriteByte(encRed)
		case Blue:
			sb.WriteByte(encBlue)
		default:
			sb.WriteByte(encEmpty)
		}
	}
	sb.WriteByte(encSep)
	sb.WriteString(strconv.Itoa(b.turn))
	return sb.String()
}

// Decode parses an encoded board. Malformed input fails fast with an
// error wrapping ErrInvalidBoard; no partially decoded board escapes.
func Decode(s string) (*Board, error) {
	sep := strings.IndexByte(s, encSep)
	if sep != NumCells {
		return nil, fmt.Errorf("%w: want %d cells, got %d", ErrInvalidBoard, NumCells, sep)
	}
	b := NewBoard()
	for i := 0; i < NumCells; i++ {
		switch s[i] {
		case encEmpty:
			b.cells[i] = Empty
		case encRed:
			b.cells[i] = Red
		case encBlue:
			b.cells[i] = Blue
		default:
			return nil, fmt.Errorf("%w: bad cell %q at index %d", ErrInvalidBoard, s[i], i)
		}
	}
	turn, err := strconv.Atoi(s[sep+1:])
	if err != nil || turn < 0 {
		return nil, fmt.Errorf("%w: bad turn counter %q", ErrInvalidBoard, s[sep+1:])
	}
	b.turn = turn
	return b, nil
}

// Grid returns the cell states as a row-major 2D slice, the shape the
// browser session exchanges over JSON.
func (b *Board) Grid() [][]int {
	grid := make([][]int, Size)
	for r := 0; r < Size; r++ {
		row := make([]int, Size)
		for c := 0; c < Size; c++ {
			row[c] = int(b.Get(r, c))
		}
		grid[r] = row
	}
	return grid
}
