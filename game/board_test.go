package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNeighbors(t *testing.T) {
	t.Run("interior cells have six neighbors", func(t *testing.T) {
		for _, m := range []Move{{5, 5}, {4, 6}, {6, 3}} {
			require.Len(t, Neighbors(m), 6, "Interior cell %s should have 6 neighbors", m)
		}
	})

	t.Run("adjacency is symmetric", func(t *testing.T) {
		for i := 0; i < NumCells; i++ {
			m := MoveFromIndex(i)
			for _, n := range Neighbors(m) {
				require.Contains(t, Neighbors(n), m,
					"Neighbor relation should be symmetric between %s and %s", m, n)
			}
		}
	})

	t.Run("row parity changes diagonal neighbors", func(t *testing.T) {
		require.Contains(t, Neighbors(Move{2, 5}), Move{1, 4},
			"Even row should reach up-left")
		require.Contains(t, Neighbors(Move{3, 5}), Move{2, 6},
			"Odd row should reach up-right")
	})
}

func TestHexDistance(t *testing.T) {
	t.Run("zero to self", func(t *testing.T) {
		require.Equal(t, 0, HexDistance(Move{4, 4}, Move{4, 4}))
	})

	t.Run("one to every neighbor", func(t *testing.T) {
		m := Move{5, 5}
		for _, n := range Neighbors(m) {
			require.Equal(t, 1, HexDistance(m, n),
				"Distance from %s to neighbor %s should be 1", m, n)
		}
	})

	t.Run("straight line along a row", func(t *testing.T) {
		require.Equal(t, 7, HexDistance(Move{3, 1}, Move{3, 8}))
	})
}

func TestPlace(t *testing.T) {
	t.Run("placing on an empty cell succeeds", func(t *testing.T) {
		b := NewBoard()
		err := b.Place(Move{2, 3}, Red)

		require.NoError(t, err)
		require.Equal(t, Red, b.At(Move{2, 3}))
		require.Equal(t, 0, b.Turn(), "Place should not advance the turn counter")
	})

	t.Run("placing out of bounds is rejected", func(t *testing.T) {
		b := NewBoard()
		err := b.Place(Move{-1, 5}, Red)

		var ime *IllegalMoveError
		require.ErrorAs(t, err, &ime)
		require.Equal(t, ReasonOutOfBounds, ime.Reason)
	})

	t.Run("placing on an occupied cell is rejected and leaves the board unchanged", func(t *testing.T) {
		b := NewBoard()
		require.NoError(t, b.Place(Move{2, 3}, Red))

		err := b.Place(Move{2, 3}, Blue)

		var ime *IllegalMoveError
		require.ErrorAs(t, err, &ime)
		require.Equal(t, ReasonOccupied, ime.Reason)
		require.Equal(t, Red, b.At(Move{2, 3}), "Failed placement should not mutate the cell")
	})
}

func TestClone(t *testing.T) {
	t.Run("clone is independent of the original", func(t *testing.T) {
		b := NewBoard()
		require.NoError(t, b.Place(Move{0, 0}, Red))

		nb := b.Clone()
		require.NoError(t, nb.Place(Move{1, 1}, Blue))
		nb.AdvanceTurn()

		require.Equal(t, Empty, b.At(Move{1, 1}), "Mutating the clone should not touch the original")
		require.Equal(t, 0, b.Turn())
		require.Equal(t, 1, nb.Turn())
	})
}

func TestToMove(t *testing.T) {
	t.Run("red moves on even turns, blue on odd", func(t *testing.T) {
		b := NewBoard()
		require.Equal(t, Red, b.ToMove())

		b.AdvanceTurn()
		require.Equal(t, Blue, b.ToMove())

		b.AdvanceTurn()
		require.Equal(t, Red, b.ToMove())
	})
}

func TestLegalMoves(t *testing.T) {
	t.Run("every empty cell is legal", func(t *testing.T) {
		b := NewBoard()
		require.Len(t, b.LegalMoves(), NumCells)

		require.NoError(t, b.Place(Move{5, 5}, Red))
		moves := b.LegalMoves()
		require.Len(t, moves, NumCells-1)
		require.NotContains(t, moves, Move{5, 5})
	})
}
