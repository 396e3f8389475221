package solver

import (
	"context"
	"testing"
	"time"

	"hexmind/game"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// bruteWinner solves a position by exhaustive search. Only usable with
// a handful of empty cells.
func bruteWinner(b *game.Board, mover game.CellState) game.CellState {
	opp := mover.Opponent()
	if b.IsConnected(opp) {
		return opp
	}
	if b.IsConnected(mover) {
		return mover
	}
	moves := b.LegalMoves()
	if len(moves) == 0 {
		panic("full board with no winner")
	}
	for _, m := range moves {
		nb := b.Clone()
		if err := nb.Place(m, mover); err != nil {
			panic(err)
		}
		if bruteWinner(nb, opp) == mover {
			return mover
		}
	}
	return opp
}

// endgamePosition plays random alternating moves until only maxEmpty
// cells remain, discarding games decided on the way.
func endgamePosition(rng *rand.Rand, maxEmpty int) (*game.Board, game.CellState, bool) {
	b := game.NewBoard()
	p := game.Red
	for b.EmptyCount() > maxEmpty {
		moves := b.LegalMoves()
		m := moves[rng.Intn(len(moves))]
		if err := b.Place(m, p); err != nil {
			panic(err)
		}
		if b.IsConnected(p) {
			return nil, game.Empty, false
		}
		p = p.Opponent()
	}
	return b, p, true
}

func hasImmediateWin(b *game.Board, p game.CellState) bool {
	for _, m := range b.LegalMoves() {
		if game.WouldWin(b, m, p) {
			return true
		}
	}
	return false
}

func TestSolveMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(41))
	s := New(Config{MaxDepth: 8, TableSize: 1 << 16})

	found := 0
	for attempt := 0; attempt < 2000 && found < 8; attempt++ {
		b, mover, ok := endgamePosition(rng, 3+attempt%4)
		if !ok {
			continue
		}
		if hasImmediateWin(b, mover.Opponent()) {
			// Forced-block positions short-circuit before the search;
			// covered separately below.
			continue
		}
		found++

		res := s.Solve(context.Background(), b, mover)
		require.True(t, res.HasMove)
		require.True(t, res.Proven,
			"With at most 6 empty cells the solver must prove the result on %s", game.Encode(b))

		want := bruteWinner(b, mover)
		if res.Score > 0 {
			require.Equal(t, mover, want,
				"Solver claims %s wins on %s, brute force disagrees", mover, game.Encode(b))
		} else {
			require.Equal(t, mover.Opponent(), want,
				"Solver claims %s loses on %s, brute force disagrees", mover, game.Encode(b))
		}
	}
	require.Greater(t, found, 0, "Random playouts should yield at least one undecided endgame")
}

func TestSolvePreChecks(t *testing.T) {
	t.Run("an immediate win short-circuits the search", func(t *testing.T) {
		b := game.NewBoard()
		for r := 0; r < game.Size-1; r++ {
			require.NoError(t, b.Place(game.Move{Row: r, Col: 4}, game.Red))
		}

		s := New(Config{MaxDepth: 4})
		res := s.Solve(context.Background(), b, game.Red)

		require.True(t, res.HasMove)
		require.Equal(t, game.Move{Row: 10, Col: 4}, res.Move)
		require.True(t, res.Proven)
		require.Equal(t, winScore, res.Score)
		require.Zero(t, res.Nodes, "The pre-check must not expand any nodes")
	})

	t.Run("an opponent threat is blocked", func(t *testing.T) {
		b := game.NewBoard()
		for r := 0; r < game.Size-1; r++ {
			require.NoError(t, b.Place(game.Move{Row: r, Col: 4}, game.Red))
		}
		// Red's edge template gives two winning cells; blue is lost but
		// must still contest one of them.
		require.NoError(t, b.Place(game.Move{Row: 5, Col: 8}, game.Blue))

		s := New(Config{MaxDepth: 4})
		res := s.Solve(context.Background(), b, game.Blue)

		require.True(t, res.HasMove)
		require.Contains(t,
			[]game.Move{{Row: 10, Col: 4}, {Row: 10, Col: 5}}, res.Move,
			"Blue must take one of red's connecting cells")
	})
}

func TestSolveCrossPattern(t *testing.T) {
	// Four quadrants with both players' arms meeting at the open
	// center: whoever moves takes (5,5) and wins on the spot.
	build := func() *game.Board {
		b := game.NewBoard()
		for r := 0; r < game.Size; r++ {
			for c := 0; c < game.Size; c++ {
				m := game.Move{Row: r, Col: c}
				switch {
				case r == 5 && c == 5:
					// stays empty
				case r == 5:
					mustPlace(b, m, game.Blue)
				case c == 5:
					mustPlace(b, m, game.Red)
				case r < 5 && c < 5:
					mustPlace(b, m, game.Red)
				case r < 5:
					mustPlace(b, m, game.Blue)
				case c < 5:
					mustPlace(b, m, game.Blue)
				default:
					mustPlace(b, m, game.Red)
				}
			}
		}
		return b
	}

	for _, mover := range []game.CellState{game.Red, game.Blue} {
		b := build()
		require.False(t, b.IsConnected(game.Red))
		require.False(t, b.IsConnected(game.Blue))
		require.Equal(t, mover, bruteWinner(b, mover), "The center cell wins for whoever moves")

		s := New(Config{MaxDepth: 8})
		res := s.Solve(context.Background(), b, mover)

		require.True(t, res.Proven)
		require.Positive(t, res.Score)
		require.Equal(t, game.Move{Row: 5, Col: 5}, res.Move)
	}
}

func mustPlace(b *game.Board, m game.Move, p game.CellState) {
	if err := b.Place(m, p); err != nil {
		panic(err)
	}
}

func TestTranspositionTableIsAdvisory(t *testing.T) {
	rng := rand.New(rand.NewSource(59))

	var b *game.Board
	var mover game.CellState
	for attempt := 0; attempt < 2000; attempt++ {
		cand, p, ok := endgamePosition(rng, 6)
		if !ok || hasImmediateWin(cand, p) || hasImmediateWin(cand, p.Opponent()) {
			continue
		}
		b, mover = cand, p
		break
	}
	require.NotNil(t, b, "Random playouts should yield a quiet endgame position")

	with := New(Config{MaxDepth: 8, TableSize: 1 << 16}).Solve(context.Background(), b, mover)
	without := New(Config{MaxDepth: 8, TableSize: 0}).Solve(context.Background(), b, mover)

	require.Equal(t, without.Move, with.Move,
		"Disabling the table may change search effort, never the move")
	require.Equal(t, without.Score, with.Score)
}

func TestSolveBudget(t *testing.T) {
	t.Run("expired context still returns a legal move", func(t *testing.T) {
		rng := rand.New(rand.NewSource(3))
		b, mover, ok := endgamePosition(rng, 12)
		for !ok {
			b, mover, ok = endgamePosition(rng, 12)
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
		defer cancel()
		time.Sleep(2 * time.Millisecond)

		res := New(Config{MaxDepth: 12}).Solve(ctx, b, mover)

		if res.HasMove {
			require.Equal(t, game.Empty, b.At(res.Move), "Any returned move must be legal")
		}
	})
}

func TestZobrist(t *testing.T) {
	t.Run("incremental hash matches full recomputation", func(t *testing.T) {
		rng := rand.New(rand.NewSource(77))
		b := game.NewBoard()
		p := game.Red
		for i := 0; i < 40; i++ {
			moves := b.LegalMoves()
			m := moves[rng.Intn(len(moves))]

			want := hashAfter(Hash(b, p), m, p)
			require.NoError(t, b.Place(m, p))
			p = p.Opponent()

			require.Equal(t, Hash(b, p), want,
				"Incremental update must equal recomputing after %s", m)
		}
	})

	t.Run("side to move changes the hash", func(t *testing.T) {
		b := game.NewBoard()
		require.NotEqual(t, Hash(b, game.Red), Hash(b, game.Blue))
	})
}
