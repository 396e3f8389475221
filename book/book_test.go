package book

import (
	"testing"

	"hexmind/game"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

var exactCfg = Config{MaxPieces: 6, TopK: 1}

func TestLookup(t *testing.T) {
	t.Run("empty board opens on the center", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		m, ok := Lookup(game.NewBoard(), game.Red, exactCfg, rng)

		require.True(t, ok)
		require.Equal(t, game.Move{Row: 5, Col: 5}, m)
	})

	t.Run("center opening gets the documented adjacent reply", func(t *testing.T) {
		b := game.NewBoard()
		require.NoError(t, b.Place(game.Move{Row: 5, Col: 5}, game.Red))
		b.AdvanceTurn()

		rng := rand.New(rand.NewSource(1))
		m, ok := Lookup(b, game.Blue, exactCfg, rng)

		require.True(t, ok)
		require.NotEqual(t, game.Move{Row: 5, Col: 5}, m, "The reply must not target the occupied center")
		require.Contains(t, game.Neighbors(game.Move{Row: 5, Col: 5}), m,
			"The documented reply is center-adjacent")
	})

	t.Run("book stays silent past the piece cutoff", func(t *testing.T) {
		b := game.NewBoard()
		for i := 0; i < 4; i++ {
			require.NoError(t, b.Place(game.Move{Row: i, Col: 0}, game.Red))
			require.NoError(t, b.Place(game.Move{Row: i, Col: 10}, game.Blue))
		}

		rng := rand.New(rand.NewSource(1))
		_, ok := Lookup(b, game.Red, Config{MaxPieces: 6, TopK: 1}, rng)

		require.False(t, ok, "Eight pieces exceed a cutoff of six")
	})

	t.Run("every book move targets an empty cell", func(t *testing.T) {
		rng := rand.New(rand.NewSource(9))
		cfg := Config{MaxPieces: 8, TopK: 10}

		for trial := 0; trial < 100; trial++ {
			b := game.NewBoard()
			p := game.Red
			for placed := 0; placed < trial%8; placed++ {
				m := game.Move{Row: rng.Intn(game.Size), Col: rng.Intn(game.Size)}
				if b.At(m) == game.Empty {
					require.NoError(t, b.Place(m, p))
					p = p.Opponent()
				}
			}

			m, ok := Lookup(b, p, cfg, rng)
			if ok {
				require.Equal(t, game.Empty, b.At(m),
					"Book move %s must target an empty cell on %s", m, game.Encode(b))
			}
		}
	})

	t.Run("skip probability silences the book sometimes but not always", func(t *testing.T) {
		rng := rand.New(rand.NewSource(5))
		cfg := Config{MaxPieces: 6, TopK: 3, SkipProbability: 0.5}

		hits, misses := 0, 0
		for i := 0; i < 200; i++ {
			if _, ok := Lookup(game.NewBoard(), game.Red, cfg, rng); ok {
				hits++
			} else {
				misses++
			}
		}
		require.Greater(t, hits, 0)
		require.Greater(t, misses, 0)
	})

	t.Run("a wider top-K samples more than one opening", func(t *testing.T) {
		b := game.NewBoard()
		// Any non-tabled position falls through to the priority list.
		require.NoError(t, b.Place(game.Move{Row: 2, Col: 7}, game.Blue))
		b.AdvanceTurn()

		rng := rand.New(rand.NewSource(13))
		cfg := Config{MaxPieces: 6, TopK: 6}

		seen := make(map[game.Move]bool)
		for i := 0; i < 100; i++ {
			m, ok := Lookup(b, game.Red, cfg, rng)
			require.True(t, ok)
			seen[m] = true
		}
		require.Greater(t, len(seen), 1, "Top-K sampling should spread over several cells")
	})
}
