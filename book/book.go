// Package book is the opening book: a pure lookup consulted while the
// board still holds at most a handful of pieces. Exact patterns are
// matched first; otherwise a static center/axis-weighted priority list
// supplies a ranked fallback. Weaker tiers deliberately sample wider
// and skip the book outright some of the time.
package book

import (
	"sort"

	"hexmind/game"

	"golang.org/x/exp/rand"
)

// Config is the tier-specific slice of book behavior.
type Config struct {
	// MaxPieces is the opening cutoff: the book answers only while the
	// total piece count stays at or below it.
	MaxPieces int
	// TopK widens the sampling window over the priority list.
	TopK int
	// SkipProbability makes weaker tiers ignore the book entirely on
	// some turns. Intentional imperfection, not a defect.
	SkipProbability float64
}

// Entry maps an exact board pattern (cell runes only, no turn counter)
// to a fixed response for the player to move.
type Entry struct {
	Pattern  string
	Response game.Move
	Priority int
}

// centerReply is the documented response to an opponent opening on the
// center cell: the down-right neighbor keeps full influence on both
// axes without feeding the opponent's wall.
var centerReply = game.Move{Row: 5, Col: 6}

// entries hold the exact-pattern table, red's perspective. Blue lookups
// mirror the board across the main diagonal first.
var entries = []Entry{
	{Pattern: patternOf(), Response: game.Move{Row: 5, Col: 5}, Priority: 100},
	{Pattern: patternOf(stone{game.Move{Row: 5, Col: 5}, game.Blue}), Response: centerReply, Priority: 90},
	{Pattern: patternOf(stone{game.Move{Row: 0, Col: 0}, game.Blue}), Response: game.Move{Row: 5, Col: 5}, Priority: 80},
	{Pattern: patternOf(stone{game.Move{Row: 10, Col: 10}, game.Blue}), Response: game.Move{Row: 5, Col: 5}, Priority: 80},
	{Pattern: patternOf(stone{game.Move{Row: 0, Col: 10}, game.Blue}), Response: game.Move{Row: 5, Col: 5}, Priority: 80},
	{Pattern: patternOf(stone{game.Move{Row: 10, Col: 0}, game.Blue}), Response: game.Move{Row: 5, Col: 5}, Priority: 80},
}

type stone struct {
	move  game.Move
	state game.CellState
}

func patternOf(stones ...stone) string {
	b := game.NewBoard()
	for _, s := range stones {
		if err := b.Place(s.move, s.state); err != nil {
			panic(err)
		}
	}
	return cellPattern(b)
}

func cellPattern(b *game.Board) string {
	enc := game.Encode(b)
	return enc[:game.NumCells]
}

// Lookup consults the book for the player to move. The second return is
// false when the book has nothing to say: past the cutoff, skipped by
// the tier's noise roll, or no empty candidate.
func Lookup(b *game.Board, p game.CellState, cfg Config, rng *rand.Rand) (game.Move, bool) {
	total := b.PieceCount(game.Red) + b.PieceCount(game.Blue)
	if total > cfg.MaxPieces {
		return game.Move{}, false
	}
	if cfg.SkipProbability > 0 && rng.Float64() < cfg.SkipProbability {
		return game.Move{}, false
	}

	if m, ok := matchExact(b, p); ok && b.At(m) == game.Empty {
		return m, true
	}

	return samplePriority(b, p, cfg, rng)
}

// matchExact looks the position up in the pattern table. Patterns are
// stored from red's perspective; blue boards are mirrored into it.
func matchExact(b *game.Board, p game.CellState) (game.Move, bool) {
	lookup := b
	if p == game.Blue {
		lookup = mirror(b)
	}
	pat := cellPattern(lookup)
	for _, e := range entries {
		if e.Pattern == pat {
			m := e.Response
			if p == game.Blue {
				m = game.Move{Row: m.Col, Col: m.Row}
			}
			return m, true
		}
	}
	return game.Move{}, false
}

// mirror transposes the board across the main diagonal and swaps the
// colors, mapping a blue-to-move position onto a red-to-move one.
func mirror(b *game.Board) *game.Board {
	nb := game.NewBoard()
	for r := 0; r < game.Size; r++ {
		for c := 0; c < game.Size; c++ {
			switch b.Get(r, c) {
			case game.Red:
				mustPlace(nb, game.Move{Row: c, Col: r}, game.Blue)
			case game.Blue:
				mustPlace(nb, game.Move{Row: c, Col: r}, game.Red)
			}
		}
	}
	return nb
}

func mustPlace(b *game.Board, m game.Move, p game.CellState) {
	if err := b.Place(m, p); err != nil {
		panic(err)
	}
}

// samplePriority ranks the empty cells by centrality plus a bias along
// the player's connecting axis, then samples uniformly from the top K.
func samplePriority(b *game.Board, p game.CellState, cfg Config, rng *rand.Rand) (game.Move, bool) {
	center := game.Move{Row: game.Size / 2, Col: game.Size / 2}

	type ranked struct {
		move     game.Move
		priority int
	}
	candidates := make([]ranked, 0, b.EmptyCount())
	for _, m := range b.LegalMoves() {
		pr := 2 * (game.Size - game.HexDistance(m, center))
		// Cells near the middle of the own axis shorten both halves of
		// the eventual connection.
		if p == game.Red {
			pr += game.Size - abs(m.Row-game.Size/2)
		} else {
			pr += game.Size - abs(m.Col-game.Size/2)
		}
		candidates = append(candidates, ranked{move: m, priority: pr})
	}
	if len(candidates) == 0 {
		return game.Move{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].priority > candidates[j].priority
	})

	k := cfg.TopK
	if k <= 0 {
		k = 1
	}
	if k > len(candidates) {
		k = len(candidates)
	}
	return candidates[rng.Intn(k)].move, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
