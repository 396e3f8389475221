// Package solver is the exact endgame search: alpha-beta negamax over
// the remaining empty cells, with a zobrist-keyed transposition table.
// It only activates once few empty cells remain; the orchestrator
// decides when.
package solver

import (
	"sync"

	"hexmind/game"

	"golang.org/x/exp/rand"
)

// Zobrist keys: one per (cell, player) pair plus one per side to move.
// Generated once at startup from a fixed seed so hashes are stable
// within a build.
var (
	zobristCell [game.NumCells][2]uint64
	zobristSide [2]uint64
	zobristOnce sync.Once
)

func initZobrist() {
	zobristOnce.Do(func() {
		rng := rand.New(rand.NewSource(0x6865786d696e64))
		for i := range zobristCell {
			zobristCell[i][0] = rng.Uint64()
			zobristCell[i][1] = rng.Uint64()
		}
		zobristSide[0] = rng.Uint64()
		zobristSide[1] = rng.Uint64()
	})
}

func sideIndex(p game.CellState) int {
	if p == game.Red {
		return 0
	}
	return 1
}

// Hash computes the full-board zobrist hash keyed by the side to move.
func Hash(b *game.Board, mover game.CellState) uint64 {
	initZobrist()
	h := zobristSide[sideIndex(mover)]
	for r := 0; r < game.Size; r++ {
		for c := 0; c < game.Size; c++ {
			switch b.Get(r, c) {
			case game.Red:
				h ^= zobristCell[r*game.Size+c][0]
			case game.Blue:
				h ^= zobristCell[r*game.Size+c][1]
			}
		}
	}
	return h
}

// hashAfter updates h for placing p on an empty cell and passing the
// move to the opponent. Incremental: XOR out the old side key, XOR in
// the piece and the new side key.
func hashAfter(h uint64, m game.Move, p game.CellState) uint64 {
	h ^= zobristSide[sideIndex(p)]
	h ^= zobristCell[m.Index()][sideIndex(p)]
	h ^= zobristSide[sideIndex(p.Opponent())]
	return h
}
