package searcher

import (
	"hexmind/analysis"
	"hexmind/game"

	"golang.org/x/exp/rand"
)

// Rollout policy mix. The mover mostly follows its own shortest-path
// bottlenecks, sometimes its top predicted cells, else plays anywhere.
// Empirically chosen; the mix is what separates these playouts from
// uniform noise.
const (
	rolloutPathBias   = 0.58
	rolloutThreatBias = 0.27 // on top of the path bias
	rolloutPredicted  = 6
)

// playedMove records one rollout placement for RAVE credit.
type playedMove struct {
	move game.Move
	by   game.CellState
}

// guidance caches the per-player analysis a rollout samples from. The
// cache is refreshed on the same cadence as the winner checks: stale
// guidance is acceptable, recomputing every ply is not.
type guidance struct {
	bottlenecks []game.Move
	predicted   []game.Move
}

func refreshGuidance(b *game.Board, p game.CellState) guidance {
	path := analysis.ShortestPath(b, p)
	g := guidance{bottlenecks: path.Bottlenecks}
	for _, sm := range analysis.PredictMoves(b, p, path, rolloutPredicted) {
		g.predicted = append(g.predicted, sm.Move)
	}
	return g
}

// pickEmpty samples a still-empty cell from candidates, or reports none.
func pickEmpty(b *game.Board, candidates []game.Move, rng *rand.Rand) (game.Move, bool) {
	if len(candidates) == 0 {
		return game.Move{}, false
	}
	// Start at a random offset so ties do not always favor the head.
	offset := rng.Intn(len(candidates))
	for i := 0; i < len(candidates); i++ {
		m := candidates[(offset+i)%len(candidates)]
		if b.At(m) == game.Empty {
			return m, true
		}
	}
	return game.Move{}, false
}

// rollout plays the board to completion with the weighted policy and
// returns the winner plus every move made, for RAVE backpropagation.
// Connectivity is only checked every checkInterval plies; placements
// never disconnect anyone, so a delayed check still finds the winner.
func (m *MCTS) rollout(b *game.Board, toMove game.CellState) (game.CellState, []playedMove) {
	var played []playedMove
	cache := map[game.CellState]guidance{
		game.Red:  refreshGuidance(b, game.Red),
		game.Blue: refreshGuidance(b, game.Blue),
	}

	empties := b.LegalMoves()
	plies := 0
	for len(empties) > 0 {
		if plies > 0 && plies%m.cfg.checkInterval == 0 {
			if winner, _ := game.Winner(b); winner != game.Empty {
				return winner, played
			}
			cache[game.Red] = refreshGuidance(b, game.Red)
			cache[game.Blue] = refreshGuidance(b, game.Blue)
		}

		move := m.samplePolicy(b, toMove, cache[toMove], empties)
		if err := b.Place(move, toMove); err != nil {
			panic(err)
		}
		played = append(played, playedMove{move: move, by: toMove})
		empties = removeMove(empties, move)
		toMove = toMove.Opponent()
		plies++
		m.metrics.addRolloutPly()
	}

	winner, _ := game.Winner(b)
	m.metrics.addFullPlayout()
	return winner, played
}

func (m *MCTS) samplePolicy(b *game.Board, p game.CellState, g guidance, empties []game.Move) game.Move {
	r := m.rng.Float64()
	if r < rolloutPathBias {
		if move, ok := pickEmpty(b, g.bottlenecks, m.rng); ok {
			return move
		}
	}
	if r < rolloutPathBias+rolloutThreatBias {
		if move, ok := pickEmpty(b, g.predicted, m.rng); ok {
			return move
		}
	}
	return empties[m.rng.Intn(len(empties))]
}

func removeMove(moves []game.Move, m game.Move) []game.Move {
	for i := range moves {
		if moves[i] == m {
			moves[i] = moves[len(moves)-1]
			return moves[:len(moves)-1]
		}
	}
	return moves
}
