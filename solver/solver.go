package solver

import (
	"context"
	"sort"
	"time"

	"hexmind/analysis"
	"hexmind/game"

	"github.com/rs/zerolog/log"
)

// Scoring constants. Terminal scores fold the remaining depth in so the
// search prefers faster wins and slower losses; anything at or beyond
// provenScore is a proven result, not a heuristic guess.
const (
	winScore    = 10000
	provenScore = 9000

	distanceClamp  = 99
	weightDistance = 100
	weightBridges  = 10
)

// Move-ordering bonuses, largest first to maximize pruning.
const (
	orderWin       = 1 << 20
	orderBlock     = 1 << 19
	orderOwnPath   = 50
	orderOppVirtue = 30
)

// Config bounds one solve call.
type Config struct {
	MaxDepth  int
	Budget    time.Duration
	TableSize int
}

// Result is the outcome of a solve. Proven means the score is a proven
// win or loss rather than a heuristic evaluation.
type Result struct {
	Move    game.Move
	HasMove bool
	Score   int
	Depth   int
	Proven  bool
	Nodes   int
	TTHits  int
}

// Solver owns the per-search state: transposition table, node counter
// and deadline. One Solver must not be shared between concurrent
// searches; workers each build their own.
type Solver struct {
	cfg     Config
	tt      *Table
	nodes   int
	stopAt  time.Time
	timed   bool
	aborted bool
}

func New(cfg Config) *Solver {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 16
	}
	return &Solver{cfg: cfg, tt: NewTable(cfg.TableSize)}
}

// Solve runs iterative deepening over even depths until the result is
// proven, the depth cap is reached, or the budget expires. The table is
// reset first: no state persists across player turns.
func (s *Solver) Solve(ctx context.Context, b *game.Board, mover game.CellState) Result {
	s.tt.Reset()
	s.nodes = 0
	s.aborted = false

	s.timed = false
	if s.cfg.Budget > 0 {
		s.stopAt = time.Now().Add(s.cfg.Budget)
		s.timed = true
	}
	if dl, ok := ctx.Deadline(); ok && (!s.timed || dl.Before(s.stopAt)) {
		s.stopAt = dl
		s.timed = true
	}

	moves := b.LegalMoves()
	if len(moves) == 0 {
		return Result{}
	}

	opp := mover.Opponent()

	// Immediate win, then immediate must-block. Either short-circuits
	// the search entirely.
	for _, m := range moves {
		if game.WouldWin(b, m, mover) {
			return Result{Move: m, HasMove: true, Score: winScore, Proven: true}
		}
	}
	var block game.Move
	blocks := 0
	for _, m := range moves {
		if game.WouldWin(b, m, opp) {
			block, blocks = m, blocks+1
		}
	}
	if blocks > 0 {
		// With two or more opponent winning cells the position is lost,
		// but blocking one is still the best practical reply.
		score := 0
		if blocks > 1 {
			score = -winScore
		}
		return Result{Move: block, HasMove: true, Score: score, Proven: blocks > 1}
	}

	res := Result{Move: moves[0], HasMove: true}
	rootHash := Hash(b, mover)

	for depth := 2; depth <= s.cfg.MaxDepth; depth += 2 {
		move, score, ok := s.searchRoot(b, mover, depth, rootHash, res.Move)
		if !ok {
			break // budget expired mid-iteration; keep the last full depth
		}
		res.Move = move
		res.Score = score
		res.Depth = depth
		if score >= provenScore || score <= -provenScore {
			res.Proven = true
			break
		}
		if s.timed && !time.Now().Before(s.stopAt) {
			break
		}
	}

	res.Nodes = s.nodes
	_, res.TTHits = s.tt.Stats()
	log.Debug().
		Int("depth", res.Depth).
		Int("score", res.Score).
		Int("nodes", res.Nodes).
		Bool("proven", res.Proven).
		Str("move", res.Move.String()).
		Msg("endgame solve finished")
	return res
}

// searchRoot runs one full-width iteration at the given depth. The
// previous best move is searched first.
func (s *Solver) searchRoot(b *game.Board, mover game.CellState, depth int, hash uint64, prevBest game.Move) (game.Move, int, bool) {
	moves := s.orderMoves(b, mover)
	for i, m := range moves {
		if m == prevBest && i > 0 {
			copy(moves[1:i+1], moves[:i])
			moves[0] = m
			break
		}
	}

	alpha, beta := -winScore-depth-1, winScore+depth+1
	best := moves[0]
	for _, m := range moves {
		nb := b.Clone()
		if err := nb.Place(m, mover); err != nil {
			panic(err)
		}
		score := -s.negamax(nb, mover.Opponent(), depth-1, -beta, -alpha, hashAfter(hash, m, mover))
		if s.aborted {
			return best, alpha, false
		}
		if score > alpha {
			alpha = score
			best = m
		}
	}
	return best, alpha, true
}

func (s *Solver) negamax(b *game.Board, mover game.CellState, depth int, alpha, beta int, hash uint64) int {
	s.nodes++
	if s.timed && s.nodes%1024 == 0 && !time.Now().Before(s.stopAt) {
		s.aborted = true
		return 0
	}

	opp := mover.Opponent()
	if b.IsConnected(opp) {
		return -(winScore + depth)
	}
	if b.IsConnected(mover) {
		return winScore + depth
	}
	if depth == 0 || b.EmptyCount() == 0 {
		return s.evaluate(b, mover)
	}

	origAlpha := alpha
	if e, ok := s.tt.Get(hash, depth); ok {
		switch e.bound {
		case BoundExact:
			return e.score
		case BoundLower:
			if e.score > alpha {
				alpha = e.score
			}
		case BoundUpper:
			if e.score < beta {
				beta = e.score
			}
		}
		if alpha >= beta {
			return e.score
		}
	}

	moves := s.orderMoves(b, mover)
	best := -winScore - depth - 1
	var bestMove game.Move
	hasBest := false
	for _, m := range moves {
		nb := b.Clone()
		if err := nb.Place(m, mover); err != nil {
			panic(err)
		}
		score := -s.negamax(nb, opp, depth-1, -beta, -alpha, hashAfter(hash, m, mover))
		if s.aborted {
			return 0
		}
		if score > best {
			best = score
			bestMove = m
			hasBest = true
		}
		if best > alpha {
			alpha = best
		}
		if alpha >= beta {
			break
		}
	}

	bound := BoundExact
	switch {
	case best <= origAlpha:
		bound = BoundUpper
	case best >= beta:
		bound = BoundLower
	}
	s.tt.Put(hash, ttEntry{depth: depth, score: best, move: bestMove, hasMove: hasBest, bound: bound})
	return best
}

// evaluate is the leaf heuristic: a distance race plus a small virtual
// connection bonus, from the mover's perspective.
func (s *Solver) evaluate(b *game.Board, mover game.CellState) int {
	opp := mover.Opponent()
	own := clampDistance(analysis.ShortestPath(b, mover))
	theirs := clampDistance(analysis.ShortestPath(b, opp))
	ownBridges := len(analysis.Bridges(b, mover))
	oppBridges := len(analysis.Bridges(b, opp))
	return weightDistance*(theirs-own) + weightBridges*(ownBridges-oppBridges)
}

func clampDistance(r analysis.PathResult) int {
	if !r.Reachable || r.Distance > distanceClamp {
		return distanceClamp
	}
	return r.Distance
}

// orderMoves sorts the legal moves for maximum pruning: immediate wins,
// then blocks of the opponent's immediate wins, then center proximity
// sweetened by own-path membership and the opponent's virtual carriers.
func (s *Solver) orderMoves(b *game.Board, mover game.CellState) []game.Move {
	opp := mover.Opponent()
	path := analysis.ShortestPath(b, mover)
	onPath := make(map[game.Move]bool, len(path.Bottlenecks))
	for _, m := range path.Bottlenecks {
		onPath[m] = true
	}
	vc := analysis.NewVirtualConnectivity(b, opp)
	center := game.Move{Row: game.Size / 2, Col: game.Size / 2}

	moves := b.LegalMoves()
	keys := make(map[game.Move]int, len(moves))
	for _, m := range moves {
		key := game.Size - game.HexDistance(m, center)
		if game.WouldWin(b, m, mover) {
			key += orderWin
		}
		if game.WouldWin(b, m, opp) {
			key += orderBlock
		}
		if onPath[m] {
			key += orderOwnPath
		}
		if vc.IsCarrier(m) {
			key += orderOppVirtue
		}
		keys[m] = key
	}
	sort.SliceStable(moves, func(i, j int) bool { return keys[moves[i]] > keys[moves[j]] })
	return moves
}
