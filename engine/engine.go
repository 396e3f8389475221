// Package engine ties the decision components into the per-move
// pipeline the session calls: opening book, tactical shortcuts, exact
// endgame solving, tree search and the strategic blend, each behind a
// difficulty tier.
package engine

import (
	"context"
	"time"

	"hexmind/analysis"
	"hexmind/book"
	"hexmind/game"
	"hexmind/searcher"
	"hexmind/solver"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Rationale tags returned to the session. The session localizes and
// renders them; the engine only names the pipeline stage that decided.
const (
	RationaleOpeningBook    = "opening-book"
	RationaleImmediateWin   = "immediate-win"
	RationaleBlockLoss      = "block-loss"
	RationaleEndgameSolver  = "endgame-solver"
	RationaleCriticalBlock  = "critical-block"
	RationaleTreeSearch     = "tree-search"
	RationaleStrategicBlend = "strategic-blend"
	RationaleFallback       = "fallback"
	RationaleInvalidBoard   = "invalid-board"
	RationaleNoLegalMoves   = "no-legal-moves"
)

// MoveRequest is one engine turn: a serialized snapshot plus session
// context. History and LastMove are advisory; the snapshot is truth.
type MoveRequest struct {
	Board     string
	LastMove  *game.Move
	Tier      Tier
	TurnCount int
	History   []string
}

// MoveResult carries the chosen move, the rationale trail and the
// diagnostics the self-play harness aggregates. A nil Move means no
// legal move exists or the input was rejected; the tags say which.
type MoveResult struct {
	Move      *game.Move
	Rationale []string
	Visits    int
	WinRate   float64
	Metric    searcher.SearchMetric
	Solver    *solver.Result
}

// Engine computes moves for one tier. It owns no board state; every
// ComputeMove call decides from the request's snapshot alone.
type Engine struct {
	cfg  Config
	tier Tier
	rng  *rand.Rand
}

func New(tier Tier) *Engine {
	return &Engine{
		cfg:  TierConfig(tier),
		tier: tier,
		rng:  rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
	}
}

// NewSession returns the initial empty board.
func NewSession() *game.Board {
	return game.NewBoard()
}

// IsLegalMove validates a proposed placement against the snapshot. The
// human opens as red, the engine answers as blue; asEngine names the
// requesting side so a move out of turn is rejected, not applied. The
// board is never mutated; callers apply via ApplyMove on success.
func IsLegalMove(b *game.Board, m game.Move, asEngine bool) error {
	if !m.InBounds() {
		return &game.IllegalMoveError{Move: m, Reason: game.ReasonOutOfBounds}
	}
	requester := game.Red
	if asEngine {
		requester = game.Blue
	}
	if b.ToMove() != requester {
		return &game.IllegalMoveError{Move: m, Reason: game.ReasonOutOfTurn}
	}
	if b.At(m) != game.Empty {
		return &game.IllegalMoveError{Move: m, Reason: game.ReasonOccupied}
	}
	return nil
}

// ApplyMove returns a new board with m placed for p and the turn
// advanced. The input board is unchanged.
func ApplyMove(b *game.Board, m game.Move, p game.CellState) (*game.Board, error) {
	next := b.Clone()
	if err := next.Place(m, p); err != nil {
		return nil, err
	}
	next.AdvanceTurn()
	return next, nil
}

// CheckWinner reports the winner, or Empty while the game is live. The
// both-connected state cannot arise from legal play; if a corrupted
// snapshot produces it anyway the documented tiebreak resolves it and
// the anomaly is logged, never crashed on.
func CheckWinner(b *game.Board) game.CellState {
	winner, anomalous := game.Winner(b)
	if anomalous {
		log.Warn().
			Str("winner", winner.String()).
			Int("turn", b.Turn()).
			Msg("both players connected; resolved by piece-count tiebreak")
	}
	return winner
}

// ComputeMove runs the tier's decision pipeline on the request. It
// always returns: invalid input and dead positions come back as a nil
// move with a diagnostic tag, never a panic across the boundary.
func (e *Engine) ComputeMove(ctx context.Context, req MoveRequest) MoveResult {
	b, err := game.Decode(req.Board)
	if err != nil {
		log.Warn().Err(err).Msg("rejecting malformed board snapshot")
		return MoveResult{Rationale: []string{RationaleInvalidBoard}}
	}

	mover := b.ToMove()
	moves := b.LegalMoves()
	if len(moves) == 0 {
		return MoveResult{Rationale: []string{RationaleNoLegalMoves}}
	}

	if mv, ok := book.Lookup(b, mover, e.cfg.Book, e.rng); ok {
		return result(mv, RationaleOpeningBook)
	}

	opp := mover.Opponent()
	for _, mv := range moves {
		if game.WouldWin(b, mv, mover) {
			return result(mv, RationaleImmediateWin)
		}
	}
	for _, mv := range moves {
		if game.WouldWin(b, mv, opp) {
			return result(mv, RationaleBlockLoss)
		}
	}

	if e.cfg.EndgameThreshold > 0 && b.EmptyCount() <= e.cfg.EndgameThreshold {
		if res, ok := e.solveEndgame(ctx, b, mover); ok {
			out := result(res.Move, RationaleEndgameSolver)
			out.Solver = &res
			return out
		}
	}

	// The must-block scan above removes single winning cells; a critical
	// cell surviving to here means the opponent holds several and the
	// game is lost to perfect play. Block the most central one anyway.
	if critical := analysis.CriticalCells(b, opp); len(critical) > 0 {
		return result(mostCentral(critical), RationaleCriticalBlock)
	}

	search := e.treeSearch(ctx, b, mover)
	out := MoveResult{
		Visits:    search.Visits,
		WinRate:   search.WinRate,
		Metric:    search.Metric,
		Rationale: []string{RationaleTreeSearch},
	}
	if !search.HasMove {
		mv := moves[e.rng.Intn(len(moves))]
		log.Warn().
			Str("move", mv.String()).
			Msg("tree search produced no move on a live board; picking any legal move")
		return result(mv, RationaleFallback)
	}
	chosen := search.Move

	if e.cfg.Blend {
		if blended, ok := e.strategicBlend(b, mover, chosen); ok {
			chosen = blended
			out.Rationale = append(out.Rationale, RationaleStrategicBlend)
		}
	}

	out.Move = &chosen
	return out
}

func (e *Engine) solveEndgame(ctx context.Context, b *game.Board, mover game.CellState) (solver.Result, bool) {
	s := solver.New(solver.Config{
		MaxDepth:  e.cfg.EndgameDepth,
		Budget:    e.cfg.EndgameBudget,
		TableSize: 1 << 18,
	})
	res := s.Solve(ctx, b, mover)
	// Only a proven line is allowed to preempt the tree search; a
	// heuristic solver score is weaker evidence than simulations.
	return res, res.HasMove && res.Proven && res.Score > 0
}

func (e *Engine) treeSearch(ctx context.Context, b *game.Board, mover game.CellState) searcher.Result {
	if e.cfg.Workers > 1 {
		return e.searchParallel(ctx, b, mover)
	}
	m := searcher.NewMCTS(e.cfg.searchOptions(e.rng.Uint64())...)
	return m.Search(ctx, b, mover)
}

// strategicBlend may override the tree move with the analyzer's top
// candidate when its score crosses the tier threshold. Under high
// threat only candidates that also block the opponent's shortest path
// qualify; anything else trades defense for tempo at the worst time.
func (e *Engine) strategicBlend(b *game.Board, mover game.CellState, treeMove game.Move) (game.Move, bool) {
	ownPath := analysis.ShortestPath(b, mover)
	candidates := analysis.PredictMoves(b, mover, ownPath, 3)
	if len(candidates) == 0 {
		return game.Move{}, false
	}
	top := candidates[0]
	if top.Score < e.cfg.BlendScore || top.Move == treeMove {
		return game.Move{}, false
	}

	opp := mover.Opponent()
	threat := analysis.AssessThreat(b, opp)
	if threat >= analysis.ThreatHigh && !blocksPath(b, opp, top.Move) {
		return game.Move{}, false
	}
	log.Debug().
		Str("tree", treeMove.String()).
		Str("strategic", top.Move.String()).
		Float64("score", top.Score).
		Msg("strategic candidate overrides tree move")
	return top.Move, true
}

func blocksPath(b *game.Board, opp game.CellState, m game.Move) bool {
	for _, cell := range analysis.ShortestPath(b, opp).Bottlenecks {
		if cell == m {
			return true
		}
	}
	return false
}

func mostCentral(moves []game.Move) game.Move {
	center := game.Move{Row: game.Size / 2, Col: game.Size / 2}
	best := moves[0]
	bestDist := game.HexDistance(best, center)
	for _, m := range moves[1:] {
		if d := game.HexDistance(m, center); d < bestDist {
			best, bestDist = m, d
		}
	}
	return best
}

func result(m game.Move, tags ...string) MoveResult {
	return MoveResult{Move: &m, Rationale: tags}
}
