package engine

import (
	"context"
	"fmt"

	"hexmind/game"
	"hexmind/searcher"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

// workerRequest is the full contract a worker receives: a serialized
// snapshot and its slice of the budget. No live board, no shared state;
// the worker rebuilds everything from the message.
type workerRequest struct {
	board    string
	mover    game.CellState
	episodes int
	seed     uint64
}

type workerVote struct {
	move    game.Move
	visits  int
	winRate float64
}

// searchParallel fans the episode budget out over isolated searches and
// aggregates their best moves by weighted vote. Workers that error or
// overrun the per-call timeout are dropped, not zeroed; if every worker
// drops, one synchronous search decides instead.
func (e *Engine) searchParallel(ctx context.Context, b *game.Board, mover game.CellState) searcher.Result {
	encoded := game.Encode(b)
	requests := partitionBudget(encoded, mover, e.cfg.Episodes, e.cfg.Workers, e.rng)

	votes := make([]*workerVote, len(requests))
	g, gctx := errgroup.WithContext(ctx)
	for i, req := range requests {
		i, req := i, req
		g.Go(func() error {
			vote, err := e.runWorker(gctx, req)
			if err != nil {
				log.Warn().Err(err).Int("worker", i).Msg("search worker dropped")
				return nil // One failed vote must not cancel the rest.
			}
			votes[i] = vote
			return nil
		})
	}
	_ = g.Wait()

	if res, ok := tallyVotes(votes); ok {
		return res
	}
	log.Warn().Msg("every search worker failed; falling back to a synchronous search")
	m := searcher.NewMCTS(e.cfg.searchOptions(e.rng.Uint64())...)
	return m.Search(ctx, b, mover)
}

func (e *Engine) runWorker(ctx context.Context, req workerRequest) (*workerVote, error) {
	if e.cfg.WorkerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.WorkerTimeout)
		defer cancel()
	}

	board, err := game.Decode(req.board)
	if err != nil {
		return nil, fmt.Errorf("decoding worker snapshot: %w", err)
	}

	opts := []searcher.Option{
		searcher.WithEpisodes(req.episodes),
		searcher.WithExploration(e.cfg.Exploration),
		searcher.WithPersonality(e.cfg.Personality),
		searcher.WithRAVE(e.cfg.RAVEK),
		searcher.WithProgressiveWidening(e.cfg.WideningW),
		searcher.WithSeed(req.seed),
	}
	if e.cfg.Budget > 0 {
		// Workers run concurrently, so each gets the full wall budget;
		// the per-call timeout is the hard ceiling.
		opts = append(opts, searcher.WithDuration(e.cfg.Budget))
	}
	res := searcher.NewMCTS(opts...).Search(ctx, board, req.mover)
	if !res.HasMove {
		return nil, fmt.Errorf("worker search returned no move")
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("worker timed out: %w", err)
	}
	return &workerVote{move: res.Move, visits: res.Visits, winRate: res.WinRate}, nil
}

// partitionBudget splits episodes evenly, handing the remainder to the
// first workers so the full budget is always spent.
func partitionBudget(board string, mover game.CellState, episodes, workers int, rng *rand.Rand) []workerRequest {
	base := episodes / workers
	remainder := episodes % workers
	requests := make([]workerRequest, workers)
	for i := range requests {
		n := base
		if i < remainder {
			n++
		}
		requests[i] = workerRequest{board: board, mover: mover, episodes: n, seed: rng.Uint64()}
	}
	return requests
}

// tallyVotes aggregates worker results: each vote weighs
// 1 + 2*winRate + min(visits/1000, 1), ties broken by raw vote count.
func tallyVotes(votes []*workerVote) (searcher.Result, bool) {
	type tally struct {
		weight  float64
		count   int
		visits  int
		winRate float64
	}
	totals := make(map[game.Move]*tally)
	for _, v := range votes {
		if v == nil {
			continue
		}
		t := totals[v.move]
		if t == nil {
			t = &tally{}
			totals[v.move] = t
		}
		t.weight += voteWeight(v)
		t.count++
		if v.visits > t.visits {
			t.visits = v.visits
			t.winRate = v.winRate
		}
	}
	if len(totals) == 0 {
		return searcher.Result{}, false
	}

	var best game.Move
	var bestTally *tally
	for move, t := range totals {
		switch {
		case bestTally == nil,
			t.weight > bestTally.weight,
			t.weight == bestTally.weight && t.count > bestTally.count,
			t.weight == bestTally.weight && t.count == bestTally.count && move.Index() < best.Index():
			best, bestTally = move, t
		}
	}
	return searcher.Result{
		Move:    best,
		HasMove: true,
		Visits:  bestTally.visits,
		WinRate: bestTally.winRate,
	}, true
}

func voteWeight(v *workerVote) float64 {
	visitBonus := float64(v.visits) / 1000
	if visitBonus > 1 {
		visitBonus = 1
	}
	return 1 + 2*v.winRate + visitBonus
}
