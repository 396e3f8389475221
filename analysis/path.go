// Package analysis derives positional judgements from board snapshots:
// weighted shortest paths, critical cells, threat levels, move
// prediction and virtual connections. Everything here reads a snapshot
// and returns values; nothing mutates a board.
package analysis

import (
	"container/heap"

	"hexmind/game"
)

// Unreachable is the distance reported when no path exists for the
// player, i.e. the opponent has already cut every route.
const Unreachable = 1 << 20

// PathResult is the outcome of a shortest-path query for one player.
// Distance is the minimum number of additional own placements needed to
// connect the two boundaries, assuming no interference. Bottlenecks are
// the empty cells along one minimal path; they are the highest-value
// targets for both players.
type PathResult struct {
	Player      game.CellState
	Distance    int
	Path        []game.Move
	Bottlenecks []game.Move
	Reachable   bool
}

// Connected reports whether the player needs zero further moves.
func (r PathResult) Connected() bool {
	return r.Reachable && r.Distance == 0
}

type pathItem struct {
	cell int
	dist int
}

type pathQueue []pathItem

func (q pathQueue) Len() int            { return len(q) }
func (q pathQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q pathQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *pathQueue) Push(x interface{}) { *q = append(*q, x.(pathItem)) }
func (q *pathQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// ShortestPath runs a Dijkstra-style search from the player's start
// boundary toward the end boundary. Stepping into an own cell costs 0,
// into an empty cell costs 1; opponent cells are impassable.
func ShortestPath(b *game.Board, p game.CellState) PathResult {
	res := PathResult{Player: p, Distance: Unreachable}

	dist := make([]int, game.NumCells)
	prev := make([]int, game.NumCells)
	for i := range dist {
		dist[i] = Unreachable
		prev[i] = -1
	}

	q := &pathQueue{}
	for i := 0; i < game.NumCells; i++ {
		m := game.MoveFromIndex(i)
		if !game.OnStartEdge(m, p) {
			continue
		}
		switch b.At(m) {
		case p:
			dist[i] = 0
		case game.Empty:
			dist[i] = 1
		default:
			continue
		}
		heap.Push(q, pathItem{cell: i, dist: dist[i]})
	}

	goal := -1
	for q.Len() > 0 {
		item := heap.Pop(q).(pathItem)
		if item.dist > dist[item.cell] {
			continue // stale queue entry
		}
		m := game.MoveFromIndex(item.cell)
		if game.OnEndEdge(m, p) {
			goal = item.cell
			break
		}
		for _, n := range game.Neighbors(m) {
			ni := n.Index()
			var w int
			switch b.At(n) {
			case p:
				w = 0
			case game.Empty:
				w = 1
			default:
				continue
			}
			if d := item.dist + w; d < dist[ni] {
				dist[ni] = d
				prev[ni] = item.cell
				heap.Push(q, pathItem{cell: ni, dist: d})
			}
		}
	}

	if goal < 0 {
		return res
	}

	res.Reachable = true
	res.Distance = dist[goal]
	for i := goal; i >= 0; i = prev[i] {
		m := game.MoveFromIndex(i)
		res.Path = append(res.Path, m)
		if b.At(m) == game.Empty {
			res.Bottlenecks = append(res.Bottlenecks, m)
		}
	}
	// Path was collected goal-first; present it start-to-goal.
	reverse(res.Path)
	reverse(res.Bottlenecks)
	return res
}

func reverse(ms []game.Move) {
	for i, j := 0, len(ms)-1; i < j; i, j = i+1, j-1 {
		ms[i], ms[j] = ms[j], ms[i]
	}
}
