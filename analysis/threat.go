package analysis

import (
	"sort"

	"hexmind/game"
)

// ThreatLevel orders how close a player is to completing a connection.
type ThreatLevel int

const (
	ThreatLow ThreatLevel = iota
	ThreatMedium
	ThreatHigh
	ThreatCritical
)

func (l ThreatLevel) String() string {
	switch l {
	case ThreatCritical:
		return "critical"
	case ThreatHigh:
		return "high"
	case ThreatMedium:
		return "medium"
	default:
		return "low"
	}
}

// Threat cutoffs. Empirically chosen; the ordering matters, the exact
// values are tunable.
const (
	criticalDistanceMax  = 2
	highDistanceMax      = 5
	mediumDistanceMax    = 7
	highCriticalCellsMin = 2
	nearGroupDistanceMax = 4
)

// Move-prediction weights, likewise tunable. Prediction only biases
// simulations; it is never treated as ground truth.
const (
	weightOnPath       = 40.0
	weightOwnNeighbor  = 12.0
	weightCentrality   = 6.0
	weightPathAdjacent = 8.0
)

// ScoredMove ranks a candidate placement.
type ScoredMove struct {
	Move  game.Move
	Score float64
}

// Report bundles every per-player judgement a single pass produces.
type Report struct {
	Player    game.CellState
	Path      PathResult
	Critical  []game.Move
	Level     ThreatLevel
	Predicted []ScoredMove
}

// Analyze produces the full positional report for one player.
func Analyze(b *game.Board, p game.CellState) Report {
	path := ShortestPath(b, p)
	critical := CriticalCells(b, p)
	return Report{
		Player:    p,
		Path:      path,
		Critical:  critical,
		Level:     assessThreat(b, p, path, critical),
		Predicted: PredictMoves(b, p, path, 8),
	}
}

// CriticalCells returns the empty cells that complete p's connection in
// a single move: cells whose neighborhood (or own edge membership)
// bridges a start-linked group and an end-linked group.
func CriticalCells(b *game.Board, p game.CellState) []game.Move {
	ci := game.NewConnectivityIndex(b, p)
	var out []game.Move
	for _, m := range b.LegalMoves() {
		start := game.OnStartEdge(m, p)
		end := game.OnEndEdge(m, p)
		for _, n := range game.Neighbors(m) {
			if b.At(n) != p {
				continue
			}
			if ci.StartLinked(n) {
				start = true
			}
			if ci.EndLinked(n) {
				end = true
			}
		}
		if start && end {
			out = append(out, m)
		}
	}
	return out
}

// AssessThreat classifies how dangerous p's position currently is.
func AssessThreat(b *game.Board, p game.CellState) ThreatLevel {
	path := ShortestPath(b, p)
	return assessThreat(b, p, path, CriticalCells(b, p))
}

func assessThreat(b *game.Board, p game.CellState, path PathResult, critical []game.Move) ThreatLevel {
	switch {
	case path.Connected() || (path.Reachable && path.Distance <= criticalDistanceMax):
		return ThreatCritical
	case (path.Reachable && path.Distance <= highDistanceMax) || len(critical) >= highCriticalCellsMin:
		return ThreatHigh
	case (path.Reachable && path.Distance <= mediumDistanceMax) || boundaryGroupsNear(b, p):
		return ThreatMedium
	default:
		return ThreatLow
	}
}

// boundaryGroupsNear reports whether a start-linked group and an
// end-linked group sit within a short hex distance of each other.
func boundaryGroupsNear(b *game.Board, p game.CellState) bool {
	ci := game.NewConnectivityIndex(b, p)
	var startCells, endCells []game.Move
	for _, m := range b.Cells(p) {
		if ci.StartLinked(m) {
			startCells = append(startCells, m)
		}
		if ci.EndLinked(m) {
			endCells = append(endCells, m)
		}
	}
	for _, s := range startCells {
		for _, e := range endCells {
			if game.HexDistance(s, e) <= nearGroupDistanceMax {
				return true
			}
		}
	}
	return false
}

// PredictMoves scores every empty cell for p and returns the top k by a
// weighted blend of shortest-path membership, own-neighbor count,
// centrality and path adjacency.
func PredictMoves(b *game.Board, p game.CellState, path PathResult, k int) []ScoredMove {
	onPath := make(map[game.Move]bool, len(path.Bottlenecks))
	for _, m := range path.Bottlenecks {
		onPath[m] = true
	}

	center := game.Move{Row: game.Size / 2, Col: game.Size / 2}
	maxDist := float64(game.HexDistance(game.Move{Row: 0, Col: 0}, center))

	scored := make([]ScoredMove, 0, b.EmptyCount())
	for _, m := range b.LegalMoves() {
		var score float64
		if onPath[m] {
			score += weightOnPath
		}
		ownNeighbors := 0
		pathAdjacent := false
		for _, n := range game.Neighbors(m) {
			if b.At(n) == p {
				ownNeighbors++
			}
			if onPath[n] {
				pathAdjacent = true
			}
		}
		score += weightOwnNeighbor * float64(ownNeighbors)
		score += weightCentrality * (1 - float64(game.HexDistance(m, center))/maxDist)
		if pathAdjacent {
			score += weightPathAdjacent
		}
		scored = append(scored, ScoredMove{Move: m, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
