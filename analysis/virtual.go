package analysis

import "hexmind/game"

// Bridge links two same-player cells that share exactly two common
// empty neighbors. The opponent can take at most one carrier before the
// player secures the other, so the cells are functionally connected.
type Bridge struct {
	A, B     game.Move
	Carriers [2]game.Move
}

// EdgeLink marks a cell one step from its own boundary with at least
// two empty carrier cells on the boundary row/column: a standard edge
// template, functionally connected to that boundary.
type EdgeLink struct {
	Cell     game.Move
	ToStart  bool // start edge (top/left) vs end edge (bottom/right)
	Carriers []game.Move
}

// Bridges detects every bridge for p on the board.
func Bridges(b *game.Board, p game.CellState) []Bridge {
	cells := b.Cells(p)
	var out []Bridge
	for i := 0; i < len(cells); i++ {
		for j := i + 1; j < len(cells); j++ {
			a, c := cells[i], cells[j]
			if game.HexDistance(a, c) != 2 {
				continue // bridge endpoints are always two steps apart
			}
			common := commonNeighbors(a, c)
			if len(common) != 2 {
				continue
			}
			if b.At(common[0]) != game.Empty || b.At(common[1]) != game.Empty {
				continue
			}
			out = append(out, Bridge{A: a, B: c, Carriers: [2]game.Move{common[0], common[1]}})
		}
	}
	return out
}

func commonNeighbors(a, b game.Move) []game.Move {
	var out []game.Move
	for _, na := range game.Neighbors(a) {
		for _, nb := range game.Neighbors(b) {
			if na == nb {
				out = append(out, na)
			}
		}
	}
	return out
}

// EdgeTemplates detects p's cells one step off a boundary that hold at
// least two empty carriers on the boundary itself.
func EdgeTemplates(b *game.Board, p game.CellState) []EdgeLink {
	var out []EdgeLink
	for _, m := range b.Cells(p) {
		for _, toStart := range []bool{true, false} {
			if !oneStepFromEdge(m, p, toStart) {
				continue
			}
			var carriers []game.Move
			for _, n := range game.Neighbors(m) {
				onEdge := game.OnStartEdge(n, p)
				if !toStart {
					onEdge = game.OnEndEdge(n, p)
				}
				if onEdge && b.At(n) == game.Empty {
					carriers = append(carriers, n)
				}
			}
			if len(carriers) >= 2 {
				out = append(out, EdgeLink{Cell: m, ToStart: toStart, Carriers: carriers})
			}
		}
	}
	return out
}

func oneStepFromEdge(m game.Move, p game.CellState, toStart bool) bool {
	if p == game.Red {
		if toStart {
			return m.Row == 1
		}
		return m.Row == game.Size-2
	}
	if toStart {
		return m.Col == 1
	}
	return m.Col == game.Size-2
}

// VirtualConnectivity overlays virtual links on literal adjacency: a
// union-find over p's cells where bridge endpoints and edge-template
// cells are treated as already joined. Carrier cells are worth
// defending even before literal occupation.
type VirtualConnectivity struct {
	ci       *game.ConnectivityIndex
	bridges  []Bridge
	edges    []EdgeLink
	carriers []game.Move
	virtual  bool
}

// NewVirtualConnectivity builds the overlay for p.
func NewVirtualConnectivity(b *game.Board, p game.CellState) *VirtualConnectivity {
	// The literal index is extended in place: unions are cheap and the
	// index is rebuilt per query anyway.
	ci := game.NewConnectivityIndex(b, p)
	bridges := Bridges(b, p)
	edges := EdgeTemplates(b, p)

	seen := make(map[game.Move]bool)
	var carriers []game.Move
	addCarrier := func(m game.Move) {
		if !seen[m] {
			seen[m] = true
			carriers = append(carriers, m)
		}
	}

	for _, br := range bridges {
		ci.UnionCells(br.A, br.B)
		addCarrier(br.Carriers[0])
		addCarrier(br.Carriers[1])
	}
	for _, e := range edges {
		if e.ToStart {
			ci.UnionStart(e.Cell)
		} else {
			ci.UnionEnd(e.Cell)
		}
		for _, c := range e.Carriers {
			addCarrier(c)
		}
	}

	return &VirtualConnectivity{
		ci:       ci,
		bridges:  bridges,
		edges:    edges,
		carriers: carriers,
		virtual:  ci.Connected(),
	}
}

// Connected reports whether p's boundaries are linked once virtual
// connections count as real.
func (v *VirtualConnectivity) Connected() bool {
	return v.virtual
}

// Linked reports whether two of p's cells share a group under the
// virtual overlay.
func (v *VirtualConnectivity) Linked(a, b game.Move) bool {
	return v.ci.Linked(a, b)
}

// Bridges returns the detected bridges.
func (v *VirtualConnectivity) Bridges() []Bridge {
	return v.bridges
}

// EdgeLinks returns the detected edge templates.
func (v *VirtualConnectivity) EdgeLinks() []EdgeLink {
	return v.edges
}

// Carriers returns every empty cell that carries a virtual link, each
// listed once.
func (v *VirtualConnectivity) Carriers() []game.Move {
	return v.carriers
}

// IsCarrier reports whether m carries some virtual link of p's.
func (v *VirtualConnectivity) IsCarrier(m game.Move) bool {
	for _, c := range v.carriers {
		if c == m {
			return true
		}
	}
	return false
}
