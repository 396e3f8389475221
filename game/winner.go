package game

// Winner inspects a board for a completed connection. Empty means the
// game is still open. The second return flags the assumed-impossible
// both-connected state; it is resolved by a deterministic tiebreak so
// callers never crash on it, and surfaced so they can log the anomaly.
func Winner(b *Board) (CellState, bool) {
	red := b.IsConnected(Red)
	blue := b.IsConnected(Blue)
	switch {
	case red && blue:
		return resolveDoubleConnection(b), true
	case red:
		return Red, false
	case blue:
		return Blue, false
	default:
		return Empty, false
	}
}

// resolveDoubleConnection is the documented tiebreak: the side with
// fewer pieces completed its chain earlier; equal counts fall back to
// turn parity, crediting the first mover.
func resolveDoubleConnection(b *Board) CellState {
	redPieces, bluePieces := b.PieceCount(Red), b.PieceCount(Blue)
	switch {
	case redPieces < bluePieces:
		return Red
	case bluePieces < redPieces:
		return Blue
	default:
		return Red
	}
}
