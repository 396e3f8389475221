package game

import (
	"errors"
	"fmt"
)

// ErrInvalidBoard marks a board encoding that cannot be decoded. It is
// the one validation error that crosses the session boundary as a "no
// move" result rather than a returned move.
var ErrInvalidBoard = errors.New("invalid board encoding")

// ErrNoLegalMoves is reported when the board has no empty cells left to
// play. It is a signal, not a fault.
var ErrNoLegalMoves = errors.New("no legal moves")

// Reason codes for rejected placements.
const (
	ReasonOutOfBounds = "out-of-bounds"
	ReasonOccupied    = "occupied"
	ReasonOutOfTurn   = "out-of-turn"
)

// IllegalMoveError rejects a placement without touching the board.
type IllegalMoveError struct {
	Move   Move
	Reason string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %s: %s", e.Move, e.Reason)
}
