package undo

import "context"

// UndoService reverses the most recently recorded round of a session.
type UndoService interface {
	// UndoLastRound subtracts the latest round's deltas from the totals and
	// removes the round with its entries. It returns false when the session
	// has no rounds; that is not an error.
	UndoLastRound(ctx context.Context, sessionID int64) (bool, error)
}
