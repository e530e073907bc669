package total

import (
	"context"

	"github.com/mauv0809/scorekeeper/internal/schema"
)

// TotalService provides read-only standings. It never mutates data.
type TotalService interface {
	// GetTotalsForSession returns every total in the session joined with its
	// player's name, highest total first.
	GetTotalsForSession(ctx context.Context, sessionID int64) ([]PlayerTotal, error)

	// GetPlayerTotal returns one player's total, or nil if there is none.
	GetPlayerTotal(ctx context.Context, sessionID, playerID int64) (*schema.Total, error)

	// Audit compares each cached total with the sum of the player's entries
	// and returns the players where they disagree.
	Audit(ctx context.Context, sessionID int64) ([]Drift, error)
}
