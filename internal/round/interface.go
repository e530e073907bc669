package round

import (
	"context"

	"github.com/mauv0809/scorekeeper/internal/schema"
)

// RoundService records scored rounds and reads round history.
type RoundService interface {
	// CreateRound records one round for the session as a single transaction:
	// the round row, one entry per delta and the matching total updates.
	// Every active player must have a delta, otherwise schema.ErrMissingDeltas
	// is returned and nothing is written.
	CreateRound(ctx context.Context, sessionID int64, deltas []schema.Delta, note *string) (int64, error)

	// GetBySession returns the session's rounds, newest first.
	GetBySession(ctx context.Context, sessionID int64) ([]schema.Round, error)

	// GetRoundEntries returns the entries recorded for a round.
	GetRoundEntries(ctx context.Context, roundID int64) ([]schema.Entry, error)

	// GetLatestRound returns the round with the highest number, or nil if
	// the session has no rounds.
	GetLatestRound(ctx context.Context, sessionID int64) (*schema.Round, error)
}
