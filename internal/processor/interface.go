package processor

import (
	"context"

	"github.com/mauv0809/scorekeeper/internal/schema"
	"github.com/mauv0809/scorekeeper/internal/total"
)

// SessionStore defines the session lookups required by the processor.
type SessionStore interface {
	GetByID(ctx context.Context, id int64) (*schema.Session, error)
}

// StandingsStore defines the standings reads required by the processor.
type StandingsStore interface {
	GetTotalsForSession(ctx context.Context, sessionID int64) ([]total.PlayerTotal, error)
}
