package session

import (
	"context"

	"github.com/mauv0809/scorekeeper/internal/schema"
)

// SessionService manages sessions, the root aggregate of all score data.
type SessionService interface {
	// Create inserts a new session and returns its id.
	Create(ctx context.Context, name string) (int64, error)

	// GetAll returns every session, newest first.
	GetAll(ctx context.Context) ([]schema.Session, error)

	// GetByID returns the session, or nil if it does not exist.
	GetByID(ctx context.Context, id int64) (*schema.Session, error)

	// Delete removes the session and all of its players, rounds, entries and
	// totals in a single transaction.
	Delete(ctx context.Context, id int64) error
}
