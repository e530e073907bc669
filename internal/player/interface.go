package player

import (
	"context"

	"github.com/mauv0809/scorekeeper/internal/schema"
)

// PlayerService manages the players of a session.
type PlayerService interface {
	// Create inserts an active player and seeds its zero total atomically.
	Create(ctx context.Context, sessionID int64, name string) (int64, error)

	// CreateDefaultPlayers creates count players named "Player 1".."Player N"
	// as independent Create calls. A count below one means DefaultPlayerCount.
	CreateDefaultPlayers(ctx context.Context, sessionID int64, count int) error

	// GetByID returns the player, or nil if it does not exist.
	GetByID(ctx context.Context, playerID int64) (*schema.Player, error)

	// GetBySession returns all players of the session in creation order.
	GetBySession(ctx context.Context, sessionID int64) ([]schema.Player, error)

	// GetActiveBySession returns only the players eligible for new rounds.
	GetActiveBySession(ctx context.Context, sessionID int64) ([]schema.Player, error)

	// Rename updates the name. Missing players are ignored.
	Rename(ctx context.Context, playerID int64, name string) error

	// ToggleActive flips the active flag. Missing players are ignored.
	ToggleActive(ctx context.Context, playerID int64) error

	// Delete removes the player's entries in every round, its total and the
	// player itself. Rounds and other players' entries are left untouched.
	Delete(ctx context.Context, playerID int64) error
}
