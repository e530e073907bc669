package player

import (
	"database/sql"

	"github.com/mauv0809/scorekeeper/internal/metrics"
	"github.com/mauv0809/scorekeeper/internal/pubsub"
)

// DefaultPlayerCount is used by CreateDefaultPlayers when no count is given.
const DefaultPlayerCount = 4

// MaxDefaultPlayers caps a single CreateDefaultPlayers call.
const MaxDefaultPlayers = 64

// store handles all database operations for players.
type store struct {
	db      *sql.DB
	pubsub  pubsub.PubSubClient
	metrics metrics.Metrics
}
