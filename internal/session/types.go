package session

import (
	"database/sql"

	"github.com/mauv0809/scorekeeper/internal/metrics"
	"github.com/mauv0809/scorekeeper/internal/pubsub"
)

// store handles all database operations for sessions.
type store struct {
	db      *sql.DB
	pubsub  pubsub.PubSubClient
	metrics metrics.Metrics
}
