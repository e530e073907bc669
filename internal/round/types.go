package round

import (
	"database/sql"

	"github.com/mauv0809/scorekeeper/internal/metrics"
	"github.com/mauv0809/scorekeeper/internal/pubsub"
)

// store handles all database operations for rounds and their entries.
type store struct {
	db      *sql.DB
	pubsub  pubsub.PubSubClient
	metrics metrics.Metrics
}
