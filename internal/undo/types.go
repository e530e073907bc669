package undo

import (
	"database/sql"

	"github.com/mauv0809/scorekeeper/internal/metrics"
	"github.com/mauv0809/scorekeeper/internal/pubsub"
)

// store handles the undo transaction.
type store struct {
	db      *sql.DB
	pubsub  pubsub.PubSubClient
	metrics metrics.Metrics
}
