package processor

import (
	"github.com/mauv0809/scorekeeper/internal/notifier"
	"github.com/mauv0809/scorekeeper/internal/pubsub"
)

// Processor turns round changes from the change feed into standings notifications.
type Processor struct {
	sessions  SessionStore
	standings StandingsStore
	pubsub    pubsub.PubSubClient
	notifier  notifier.Notifier
	dryRun    bool
}
