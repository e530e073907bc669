package notifier

import (
	"github.com/mauv0809/scorekeeper/internal/pubsub"
	"github.com/mauv0809/scorekeeper/internal/total"
)

// Notifier defines a high-level interface for sending notifications about score changes.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// SendStandings publishes the standings after a round was recorded or undone.
	SendStandings(update StandingsUpdate, dryRun bool) error
	// FormatStandingsResponse renders the standings without sending them.
	FormatStandingsResponse(update StandingsUpdate) (any, error)
}

// StandingsUpdate is the payload of a standings notification.
type StandingsUpdate struct {
	SessionID   int64
	SessionName string
	Event       pubsub.EventType
	RoundNo     int
	Standings   []total.PlayerTotal
}
