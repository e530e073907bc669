package pubsub

import (
	"time"

	"github.com/google/uuid"
	"github.com/mauv0809/scorekeeper/internal/schema"
)

// EventType represents the type of change sent via pubsub.
type EventType string

const (
	EventSessionCreated EventType = "session.created"
	EventSessionDeleted EventType = "session.deleted"
	EventPlayerCreated  EventType = "player.created"
	EventPlayerUpdated  EventType = "player.updated"
	EventPlayerDeleted  EventType = "player.deleted"
	EventRoundCreated   EventType = "round.created"
	EventRoundUndone    EventType = "round.undone"
)

// Change describes one committed transaction.
type Change struct {
	ID        string         `msgpack:"id" json:"id"`
	Type      EventType      `msgpack:"type" json:"type"`
	SessionID int64          `msgpack:"session_id" json:"sessionId"`
	PlayerID  int64          `msgpack:"player_id,omitempty" json:"playerId,omitempty"`
	RoundID   int64          `msgpack:"round_id,omitempty" json:"roundId,omitempty"`
	RoundNo   int            `msgpack:"round_no,omitempty" json:"roundNo,omitempty"`
	Deltas    []schema.Delta `msgpack:"deltas,omitempty" json:"deltas,omitempty"`
	At        time.Time      `msgpack:"at" json:"at"`
}

// NewChange stamps a change with a fresh id and the current time.
func NewChange(eventType EventType, sessionID int64) Change {
	return Change{
		ID:        uuid.NewString(),
		Type:      eventType,
		SessionID: sessionID,
		At:        time.Now(),
	}
}

// Message is a msgpack-encoded payload tagged with its topic.
type Message struct {
	Topic EventType
	Data  []byte
}
