package processor

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/scorekeeper/internal/notifier"
	"github.com/mauv0809/scorekeeper/internal/pubsub"
)

// New creates a new Processor. The pubsub client is only used to decode
// message payloads.
func New(sessions SessionStore, standings StandingsStore, notifier notifier.Notifier, pubsub pubsub.PubSubClient, dryRun bool) *Processor {
	return &Processor{
		sessions:  sessions,
		standings: standings,
		pubsub:    pubsub,
		notifier:  notifier,
		dryRun:    dryRun,
	}
}

// Run handles messages until the channel is closed or ctx is done.
func (p *Processor) Run(ctx context.Context, msgs <-chan pubsub.Message) {
	log.Info("Starting change processor", "dryRun", p.dryRun)
	for {
		select {
		case <-ctx.Done():
			log.Info("Change processor stopped")
			return
		case msg, ok := <-msgs:
			if !ok {
				log.Info("Change feed closed, processor stopped")
				return
			}
			if err := p.HandleMessage(ctx, msg); err != nil {
				log.Error("Failed to process change", "error", err, "topic", msg.Topic)
			}
		}
	}
}

// HandleMessage sends fresh standings for round changes and ignores every
// other event type.
func (p *Processor) HandleMessage(ctx context.Context, msg pubsub.Message) error {
	switch msg.Topic {
	case pubsub.EventRoundCreated, pubsub.EventRoundUndone:
	default:
		log.Debug("Ignoring change", "topic", msg.Topic)
		return nil
	}

	var change pubsub.Change
	if err := p.pubsub.ProcessMessage(msg.Data, &change); err != nil {
		return fmt.Errorf("failed to decode change: %w", err)
	}

	session, err := p.sessions.GetByID(ctx, change.SessionID)
	if err != nil {
		return fmt.Errorf("failed to load session %d: %w", change.SessionID, err)
	}
	if session == nil {
		log.Info("Session gone before standings could be sent", "sessionID", change.SessionID)
		return nil
	}

	standings, err := p.standings.GetTotalsForSession(ctx, change.SessionID)
	if err != nil {
		return fmt.Errorf("failed to load standings for session %d: %w", change.SessionID, err)
	}

	update := notifier.StandingsUpdate{
		SessionID:   session.ID,
		SessionName: session.Name,
		Event:       change.Type,
		RoundNo:     change.RoundNo,
		Standings:   standings,
	}
	log.Debug("Sending standings", "sessionID", session.ID, "event", change.Type, "roundNo", change.RoundNo)
	return p.notifier.SendStandings(update, p.dryRun)
}
