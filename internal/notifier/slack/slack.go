package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/scorekeeper/internal/metrics"
	"github.com/mauv0809/scorekeeper/internal/notifier"
	"github.com/mauv0809/scorekeeper/internal/pubsub"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier posts standings to a Slack channel.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	return NewNotifierWithAPI(slack.New(token), channelID, metrics)
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-channel", "dry-run-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionText(fallbackText(message), false),
	)
	if err != nil {
		s.metrics.IncNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendStandings(update notifier.StandingsUpdate, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatStandings(update), dryRun)
	return err
}

// FormatStandingsResponse formats the standings as a Block Kit message.
func (s *Notifier) FormatStandingsResponse(update notifier.StandingsUpdate) (any, error) {
	return s.formatStandings(update), nil
}

func (s *Notifier) formatStandings(update notifier.StandingsUpdate) slack.Message {
	blocks := make([]slack.Block, 0, len(update.Standings)+2)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏆 %s standings 🏆", update.SessionName), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	// RoundNo is zero when the session has no rounds yet.
	if update.RoundNo > 0 {
		var action string
		switch update.Event {
		case pubsub.EventRoundUndone:
			action = fmt.Sprintf("↩️ Round %d was undone", update.RoundNo)
		default:
			action = fmt.Sprintf("📝 Round %d recorded", update.RoundNo)
		}
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", action, true, false)))
	}

	if len(update.Standings) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No players in this session yet.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for i, st := range update.Standings {
		rank := i + 1
		var medal string
		switch rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}
		playerText := fmt.Sprintf("%d. %s %s: %+d", rank, medal, st.PlayerName, st.Total.Total)
		if !st.Active {
			playerText += " (sitting out)"
		}
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playerText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// fallbackText is shown in push notifications, which do not render blocks.
func fallbackText(message slack.Message) string {
	if len(message.Blocks.BlockSet) == 0 {
		return ""
	}
	if header, ok := message.Blocks.BlockSet[0].(*slack.HeaderBlock); ok && header.Text != nil {
		return header.Text.Text
	}
	return ""
}
