package slack

import (
	"context"
	"errors"
	"testing"

	"github.com/mauv0809/scorekeeper/internal/metrics"
	"github.com/mauv0809/scorekeeper/internal/notifier"
	"github.com/mauv0809/scorekeeper/internal/pubsub"
	"github.com/mauv0809/scorekeeper/internal/schema"
	"github.com/mauv0809/scorekeeper/internal/total"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func standing(name string, score int, active bool) total.PlayerTotal {
	return total.PlayerTotal{Total: schema.Total{Total: score}, PlayerName: name, Active: active}
}

func TestSendMessage_DryRun(t *testing.T) {
	metrics := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	notifier := NewNotifierWithAPI(nil, "C123", metrics)

	_, _, err := notifier.sendMessage(slackapi.NewBlockMessage(), true)
	require.NoError(t, err)
	assert.Equal(t, 0, metrics.NotifSent())
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage(slackapi.NewSectionBlock(slackapi.NewTextBlockObject("plain_text", "hello", false, false), nil, nil))
	_, _, err := notifier.sendMessage(message, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metrics.NotifSent())
	assert.Equal(t, 0, metrics.NotifFailed())
}

func TestSendMessage_Failure(t *testing.T) {
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			return "", "", expectedErr
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	_, _, err := notifier.sendMessage(slackapi.NewBlockMessage(), false)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 0, metrics.NotifSent())
	assert.Equal(t, 1, metrics.NotifFailed())
}

func TestSendStandings_CallsSender(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			return "C123", "ts123", nil
		},
	}

	n := NewNotifierWithAPI(api, "C123", metrics.NewMock())
	err := n.SendStandings(notifier.StandingsUpdate{SessionName: "Friday", Event: pubsub.EventRoundCreated, RoundNo: 1}, false)
	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called via SendStandings")
}

func TestFormatStandings(t *testing.T) {
	client := &Notifier{channelID: "C123"}

	t.Run("ranks players with medals", func(t *testing.T) {
		msg := client.formatStandings(notifier.StandingsUpdate{
			SessionName: "Friday",
			Event:       pubsub.EventRoundCreated,
			RoundNo:     3,
			Standings: []total.PlayerTotal{
				standing("Ann", 12, true),
				standing("Bob", 0, true),
				standing("Cat", -4, false),
				standing("Dan", -8, true),
			},
		})
		require.Len(t, msg.Blocks.BlockSet, 6, "header, context and one section per player")

		header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
		require.True(t, ok, "First block should be a HeaderBlock")
		assert.Equal(t, "🏆 Friday standings 🏆", header.Text.Text)

		ctxBlock, ok := msg.Blocks.BlockSet[1].(*slackapi.ContextBlock)
		require.True(t, ok, "Second block should be a ContextBlock")
		require.Len(t, ctxBlock.ContextElements.Elements, 1)
		action, ok := ctxBlock.ContextElements.Elements[0].(*slackapi.TextBlockObject)
		require.True(t, ok)
		assert.Equal(t, "📝 Round 3 recorded", action.Text)

		expected := []string{
			"1. 🥇 Ann: +12",
			"2. 🥈 Bob: +0",
			"3. 🥉 Cat: -4 (sitting out)",
			"4.  Dan: -8",
		}
		for i, want := range expected {
			section, ok := msg.Blocks.BlockSet[i+2].(*slackapi.SectionBlock)
			require.True(t, ok)
			assert.Equal(t, want, section.Text.Text)
		}
	})

	t.Run("undo and empty session", func(t *testing.T) {
		msg := client.formatStandings(notifier.StandingsUpdate{
			SessionName: "Empty",
			Event:       pubsub.EventRoundUndone,
			RoundNo:     1,
		})
		require.Len(t, msg.Blocks.BlockSet, 3)

		ctxBlock := msg.Blocks.BlockSet[1].(*slackapi.ContextBlock)
		action := ctxBlock.ContextElements.Elements[0].(*slackapi.TextBlockObject)
		assert.Equal(t, "↩️ Round 1 was undone", action.Text)

		section := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
		assert.Equal(t, "No players in this session yet.", section.Text.Text)
	})

	t.Run("no rounds yet omits the round line", func(t *testing.T) {
		msg := client.formatStandings(notifier.StandingsUpdate{
			SessionName: "Fresh",
			Standings:   []total.PlayerTotal{standing("Ann", 0, true)},
		})
		require.Len(t, msg.Blocks.BlockSet, 2, "header and one section")
		_, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
		assert.True(t, ok)
		section, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Equal(t, "1. 🥇 Ann: +0", section.Text.Text)
		for _, b := range msg.Blocks.BlockSet {
			_, isContext := b.(*slackapi.ContextBlock)
			assert.False(t, isContext)
		}
	})
}

func TestFallbackText(t *testing.T) {
	client := &Notifier{}
	msg := client.formatStandings(notifier.StandingsUpdate{SessionName: "Friday"})
	assert.Equal(t, "🏆 Friday standings 🏆", fallbackText(msg))
	assert.Equal(t, "", fallbackText(slackapi.NewBlockMessage()))
}
