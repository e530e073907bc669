package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"DB_DRIVER", "DB_NAME", "MIGRATIONS_DIR", "PORT", "LOG_LEVEL",
		"CORS_ALLOWED_ORIGINS", "SLACK_BOT_TOKEN", "SLACK_CHANNEL_ID", "SLACK_DRY_RUN", "GCP_PROJECT", "PUBSUB_TOPIC"} {
		t.Setenv(key, "")
	}

	cfg := fromEnv()
	assert.Equal(t, "sqlite3", cfg.DB.Driver)
	assert.Equal(t, "scorekeeper.db", cfg.DB.Name)
	assert.Equal(t, "./migrations", cfg.DB.MigrationsDir)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.Slack.Enabled())
	assert.False(t, cfg.Slack.DryRun)
	assert.False(t, cfg.PubSub.Enabled())
	assert.Equal(t, "scorekeeper-changes", cfg.PubSub.Topic)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "libsql")
	t.Setenv("DB_NAME", "/tmp/scores.db")
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, https://scores.local ,")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("SLACK_CHANNEL_ID", "C123")
	t.Setenv("SLACK_DRY_RUN", "true")
	t.Setenv("GCP_PROJECT", "demo")

	cfg := fromEnv()
	assert.Equal(t, "libsql", cfg.DB.Driver)
	assert.Equal(t, "/tmp/scores.db", cfg.DB.Name)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"http://localhost:5173", "https://scores.local"}, cfg.CORSOrigins)
	assert.True(t, cfg.Slack.Enabled())
	assert.True(t, cfg.Slack.DryRun)
	assert.True(t, cfg.PubSub.Enabled())
}

func TestGetEnvBool_Invalid(t *testing.T) {
	t.Setenv("SLACK_DRY_RUN", "maybe")
	assert.False(t, getEnvBool("SLACK_DRY_RUN"))
}

func TestSlackConfig_NeedsBothValues(t *testing.T) {
	assert.False(t, SlackConfig{Token: "xoxb"}.Enabled())
	assert.False(t, SlackConfig{ChannelID: "C1"}.Enabled())
}
