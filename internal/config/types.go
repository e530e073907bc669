package config

// Config holds all configuration for the application.
type Config struct {
	DB          DBConfig
	Port        string
	LogLevel    string
	CORSOrigins []string
	Slack       SlackConfig
	PubSub      PubSubConfig
}

type DBConfig struct {
	Driver        string
	Name          string
	MigrationsDir string
}

type SlackConfig struct {
	Token     string
	ChannelID string
	DryRun    bool
}

// Enabled reports whether standings should be posted to Slack.
func (c SlackConfig) Enabled() bool {
	return c.Token != "" && c.ChannelID != ""
}

type PubSubConfig struct {
	ProjectID string
	Topic     string
}

// Enabled reports whether changes should be forwarded to Google Cloud Pub/Sub.
func (c PubSubConfig) Enabled() bool {
	return c.ProjectID != ""
}
