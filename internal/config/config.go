package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
// Nothing is required; every key has a default or disables its feature.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}
	return fromEnv()
}

func fromEnv() Config {
	return Config{
		DB: DBConfig{
			Driver:        getEnvDefault("DB_DRIVER", "sqlite3"),
			Name:          getEnvDefault("DB_NAME", "scorekeeper.db"),
			MigrationsDir: getEnvDefault("MIGRATIONS_DIR", "./migrations"),
		},
		Port:        getEnvDefault("PORT", "8080"),
		LogLevel:    getEnvDefault("LOG_LEVEL", "info"),
		CORSOrigins: splitList(getEnvDefault("CORS_ALLOWED_ORIGINS", "*")),
		Slack: SlackConfig{
			Token:     getEnv("SLACK_BOT_TOKEN"),
			ChannelID: getEnv("SLACK_CHANNEL_ID"),
			DryRun:    getEnvBool("SLACK_DRY_RUN"),
		},
		PubSub: PubSubConfig{
			ProjectID: getEnv("GCP_PROJECT"),
			Topic:     getEnvDefault("PUBSUB_TOPIC", "scorekeeper-changes"),
		},
	}
}

// getEnv returns an optional key, empty when unset.
func getEnv(key string) string {
	value, _ := os.LookupEnv(key)
	return strings.TrimSpace(value)
}

func getEnvDefault(key, fallback string) string {
	if value := getEnv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string) bool {
	value, err := strconv.ParseBool(getEnv(key))
	if err != nil && getEnv(key) != "" {
		log.Warn("Ignoring invalid boolean environment variable", "key", key, "value", getEnv(key))
	}
	return err == nil && value
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
