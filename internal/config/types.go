package config

import (
	"time"

	"github.com/mauv0809/matchdesk/internal/clock"
)

// Config holds all configuration for the application.
type Config struct {
	DBName       string
	Port         string
	ObserverID   string
	TickInterval time.Duration
	LogLevel     string
	Rules        clock.Rules
	Slack        SlackConfig
	Turso        TursoConfig
	Replication  ReplicationConfig
}
type SlackConfig struct {
	Token     string
	ChannelID string
}

// Enabled reports whether match results should be posted to Slack.
func (s SlackConfig) Enabled() bool {
	return s.Token != "" && s.ChannelID != ""
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
type ReplicationConfig struct {
	Driver       string
	Topic        string
	RedisAddr    string
	NATSURL      string
	ProjectID    string
	Subscription string
}
