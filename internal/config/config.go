package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mauv0809/matchdesk/internal/clock"
	"github.com/mauv0809/matchdesk/internal/pubsub"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	cfg, err := parse(os.LookupEnv)
	if err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}
	return cfg
}

type lookupFunc func(key string) (string, bool)

func parse(lookup lookupFunc) (Config, error) {
	getEnv := func(key, fallback string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		return fallback
	}

	interval, err := time.ParseDuration(getEnv("TICK_INTERVAL", "200ms"))
	if err != nil {
		return Config{}, fmt.Errorf("TICK_INTERVAL: %w", err)
	}
	if interval <= 0 {
		return Config{}, errors.New("TICK_INTERVAL must be positive")
	}

	rules := clock.DefaultRules()
	if path := getEnv("RULES_FILE", ""); path != "" {
		rules, err = LoadRules(path)
		if err != nil {
			return Config{}, err
		}
	}

	cfg := Config{
		DBName:       getEnv("DB_NAME", "matchdesk.db"),
		Port:         getEnv("PORT", "8080"),
		ObserverID:   getEnv("OBSERVER_ID", uuid.NewString()),
		TickInterval: interval,
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Rules:        rules,
		Slack: SlackConfig{
			Token:     getEnv("SLACK_BOT_TOKEN", ""),
			ChannelID: getEnv("SLACK_CHANNEL_ID", ""),
		},
		Turso: TursoConfig{
			PrimaryURL: getEnv("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnv("TURSO_AUTH_TOKEN", ""),
		},
		Replication: ReplicationConfig{
			Driver:       getEnv("REPLICATION_DRIVER", pubsub.DriverMemory),
			Topic:        getEnv("PUBSUB_TOPIC", pubsub.DefaultTopic),
			RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
			NATSURL:      getEnv("NATS_URL", "nats://localhost:4222"),
			ProjectID:    getEnv("GCP_PROJECT", ""),
			Subscription: getEnv("PUBSUB_SUBSCRIPTION", ""),
		},
	}

	switch cfg.Replication.Driver {
	case pubsub.DriverMemory, pubsub.DriverRedis, pubsub.DriverNATS:
	case pubsub.DriverGCP:
		if cfg.Replication.ProjectID == "" || cfg.Replication.Subscription == "" {
			return Config{}, errors.New("gcp replication requires GCP_PROJECT and PUBSUB_SUBSCRIPTION")
		}
	default:
		return Config{}, fmt.Errorf("unknown REPLICATION_DRIVER %q", cfg.Replication.Driver)
	}
	return cfg, nil
}

// PubSubOptions converts the replication settings for pubsub.Open.
func (c Config) PubSubOptions() pubsub.Options {
	return pubsub.Options{
		Driver:       c.Replication.Driver,
		Topic:        c.Replication.Topic,
		RedisAddr:    c.Replication.RedisAddr,
		NATSURL:      c.Replication.NATSURL,
		ProjectID:    c.Replication.ProjectID,
		Subscription: c.Replication.Subscription,
	}
}

// LoadRules reads sport rules from a YAML file. Fields left out keep their defaults.
func LoadRules(path string) (clock.Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return clock.Rules{}, fmt.Errorf("failed to read rules file: %w", err)
	}

	rules := clock.DefaultRules()
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return clock.Rules{}, fmt.Errorf("failed to parse rules: %w", err)
	}
	if rules.ShotClockSeconds <= 0 || rules.TimeoutSeconds <= 0 || rules.MaxSubstitutions < 0 || rules.Halves < 1 {
		return clock.Rules{}, fmt.Errorf("invalid rules in %s", path)
	}
	return rules, nil
}
