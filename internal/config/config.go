package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Discord  DiscordConfig  `yaml:"discord"`
	Source   SourceConfig   `yaml:"source"`
	Database DatabaseConfig `yaml:"database"`
	Tracker  TrackerConfig  `yaml:"tracker"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	LogLevel string         `yaml:"log_level"`
}

type DiscordConfig struct {
	Token         string `yaml:"token"`
	ChannelID     string `yaml:"channel_id"`
	CommandPrefix string `yaml:"command_prefix"`
}

type SourceConfig struct {
	BaseURL string `yaml:"base_url"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type TrackerConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	MaxBackoff   time.Duration `yaml:"max_backoff"`
	BackoffBase  time.Duration `yaml:"backoff_base"`
}

// RabbitMQConfig is optional; an empty URL disables event publishing.
type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Discord.Token == "" {
		return nil, fmt.Errorf("discord token is required")
	}
	if cfg.Discord.ChannelID == "" {
		return nil, fmt.Errorf("discord channel_id is required")
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Discord.CommandPrefix == "" {
		c.Discord.CommandPrefix = "!"
	}
	if c.Source.BaseURL == "" {
		c.Source.BaseURL = "https://alpacahack.com/challenges"
	}
	if c.Database.Path == "" {
		c.Database.Path = "ctfwatch.db"
	}
	if c.Tracker.PollInterval == 0 {
		c.Tracker.PollInterval = 5 * time.Minute
	}
	if c.Tracker.FetchTimeout == 0 {
		c.Tracker.FetchTimeout = 30 * time.Second
	}
	if c.Tracker.MaxBackoff == 0 {
		c.Tracker.MaxBackoff = 30 * time.Minute
	}
	if c.Tracker.BackoffBase == 0 {
		c.Tracker.BackoffBase = 30 * time.Second
	}
	if c.RabbitMQ.URL != "" {
		if c.RabbitMQ.Exchange == "" {
			c.RabbitMQ.Exchange = "ctfwatch"
		}
		if c.RabbitMQ.RoutingKey == "" {
			c.RabbitMQ.RoutingKey = "challenge_events"
		}
		if c.RabbitMQ.QueueName == "" {
			c.RabbitMQ.QueueName = "ctfwatch_events"
		}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
