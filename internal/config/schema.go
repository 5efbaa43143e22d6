// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for botwire.
package config

import (
	"time"

	"github.com/botwire/botwire/internal/gateway"
)

// Config is the top-level configuration structure.
type Config struct {
	// Log controls the slog handler.
	Log LogConfig `yaml:"log"`

	// API configures the bot API client and the poll loop.
	API APIConfig `yaml:"api"`

	// Gateway configures the optional embedded admin HTTP server.
	Gateway GatewayConfig `yaml:"gateway,omitempty"`

	// Commands tweaks the built-in command table.
	Commands CommandsConfig `yaml:"commands,omitempty"`

	// Announcements are scheduled messages posted by the cron scheduler.
	Announcements []AnnouncementConfig `yaml:"announcements,omitempty"`
}

// LogConfig controls logging output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// APIConfig configures the bot API client and poll loop.
type APIConfig struct {
	// Token is the bot token, usually supplied via ${BOT_TOKEN}.
	Token string `yaml:"token"`

	// BaseURL is the API host. Override it to point at a local fake.
	BaseURL string `yaml:"base_url"`

	// IdleInterval is the pause between polls when the backlog is empty.
	IdleInterval time.Duration `yaml:"idle_interval"`
}

// GatewayConfig wraps the gateway server settings with an enable switch.
type GatewayConfig struct {
	Enabled        bool `yaml:"enabled"`
	gateway.Config `yaml:",inline"`
}

// CommandsConfig tweaks the command table assembled by the application.
type CommandsConfig struct {
	// Disabled lists command names registered but not dispatched. Disabled
	// commands still appear in /help output.
	Disabled []string `yaml:"disabled,omitempty"`
}

// AnnouncementConfig describes one scheduled message.
type AnnouncementConfig struct {
	Name     string `yaml:"name"`
	Schedule string `yaml:"schedule"`
	ChatID   int64  `yaml:"chat_id"`
	Text     string `yaml:"text"`
}

// Defaults fills zero values with sensible defaults.
func (c *Config) Defaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = "https://api.telegram.org"
	}
	if c.API.IdleInterval <= 0 {
		c.API.IdleInterval = 2 * time.Second
	}
	c.Gateway.Config.Defaults()
}
