// Package config loads client configuration from environment variables,
// with an optional YAML profile file supplying defaults for anything the
// environment leaves unset.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/jawahar-singamsetty/retrivis.ai-client/pkg/tokensource"
)

// DefaultProfilePath is consulted when RETRIVIS_PROFILE is unset.
const DefaultProfilePath = "retrivis.yaml"

// Config holds all client configuration.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Backend API
	BackendURL     string        `envconfig:"RETRIVIS_BACKEND_URL" default:"http://localhost:8000"`
	RequestTimeout time.Duration `envconfig:"RETRIVIS_REQUEST_TIMEOUT" default:"30s"`

	// Auth: a literal token wins over a token file.
	Token     string `envconfig:"RETRIVIS_TOKEN"`
	TokenFile string `envconfig:"RETRIVIS_TOKEN_FILE"`

	// Document status polling
	PollInterval time.Duration `envconfig:"RETRIVIS_POLL_INTERVAL" default:"5s"`

	// Console daemon
	ListenAddr        string `envconfig:"RETRIVIS_LISTEN_ADDR" default:":8787"`
	MetricsListenAddr string `envconfig:"RETRIVIS_METRICS_ADDR" default:":9187"`

	// Slack notifications (optional; daemon runs without Slack)
	SlackToken   string `envconfig:"RETRIVIS_SLACK_TOKEN"`
	SlackChannel string `envconfig:"RETRIVIS_SLACK_CHANNEL"`

	// Profile points at the YAML profile file.
	Profile string `envconfig:"RETRIVIS_PROFILE"`
}

// profile mirrors the YAML profile file. All fields are optional.
type profile struct {
	BackendURL   string        `yaml:"backend_url"`
	Token        string        `yaml:"token"`
	TokenFile    string        `yaml:"token_file"`
	PollInterval time.Duration `yaml:"poll_interval"`
	ListenAddr   string        `yaml:"listen_addr"`
	SlackToken   string        `yaml:"slack_token"`
	SlackChannel string        `yaml:"slack_channel"`
	LogLevel     string        `yaml:"log_level"`
}

// Load reads configuration from environment variables, then fills gaps
// from the YAML profile if one exists.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.applyProfile(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyProfile merges profile values under the environment: only fields
// the environment left at their zero/default stay eligible for override.
func (c *Config) applyProfile() error {
	path := c.Profile
	explicit := path != ""
	if path == "" {
		path = DefaultProfilePath
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		if !explicit {
			return nil
		}
		return fmt.Errorf("reading profile %s: %w", path, err)
	}

	var p profile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("parsing profile %s: %w", path, err)
	}

	if os.Getenv("RETRIVIS_BACKEND_URL") == "" && p.BackendURL != "" {
		c.BackendURL = p.BackendURL
	}
	if c.Token == "" && p.Token != "" {
		c.Token = p.Token
	}
	if c.TokenFile == "" && p.TokenFile != "" {
		c.TokenFile = p.TokenFile
	}
	if os.Getenv("RETRIVIS_POLL_INTERVAL") == "" && p.PollInterval > 0 {
		c.PollInterval = p.PollInterval
	}
	if os.Getenv("RETRIVIS_LISTEN_ADDR") == "" && p.ListenAddr != "" {
		c.ListenAddr = p.ListenAddr
	}
	if c.SlackToken == "" && p.SlackToken != "" {
		c.SlackToken = p.SlackToken
	}
	if c.SlackChannel == "" && p.SlackChannel != "" {
		c.SlackChannel = p.SlackChannel
	}
	if os.Getenv("LOG_LEVEL") == "" && p.LogLevel != "" {
		c.LogLevel = p.LogLevel
	}
	return nil
}

// SlackEnabled returns true if Slack notification settings are configured.
func (c *Config) SlackEnabled() bool {
	return c.SlackToken != "" && c.SlackChannel != ""
}

// TokenSource builds the token source implied by the config: a literal
// token wins over a token file; with neither, the RETRIVIS_TOKEN
// environment variable is consulted on every call.
func (c *Config) TokenSource() tokensource.Source {
	if c.Token != "" {
		return tokensource.Static(c.Token)
	}
	if c.TokenFile != "" {
		return tokensource.NewFile(c.TokenFile)
	}
	return tokensource.Env{Key: "RETRIVIS_TOKEN"}
}
