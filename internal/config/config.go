// Package config loads habitsync configuration from YAML, .env files, and
// the process environment. Credentials are validated once at startup and the
// resulting Config is passed into the orchestrator; deeper components never
// read the environment themselves.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	syncerrors "git.home.luguber.info/inful/habitsync/internal/errors"
)

// Environment variables providing the two required credentials.
const (
	EnvTodoistToken = "TODOIST_API_TOKEN"
	EnvHabitifyKey  = "HABITIFY_API_KEY"
)

// Config represents the application configuration.
type Config struct {
	Todoist  TodoistConfig  `yaml:"todoist"`
	Habitify HabitifyConfig `yaml:"habitify"`
	Sync     SyncConfig     `yaml:"sync"`
	Daemon   DaemonConfig   `yaml:"daemon"`
}

// TodoistConfig configures the task-service client.
type TodoistConfig struct {
	APIToken string `yaml:"api_token,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
}

// HabitifyConfig configures the habit-service client.
type HabitifyConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// SyncConfig configures a single sync run.
type SyncConfig struct {
	StateFile       string   `yaml:"state_file,omitempty"`
	BootstrapWindow Duration `yaml:"bootstrap_window,omitempty"`
}

// DaemonConfig configures daemon mode.
type DaemonConfig struct {
	Interval Duration `yaml:"interval,omitempty"`
	Listen   string   `yaml:"listen,omitempty"`
}

// Duration wraps time.Duration so YAML values like "15m" parse naturally.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(value.Value))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load loads configuration from the specified file. A missing config file is
// not an error; every field except the two credentials has a default.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	cfg := &Config{}
	if data, err := os.ReadFile(configPath); err == nil {
		// Expand ${VAR} references so secrets can stay out of the file.
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, syncerrors.ConfigError("failed to parse config file").
				WithCause(err).
				WithContext("path", configPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, syncerrors.ConfigError("failed to read config file").
			WithCause(err).
			WithContext("path", configPath)
	}

	cfg.applyEnvironment()
	cfg.applyDefaults()
	return cfg, nil
}

// loadEnvFiles loads the first .env-style file it finds. Existing process
// environment variables are never overridden (godotenv semantics).
func loadEnvFiles() {
	for _, path := range []string{".env", ".env.local"} {
		if err := godotenv.Load(path); err == nil {
			slog.Debug("Loaded environment variables", "path", path)
			return
		}
	}
}

// applyEnvironment fills credentials from the process environment when the
// config file did not provide them.
func (c *Config) applyEnvironment() {
	if strings.TrimSpace(c.Todoist.APIToken) == "" {
		c.Todoist.APIToken = os.Getenv(EnvTodoistToken)
	}
	if strings.TrimSpace(c.Habitify.APIKey) == "" {
		c.Habitify.APIKey = os.Getenv(EnvHabitifyKey)
	}
}

func (c *Config) applyDefaults() {
	if c.Todoist.BaseURL == "" {
		c.Todoist.BaseURL = "https://api.todoist.com"
	}
	if c.Habitify.BaseURL == "" {
		c.Habitify.BaseURL = "https://api.habitify.me"
	}
	if c.Sync.StateFile == "" {
		c.Sync.StateFile = ".sync_state.json"
	}
	if c.Sync.BootstrapWindow <= 0 {
		c.Sync.BootstrapWindow = Duration(60 * time.Minute)
	}
	if c.Daemon.Interval <= 0 {
		c.Daemon.Interval = Duration(15 * time.Minute)
	}
	if c.Daemon.Listen == "" {
		c.Daemon.Listen = ":8090"
	}
}

// Validate checks the preconditions that must hold before any network or
// state I/O. A missing credential is a fatal configuration error.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Todoist.APIToken) == "" {
		return syncerrors.ConfigError(
			fmt.Sprintf("todoist api token is required (set %s or todoist.api_token)", EnvTodoistToken))
	}
	if strings.TrimSpace(c.Habitify.APIKey) == "" {
		return syncerrors.ConfigError(
			fmt.Sprintf("habitify api key is required (set %s or habitify.api_key)", EnvHabitifyKey))
	}
	return nil
}
