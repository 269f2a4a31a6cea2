// Package config handles environment settings and the XDG configuration
// directory holding the persisted session.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"golang.org/x/oauth2"

	"taskdeck/internal/remote"
)

const (
	// AppName is the application directory name.
	AppName = "taskdeck"

	// SessionFile is the stored session filename.
	SessionFile = "session.json"
)

// Config holds configuration paths and settings.
type Config struct {
	// Endpoint is the backend base URL.
	Endpoint string `env:"TASKDECK_URL"`

	// AnonKey is the public access key sent with every backend request.
	AnonKey string `env:"TASKDECK_ANON_KEY"`

	// Dir is the configuration directory path.
	Dir string `env:"-"`

	// Debug enables debug logging.
	Debug bool `env:"-"`

	// Quiet suppresses informational output.
	Quiet bool `env:"-"`
}

// New creates a Config from the environment and the default or specified
// config directory. If configDir is empty, uses XDG_CONFIG_HOME/taskdeck
// or $HOME/.config/taskdeck.
func New(configDir string) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.Dir = configDir
	if cfg.Dir == "" {
		cfg.Dir = DefaultConfigDir()
	}
	return cfg, nil
}

// ValidateBackend checks that the backend endpoint settings are present.
// Commands that talk to the backend call this at startup.
func (c *Config) ValidateBackend() error {
	if c.Endpoint == "" {
		return fmt.Errorf("TASKDECK_URL not set")
	}
	if c.AnonKey == "" {
		return fmt.Errorf("TASKDECK_ANON_KEY not set")
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SessionPath returns the path to the stored session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasSession checks if a session file exists.
func (c *Config) HasSession() bool {
	_, err := os.Stat(c.SessionPath())
	return err == nil
}

// RemoveSession deletes the session file.
func (c *Config) RemoveSession() error {
	return os.Remove(c.SessionPath())
}

// StoredSession is the on-disk session: the token pair plus the owning
// user. The embedded oauth2.Token supplies the access_token,
// refresh_token and expiry fields and the Valid() expiry check.
type StoredSession struct {
	oauth2.Token
	User remote.User `json:"user"`
}

// ReadSession loads the stored session. Returns nil with no error when no
// session file exists.
func (c *Config) ReadSession() (*StoredSession, error) {
	data, err := os.ReadFile(c.SessionPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s StoredSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid session file: %w", err)
	}
	return &s, nil
}

// WriteSession saves the session with mode 0600.
func (c *Config) WriteSession(s *StoredSession) error {
	if err := c.EnsureDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.SessionPath(), data, 0600)
}
