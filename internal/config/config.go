// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; the password goes to the OS keychain.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"arcadedb/cli/internal/xdg"
)

// Environment variables that override the file.
const (
	EnvURL      = "ARCADEDB_URL"
	EnvUser     = "ARCADEDB_USER"
	EnvPassword = "ARCADEDB_PASSWORD"
	EnvTimeout  = "ARCADEDB_TIMEOUT"
)

// Defaults applied when the file or a field is missing.
const (
	DefaultURL     = "http://localhost:2480"
	DefaultTimeout = 30
)

// Config holds non-sensitive CLI settings.
type Config struct {
	URL            string `json:"url"`
	User           string `json:"user"`
	LogLevel       string `json:"log_level"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	// Protocol is "server-command" or "legacy".
	Protocol string `json:"protocol"`
	// Output is "table", "json" or "yaml"; empty picks by terminal.
	Output string `json:"output"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		URL:            DefaultURL,
		LogLevel:       "info",
		TimeoutSeconds: DefaultTimeout,
		Protocol:       "server-command",
	}
}

// Timeout returns the request timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; missing file returns defaults. Empty fields are
// filled from Default so a partial file stays usable.
func Load() (Config, error) {
	c := Default()
	p, err := Path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	var fromFile Config
	if err := json.Unmarshal(data, &fromFile); err != nil {
		return c, fmt.Errorf("parse %s: %w", p, err)
	}
	return merge(c, fromFile), nil
}

func merge(base, over Config) Config {
	if over.URL != "" {
		base.URL = over.URL
	}
	if over.User != "" {
		base.User = over.User
	}
	if over.LogLevel != "" {
		base.LogLevel = over.LogLevel
	}
	if over.TimeoutSeconds > 0 {
		base.TimeoutSeconds = over.TimeoutSeconds
	}
	if over.Protocol != "" {
		base.Protocol = over.Protocol
	}
	if over.Output != "" {
		base.Output = over.Output
	}
	return base
}

// ApplyEnv overrides c with ARCADEDB_* environment variables and returns the
// password from ARCADEDB_PASSWORD, if set.
func ApplyEnv(c *Config) (password string, err error) {
	if v := os.Getenv(EnvURL); v != "" {
		c.URL = v
	}
	if v := os.Getenv(EnvUser); v != "" {
		c.User = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return "", fmt.Errorf("%s must be a positive number of seconds, got %q", EnvTimeout, v)
		}
		c.TimeoutSeconds = n
	}
	return os.Getenv(EnvPassword), nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
