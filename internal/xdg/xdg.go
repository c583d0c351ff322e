// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package xdg resolves the configuration directory of the arcadedb CLI
// following the XDG Base Directory layout, with fallback to ~/.config when
// XDG_CONFIG_HOME is unset. ARCADEDB_CONFIG_DIR overrides both.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "arcadedb"

// EnvConfigDir names an explicit config directory, used as is.
const EnvConfigDir = "ARCADEDB_CONFIG_DIR"

// ConfigDir returns the config directory, creating it with private
// permissions (0700) if missing.
func ConfigDir() (string, error) {
	dir := os.Getenv(EnvConfigDir)
	if dir == "" {
		base := os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			base = filepath.Join(home, ".config")
		}
		dir = filepath.Join(base, appName)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
