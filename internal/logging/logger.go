// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
)

// ParseLevel maps a config log level to a pterm level. Unknown values fall
// back to info.
func ParseLevel(s string) pterm.LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	case "off", "disabled", "none":
		return pterm.LogLevelDisabled
	default:
		return pterm.LogLevelInfo
	}
}

// NewLogger returns a logger writing to w (stderr when nil) at the given level.
// verbose forces debug.
func NewLogger(level string, verbose bool, w io.Writer) *pterm.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl := ParseLevel(level)
	if verbose && lvl > pterm.LogLevelDebug {
		lvl = pterm.LogLevelDebug
	}
	return pterm.DefaultLogger.WithLevel(lvl).WithWriter(w)
}
