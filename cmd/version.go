// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	// Version holds the CLI version information.
	// This value is typically set at build time using -ldflags.
	Version = "0.0.0-dev"
)

// printVersion prints the CLI version and, when the server answers, its version.
func printVersion(cmd *cobra.Command) error {
	fmt.Fprintf(cmd.OutOrStdout(), "arcadedb %s\n", Version)

	s, err := loadSettings()
	if err != nil {
		return err
	}
	c, err := s.client()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	serverVersion, err := c.ServerVersion(ctx)
	if err != nil {
		serverVersion = "unreachable"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "server %s (%s)\n", serverVersion, c.URL())
	return nil
}
