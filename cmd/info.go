// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"arcadedb/cli/internal/config"
	"arcadedb/cli/internal/logging"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the resolved connection settings",
	Long: `The info command prints the server URL, user, protocol revision and timeout
that other commands would use, with the password masked. It also asks the
server for its version.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
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
		version, err := c.ServerVersion(ctx)
		if err != nil {
			version = pterm.Red("unreachable")
		}

		path, err := config.Path()
		if err != nil {
			path = "(unavailable)"
		}
		user := s.cfg.User
		if user == "" {
			user = "(none)"
		}
		password := logging.MaskPassword(s.password)
		if password == "" {
			password = "(none)"
		}

		var b strings.Builder
		fmt.Fprintf(&b, "URL:      %s\n", logging.Mask(c.URL()))
		fmt.Fprintf(&b, "User:     %s\n", user)
		fmt.Fprintf(&b, "Password: %s\n", password)
		fmt.Fprintf(&b, "Protocol: %s\n", c.Revision())
		fmt.Fprintf(&b, "Timeout:  %s\n", s.cfg.Timeout())
		fmt.Fprintf(&b, "Config:   %s\n", path)
		fmt.Fprintf(&b, "Server:   %s", version)

		box := pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("ArcadeDB Connection")).
			WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).
			Sprint(b.String())
		fmt.Fprintln(cmd.OutOrStdout(), box)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
