// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

)

// logoutCmd forgets the stored password for the configured server and user.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored password for the current server and user",
	Long: `The logout command deletes the password that login stored in the OS keychain
for the configured server URL and user. The config file is left in place.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		if s.cfg.User == "" {
			pterm.Info.Println("No user configured, nothing to remove")
			return nil
		}

		km, err := openKeychain()
		if err != nil {
			return err
		}
		if err := km.ClearPassword(s.cfg.URL, s.cfg.User); err != nil {
			return err
		}
		pterm.Success.Printfln("Removed stored password for %s@%s", s.cfg.User, s.cfg.URL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
