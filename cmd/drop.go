// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"arcadedb/cli/internal/terminal"
)

var dropYes bool

var dropCmd = &cobra.Command{
	Use:   "drop <database>",
	Short: "Drop a database and all its contents",
	Long: `The drop command deletes a database on the server. It asks for confirmation
on a terminal; pass --yes to skip the prompt in scripts.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !dropYes {
			if !terminal.IsInteractive(os.Stdin) {
				return fmt.Errorf("refusing to drop %s without confirmation; pass --yes", name)
			}
			ok, err := pterm.DefaultInteractiveConfirm.
				WithDefaultText(fmt.Sprintf("Drop database %s? This cannot be undone", name)).
				Show()
			if err != nil {
				return err
			}
			if !ok {
				pterm.Info.Println("Nothing dropped")
				return nil
			}
		}

		s, err := loadSettings()
		if err != nil {
			return err
		}
		c, err := s.client()
		if err != nil {
			return err
		}
		err = withSpinner("dropping database "+name, func() error {
			_, err := c.DB(name).Drop(cmd.Context())
			return err
		})
		if err != nil {
			return s.fail(err, "dropping database "+name)
		}
		pterm.Success.Printfln("Database %s dropped", name)
		return nil
	},
}

func init() {
	dropCmd.Flags().BoolVarP(&dropYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(dropCmd)
}
