// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create <database>",
	Short: "Create a database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		c, err := s.client()
		if err != nil {
			return err
		}

		name := args[0]
		err = withSpinner("creating database "+name, func() error {
			_, err := c.DB(name).Create(cmd.Context())
			return err
		})
		if err != nil {
			return s.fail(err, "creating database "+name)
		}
		pterm.Success.Printfln("Database %s created", name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
}
