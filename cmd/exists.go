// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var existsCmd = &cobra.Command{
	Use:   "exists <database>",
	Short: "Report whether a database exists",
	Long: `The exists command prints true or false. It exits with status 1 when the
database does not exist, so it can be used in shell conditions.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		c, err := s.client()
		if err != nil {
			return err
		}
		ok, err := c.DB(args[0]).Exists(cmd.Context())
		if err != nil {
			return s.fail(err, "checking database "+args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), ok)
		if !ok {
			return reportedError{fmt.Errorf("database %s does not exist", args[0])}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(existsCmd)
}
