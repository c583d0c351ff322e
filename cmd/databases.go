// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/spf13/cobra"

	"arcadedb/cli/internal/render"
	"arcadedb/cli/pkg/arcadedb"
)

var databasesCmd = &cobra.Command{
	Use:     "databases",
	Aliases: []string{"ls", "list"},
	Short:   "List the databases visible to the user",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		c, err := s.client()
		if err != nil {
			return err
		}

		var dbs *arcadedb.DatabasesResponse
		err = withSpinner("listing databases", func() error {
			dbs, err = c.Databases(cmd.Context())
			return err
		})
		if err != nil {
			return s.fail(err, "listing databases")
		}

		if s.output != render.Table {
			return render.Value(cmd.OutOrStdout(), s.output, dbs.Result)
		}
		rows := make([]map[string]any, 0, len(dbs.Result))
		for _, name := range dbs.Result {
			rows = append(rows, map[string]any{"database": name})
		}
		return render.Rows(cmd.OutOrStdout(), render.Table, rows)
	},
}

func init() {
	rootCmd.AddCommand(databasesCmd)
}
