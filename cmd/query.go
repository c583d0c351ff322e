// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/spf13/cobra"

	"arcadedb/cli/internal/render"
	"arcadedb/cli/pkg/arcadedb"
)

var (
	stmtParams   []string
	stmtLanguage string
)

// queryCmd runs an idempotent statement. The server rejects anything that
// would modify the database.
var queryCmd = &cobra.Command{
	Use:   "query <database> <statement>",
	Short: "Run a read-only statement and print the rows",
	Example: `  arcadedb query movies "select from Movie where year > :year" -p year=1999
  arcadedb query movies "match (m:Movie) return m.title" --language cypher -o json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatement(cmd, args[0], args[1], false)
	},
}

// commandCmd runs a statement that may modify the database.
var commandCmd = &cobra.Command{
	Use:     "command <database> <statement>",
	Aliases: []string{"exec"},
	Short:   "Run a statement that may modify the database",
	Example: `  arcadedb command movies "create vertex type Movie"
  arcadedb command movies "insert into Movie set title = :title" -p title="The Matrix"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatement(cmd, args[0], args[1], true)
	},
}

func runStatement(cmd *cobra.Command, dbName, text string, mutating bool) error {
	params, err := parseParams(stmtParams)
	if err != nil {
		return err
	}
	lang, err := arcadedb.ParseLanguage(stmtLanguage)
	if err != nil {
		return err
	}
	s, err := loadSettings()
	if err != nil {
		return err
	}
	c, err := s.client()
	if err != nil {
		return err
	}

	db := c.DB(dbName)
	stmt := db.Query(text)
	if mutating {
		stmt = db.Command(text)
	}
	stmt.Language(lang).Params(params)

	var rows []map[string]any
	err = withSpinner("running statement", func() error {
		rows, err = stmt.Exec(cmd.Context())
		return err
	})
	if err != nil {
		return s.fail(err, "running statement on "+dbName)
	}
	return render.Rows(cmd.OutOrStdout(), s.output, rows)
}

func init() {
	for _, c := range []*cobra.Command{queryCmd, commandCmd} {
		c.Flags().StringArrayVarP(&stmtParams, "param", "p", nil, "Bind a parameter as name=value (value parsed as JSON when possible)")
		c.Flags().StringVar(&stmtLanguage, "language", "sql", "Statement language: sql or cypher")
		rootCmd.AddCommand(c)
	}
}
