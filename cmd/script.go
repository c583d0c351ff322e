// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"arcadedb/cli/pkg/arcadedb"
)

var scriptLanguage string

var scriptCmd = &cobra.Command{
	Use:   "script <database> <file|->",
	Short: "Run a script of statements in one transaction",
	Long: `The script command reads statements separated by ';' from a file, or from
standard input when the file is '-', and runs each one as a command inside a
single transaction. The transaction commits when every statement succeeds and
rolls back at the first failure. Lines starting with '--' are ignored.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbName, file := args[0], args[1]

		var src []byte
		var err error
		if file == "-" {
			src, err = io.ReadAll(cmd.InOrStdin())
		} else {
			src, err = os.ReadFile(file)
		}
		if err != nil {
			return fmt.Errorf("reading script: %w", err)
		}
		statements := splitStatements(string(src))
		if len(statements) == 0 {
			pterm.Info.Println("Script contains no statements")
			return nil
		}

		lang, err := arcadedb.ParseLanguage(scriptLanguage)
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

		done := 0
		err = withSpinner(fmt.Sprintf("running %d statements", len(statements)), func() error {
			return arcadedb.WithTransaction(cmd.Context(), c.DB(dbName), func(tx *arcadedb.Transaction) error {
				for i, text := range statements {
					if _, err := tx.Command(text).Language(lang).Exec(cmd.Context()); err != nil {
						return fmt.Errorf("statement %d: %w", i+1, err)
					}
					done++
				}
				return nil
			})
		})
		if err != nil {
			if done < len(statements) {
				pterm.Warning.Printfln("Rolled back after %d of %d statements", done, len(statements))
			} else {
				pterm.Warning.Println("Commit failed, transaction rolled back")
			}
			return s.fail(err, "running script on "+dbName)
		}
		pterm.Success.Printfln("Committed %d statements", done)
		return nil
	},
}

func init() {
	scriptCmd.Flags().StringVar(&scriptLanguage, "language", "sql", "Statement language: sql or cypher")
	rootCmd.AddCommand(scriptCmd)
}
