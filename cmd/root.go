// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for ArcadeDB.
// It implements subcommands for database administration, ad-hoc queries and
// commands, transactional scripts and credential management using the Cobra
// CLI framework.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	showVersion  bool
	flagURL      string
	flagUser     string
	flagPassword string
	flagOutput   string
	flagTimeout  int
	flagVerbose  bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "arcadedb",
	Short: "ArcadeDB command-line client over the HTTP API",
	Long: `arcadedb talks to an ArcadeDB server over its HTTP/JSON API. It lists, creates
and drops databases, runs SQL or Cypher queries and commands with named
parameters, and executes statement scripts inside a single transaction.

Connection settings come from the config file, ARCADEDB_* environment variables
and the flags below, in increasing order of precedence. Run 'arcadedb login'
to store credentials.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			return printVersion(cmd)
		}
		return cmd.Help()
	},
}

// reportedError marks an error that was already presented to the user.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// Execute runs the CLI application.
// Interrupting cancels the in-flight request.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI and server version information")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagURL, "url", "", "Server URL (default from config or http://localhost:2480)")
	pf.StringVarP(&flagUser, "user", "u", "", "User name for HTTP Basic authentication")
	pf.StringVar(&flagPassword, "password", "", "Password (prefer 'arcadedb login' or ARCADEDB_PASSWORD)")
	pf.StringVarP(&flagOutput, "output", "o", "", "Output format: table, json or yaml (default table on a terminal, json otherwise)")
	pf.IntVar(&flagTimeout, "timeout", 0, "Request timeout in seconds")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Log every HTTP round trip")
}
