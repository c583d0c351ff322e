// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package main is the entry point for the arcadedb CLI, a command-line client
// for the ArcadeDB HTTP API.
package main

import (
	"arcadedb/cli/cmd"
)

func main() {
	cmd.Execute()
}
