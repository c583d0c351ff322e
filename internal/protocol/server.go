// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package protocol

import (
	"fmt"
	"strings"
	"unicode"
)

// Revision selects how database administration is expressed. Servers have
// used two shapes over time: dedicated REST endpoints and text instructions
// posted to the generic server endpoint.
type Revision int

const (
	// RevisionServerCommand posts {"command":"create database X"} to /server.
	// This is what current servers expect.
	RevisionServerCommand Revision = iota
	// RevisionLegacy posts to /create/X and /drop/X.
	RevisionLegacy
)

func (r Revision) String() string {
	switch r {
	case RevisionServerCommand:
		return "server-command"
	case RevisionLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("Revision(%d)", int(r))
	}
}

// ParseRevision maps a configuration value to a Revision.
func ParseRevision(s string) (Revision, error) {
	switch s {
	case "", "server-command":
		return RevisionServerCommand, nil
	case "legacy":
		return RevisionLegacy, nil
	default:
		return 0, fmt.Errorf("unknown protocol revision %q (want server-command or legacy)", s)
	}
}

// ServerCommand is the body of POST /server.
type ServerCommand struct {
	Command string `json:"command"`
}

func serverCommand(text string) Operation[GenericResponse] {
	return Operation[GenericResponse]{
		Path:    path("server"),
		Method:  MethodPost,
		Payload: ServerCommand{Command: text},
	}
}

// CheckDatabaseName rejects names that cannot be carried as a single word of
// a server command: empty names and names containing whitespace or control
// characters.
func CheckDatabaseName(db string) error {
	if db == "" {
		return fmt.Errorf("database name is empty")
	}
	if i := strings.IndexFunc(db, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }); i >= 0 {
		return fmt.Errorf("database name %q contains whitespace or control characters", db)
	}
	return nil
}

// CreateDatabase creates db using the given revision. Callers check the name
// with CheckDatabaseName first.
func CreateDatabase(db string, rev Revision) Operation[GenericResponse] {
	if rev == RevisionLegacy {
		return Operation[GenericResponse]{Path: path("create", db), Method: MethodPost}
	}
	return serverCommand("create database " + db)
}

// DropDatabase drops db using the given revision.
func DropDatabase(db string, rev Revision) Operation[GenericResponse] {
	if rev == RevisionLegacy {
		return Operation[GenericResponse]{Path: path("drop", db), Method: MethodPost}
	}
	return serverCommand("drop database " + db)
}
