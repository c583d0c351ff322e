// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package protocol

import "fmt"

// StatementKind selects the endpoint a statement is posted to. Queries are
// expected to be idempotent; the server rejects mutating statements sent as
// queries. Commands may mutate.
type StatementKind int

const (
	KindQuery StatementKind = iota
	KindCommand
)

func (k StatementKind) String() string {
	switch k {
	case KindQuery:
		return "query"
	case KindCommand:
		return "command"
	default:
		return fmt.Sprintf("StatementKind(%d)", int(k))
	}
}

// Language is the query language of a statement as named on the wire.
type Language string

const (
	LanguageSQL    Language = "sql"
	LanguageCypher Language = "cypher"
)

// ParseLanguage maps a user-supplied name to a Language.
func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case LanguageSQL, "SQL", "":
		return LanguageSQL, nil
	case LanguageCypher, "Cypher", "CYPHER":
		return LanguageCypher, nil
	default:
		return "", fmt.Errorf("unknown language %q (want sql or cypher)", s)
	}
}

// StatementPayload is the JSON body of query and command calls.
type StatementPayload struct {
	Command  string         `json:"command"`
	Language Language       `json:"language"`
	Params   map[string]any `json:"params"`
}

// RunStatement posts payload to the query or command endpoint of db. A
// non-empty sessionID binds the call to an open transaction.
func RunStatement(db string, kind StatementKind, payload StatementPayload, sessionID string) Operation[ResultSet] {
	if payload.Params == nil {
		payload.Params = map[string]any{}
	}
	if payload.Language == "" {
		payload.Language = LanguageSQL
	}
	return Operation[ResultSet]{
		Path:    path(kind.String(), db),
		Method:  MethodPost,
		Payload: payload,
		Header:  sessionHeader(sessionID),
	}
}
