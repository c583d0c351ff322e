// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package arcadedb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"

	"arcadedb/cli/internal/errors"
	"arcadedb/cli/internal/protocol"
)

// Language is the query language of a statement.
type Language = protocol.Language

const (
	SQL    = protocol.LanguageSQL
	Cypher = protocol.LanguageCypher
)

// ParseLanguage maps "sql" or "cypher" to a Language.
func ParseLanguage(s string) (Language, error) { return protocol.ParseLanguage(s) }

// Executor is where a statement runs: a *Database for auto-committed
// statements or a *Transaction for statements bound to its session.
type Executor interface {
	// Name is the database the statement targets.
	Name() string
	dispatch(ctx context.Context, op protocol.Operation[protocol.ResultSet]) ([]json.RawMessage, error)
}

// Statement accumulates the text, language and named parameters of one
// query or command. Builder methods modify the statement in place and return
// it for chaining. A Statement may be sent more than once.
type Statement struct {
	exec     Executor
	kind     protocol.StatementKind
	text     string
	language Language
	params   map[string]any
}

func newStatement(exec Executor, kind protocol.StatementKind, text string) *Statement {
	return &Statement{exec: exec, kind: kind, text: text, language: SQL, params: map[string]any{}}
}

// Param binds a named parameter. Binding the same name again replaces the
// previous value. The value must encode as JSON.
func (s *Statement) Param(name string, value any) *Statement {
	s.params[name] = value
	return s
}

// Params binds every entry of params, replacing existing bindings with the
// same names.
func (s *Statement) Params(params map[string]any) *Statement {
	maps.Copy(s.params, params)
	return s
}

// Language overrides the default SQL language.
func (s *Statement) Language(l Language) *Statement {
	s.language = l
	return s
}

// Text returns the statement text.
func (s *Statement) Text() string { return s.text }

// IsCommand reports whether the statement is sent to the command endpoint.
func (s *Statement) IsCommand() bool { return s.kind == protocol.KindCommand }

// Bound returns a copy of the bound parameters.
func (s *Statement) Bound() map[string]any { return maps.Clone(s.params) }

func (s *Statement) operation() protocol.Operation[protocol.ResultSet] {
	return protocol.RunStatement(s.exec.Name(), s.kind, protocol.StatementPayload{
		Command:  s.text,
		Language: s.language,
		Params:   maps.Clone(s.params),
	}, "")
}

// Send runs s and decodes every result row into T, in the order the server
// returned them. Numbers landing in interface values are json.Number, so
// 64-bit integers keep every digit.
func Send[T any](ctx context.Context, s *Statement) ([]T, error) {
	rows, err := s.exec.dispatch(ctx, s.operation())
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for i, raw := range rows {
		var v T
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			return nil, errors.Wrap(errors.KindDecode, fmt.Sprintf("%s row %d", s.kind, i), err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Exec runs s and returns the rows as generic JSON objects.
func (s *Statement) Exec(ctx context.Context) ([]map[string]any, error) {
	return Send[map[string]any](ctx, s)
}
