// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package protocol describes the ArcadeDB HTTP API as a closed set of
// operations. Each constructor returns an Operation whose type parameter fixes
// the success payload shape, so the transport can stay generic over any
// operation while callers get a precisely typed result. The error payload shape
// is the same for every operation: ServerError.
//
// Operations are stateless descriptors. They own no network resources and can
// be built, inspected and discarded freely.
package protocol

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// BasePath prefixes every endpoint of the server API.
const BasePath = "/api/v1"

// SessionHeader carries the transaction session token in both directions.
const SessionHeader = "arcadedb-session-id"

// Method is the HTTP method of an operation.
type Method string

const (
	MethodGet  Method = "GET"
	MethodPost Method = "POST"
)

// Operation describes a single HTTP call whose success body decodes into R.
type Operation[R any] struct {
	// Path is the request path including BasePath.
	Path string
	// Method is GET or POST.
	Method Method
	// Payload is serialized as the JSON request body when non-nil.
	Payload any
	// Header holds extra request headers, e.g. the session token.
	Header map[string]string
	// NoContent marks lifecycle calls whose success body is ignored.
	NoContent bool
}

// Empty is the success payload of operations that return no body.
type Empty struct{}

// GenericResponse is the acknowledgement body of administrative calls.
type GenericResponse struct {
	Result string `json:"result"`
}

// DatabasesResponse is the body of GET /databases.
type DatabasesResponse struct {
	Result  []string `json:"result"`
	User    string   `json:"user"`
	Version string   `json:"version"`
}

// Contains reports whether name is among the listed databases.
func (r *DatabasesResponse) Contains(name string) bool {
	for _, n := range r.Result {
		if n == name {
			return true
		}
	}
	return false
}

// ResultSet is the body of query and command calls. Rows are kept raw so they
// can be decoded into the caller's row type one by one.
type ResultSet struct {
	Result []json.RawMessage `json:"result"`
}

// ServerError is the body of every non-2xx response.
type ServerError struct {
	// Status is the HTTP status the error arrived with. Not part of the body.
	Status    int    `json:"-"`
	Message   string `json:"error"`
	Detail    string `json:"detail,omitempty"`
	Exception string `json:"exception,omitempty"`
}

func (e *ServerError) Error() string {
	switch {
	case e.Detail != "" && e.Detail != e.Message:
		return fmt.Sprintf("arcadedb: %s: %s", e.Message, e.Detail)
	default:
		return "arcadedb: " + e.Message
	}
}

func path(parts ...string) string {
	p := BasePath
	for i, part := range parts {
		if i == 0 {
			p += "/" + part
			continue
		}
		p += "/" + url.PathEscape(part)
	}
	return p
}

func sessionHeader(sessionID string) map[string]string {
	if sessionID == "" {
		return nil
	}
	return map[string]string{SessionHeader: sessionID}
}

// ListDatabases lists the databases visible to the authenticated user.
func ListDatabases() Operation[DatabasesResponse] {
	return Operation[DatabasesResponse]{Path: path("databases"), Method: MethodGet}
}

// Begin opens a transaction on db. The server answers with the session token
// in the SessionHeader response header.
func Begin(db string) Operation[Empty] {
	return Operation[Empty]{Path: path("begin", db), Method: MethodPost, NoContent: true}
}

// Commit commits the transaction identified by sessionID.
func Commit(db, sessionID string) Operation[Empty] {
	return Operation[Empty]{
		Path:      path("commit", db),
		Method:    MethodPost,
		Header:    sessionHeader(sessionID),
		NoContent: true,
	}
}

// Rollback discards the transaction identified by sessionID.
func Rollback(db, sessionID string) Operation[Empty] {
	return Operation[Empty]{
		Path:      path("rollback", db),
		Method:    MethodPost,
		Header:    sessionHeader(sessionID),
		NoContent: true,
	}
}
