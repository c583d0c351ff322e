// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines the generic failure type of the ArcadeDB client.
// Every failure that is not a server-reported error payload is an *E carrying a
// machine-readable Kind and the underlying cause, so callers can tell a dropped
// connection from a malformed response without string matching.
//
// Server-reported failures are a separate taxonomy (protocol.ServerError) and
// are never wrapped in an E.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// KindTransport covers DNS, connect, timeout, cancellation and body-read failures.
	KindTransport Kind = "transport"
	// KindProtocol means the server broke the protocol: an undecodable error
	// body or a missing required header.
	KindProtocol Kind = "protocol"
	// KindDecode means a success body or a result row did not match the declared shape.
	KindDecode Kind = "decode"
	// KindEncode means a request payload could not be serialized.
	KindEncode Kind = "encode"
	// KindFormat means a value had the wrong textual format.
	KindFormat Kind = "format"
	// KindClosed means a finished transaction was used again.
	KindClosed Kind = "closed"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

// Is matches another *E by kind when the target carries no message, so
// errors.Is(err, &E{Kind: KindClosed}) works as a category test.
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}
