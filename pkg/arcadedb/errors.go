// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package arcadedb

import (
	stderrors "errors"

	"arcadedb/cli/internal/errors"
	"arcadedb/cli/internal/protocol"
)

// ServerError is a failure reported by the server in its error payload.
type ServerError = protocol.ServerError

// Error is a client-side failure. Its Kind tells what went wrong.
type Error = errors.E

// ErrorKind is the category of an *Error.
type ErrorKind = errors.Kind

const (
	KindTransport = errors.KindTransport
	KindProtocol  = errors.KindProtocol
	KindDecode    = errors.KindDecode
	KindEncode    = errors.KindEncode
	KindFormat    = errors.KindFormat
	KindClosed    = errors.KindClosed
)

// ErrTransactionClosed is returned by every call on a committed or rolled back
// transaction.
var ErrTransactionClosed = errors.New(errors.KindClosed, "transaction already finished")

// AsServerError returns the server-reported failure in err's chain, if any.
func AsServerError(err error) (*ServerError, bool) {
	var se *ServerError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// KindOf returns the kind of a client-side failure, or "" when err is nil or
// a server-reported failure.
func KindOf(err error) ErrorKind { return errors.KindOf(err) }
