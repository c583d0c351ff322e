// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package arcadedb

import (
	"net/http"
	"time"

	"github.com/pterm/pterm"

	"arcadedb/cli/internal/protocol"
	"arcadedb/cli/internal/transport"
)

// Revision selects how Create and Drop are sent to the server.
type Revision = protocol.Revision

const (
	// RevisionServerCommand sends "create database X" to /api/v1/server.
	RevisionServerCommand = protocol.RevisionServerCommand
	// RevisionLegacy uses the /api/v1/create/X and /api/v1/drop/X endpoints.
	RevisionLegacy = protocol.RevisionLegacy
)

// ParseRevision maps "server-command" (or "") and "legacy" to a Revision.
func ParseRevision(s string) (Revision, error) { return protocol.ParseRevision(s) }

// Option configures a Client.
type Option func(*options)

type options struct {
	transport []transport.Option
	revision  Revision
}

// WithBasicAuth authenticates every request with HTTP Basic credentials.
// Without it requests are sent unauthenticated.
func WithBasicAuth(user, password string) Option {
	return func(o *options) {
		o.transport = append(o.transport, transport.WithBasicAuth(user, password))
	}
}

// WithHTTPClient sends requests through c instead of a default client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.transport = append(o.transport, transport.WithHTTPClient(c))
	}
}

// WithTimeout bounds every round trip. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.transport = append(o.transport, transport.WithTimeout(d))
	}
}

// WithLogger logs one debug line per round trip. Credentials are masked.
func WithLogger(l *pterm.Logger) Option {
	return func(o *options) {
		o.transport = append(o.transport, transport.WithLogger(l))
	}
}

// WithUserAgent sets the User-Agent sent with every request.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.transport = append(o.transport, transport.WithUserAgent(ua))
	}
}

// WithRevision selects the create/drop wire form. The default is
// RevisionServerCommand.
func WithRevision(r Revision) Option {
	return func(o *options) { o.revision = r }
}
