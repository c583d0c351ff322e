// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package arcadedb

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"arcadedb/cli/internal/errors"
	"arcadedb/cli/internal/protocol"
	"arcadedb/cli/internal/transport"
)

// DefaultURL is used when New is given an empty URL.
const DefaultURL = "http://localhost:2480"

// DatabasesResponse lists the databases visible to the authenticated user.
type DatabasesResponse = protocol.DatabasesResponse

// GenericResponse acknowledges an administrative call.
type GenericResponse = protocol.GenericResponse

// Client talks to one ArcadeDB server. It is safe for concurrent use and
// holds no per-call state; Database handles share it by pointer.
type Client struct {
	http     *transport.HTTP
	revision Revision
}

// New creates a client for the server at rawURL (scheme and host, e.g.
// "http://localhost:2480"). No request is made.
func New(rawURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(rawURL) == "" {
		rawURL = DefaultURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(errors.KindFormat, "parse server url", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.New(errors.KindFormat, fmt.Sprintf("server url %q must be http(s)://host[:port]", rawURL))
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Client{
		http:     transport.New(u.Scheme+"://"+u.Host+strings.TrimRight(u.Path, "/"), o.transport...),
		revision: o.revision,
	}, nil
}

// URL returns the server root the client sends to.
func (c *Client) URL() string { return c.http.BaseURL() }

// User returns the Basic auth user, or "" for unauthenticated clients.
func (c *Client) User() string { return c.http.User() }

// Revision returns the create/drop wire form in use.
func (c *Client) Revision() Revision { return c.revision }

// Databases lists the databases visible to the authenticated user.
func (c *Client) Databases(ctx context.Context) (*DatabasesResponse, error) {
	resp, err := transport.Send(ctx, c.http, protocol.ListDatabases())
	if err != nil {
		return nil, err
	}
	return &resp.Payload, nil
}

// ServerVersion reports the version string the server includes in the
// database listing.
func (c *Client) ServerVersion(ctx context.Context) (string, error) {
	dbs, err := c.Databases(ctx)
	if err != nil {
		return "", err
	}
	return dbs.Version, nil
}

// DB returns a handle for the named database. The database need not exist.
func (c *Client) DB(name string) *Database {
	return &Database{client: c, name: name}
}
