// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package arcadedb

import (
	"context"
	"encoding/json"

	"arcadedb/cli/internal/errors"
	"arcadedb/cli/internal/protocol"
	"arcadedb/cli/internal/transport"
)

// Database is a handle for one database on the server. Statements sent
// through it run outside any transaction.
type Database struct {
	client *Client
	name   string
}

func (d *Database) Name() string { return d.name }

// Client returns the client the handle was created from.
func (d *Database) Client() *Client { return d.client }

// Exists reports whether the database appears in the server's listing.
func (d *Database) Exists(ctx context.Context) (bool, error) {
	dbs, err := d.client.Databases(ctx)
	if err != nil {
		return false, err
	}
	return dbs.Contains(d.name), nil
}

// Create creates the database. Creating an existing database is a
// *ServerError. A name with whitespace or control characters is rejected
// before anything is sent.
func (d *Database) Create(ctx context.Context) (*GenericResponse, error) {
	if err := d.checkName(); err != nil {
		return nil, err
	}
	resp, err := transport.Send(ctx, d.client.http, protocol.CreateDatabase(d.name, d.client.revision))
	if err != nil {
		return nil, err
	}
	return &resp.Payload, nil
}

// Drop deletes the database and all its contents.
func (d *Database) Drop(ctx context.Context) (*GenericResponse, error) {
	if err := d.checkName(); err != nil {
		return nil, err
	}
	resp, err := transport.Send(ctx, d.client.http, protocol.DropDatabase(d.name, d.client.revision))
	if err != nil {
		return nil, err
	}
	return &resp.Payload, nil
}

func (d *Database) checkName() error {
	if err := protocol.CheckDatabaseName(d.name); err != nil {
		return errors.Wrap(errors.KindFormat, "database name", err)
	}
	return nil
}

// Query starts an idempotent statement.
func (d *Database) Query(text string) *Statement {
	return newStatement(d, protocol.KindQuery, text)
}

// Command starts a statement that may modify data.
func (d *Database) Command(text string) *Statement {
	return newStatement(d, protocol.KindCommand, text)
}

func (d *Database) dispatch(ctx context.Context, op protocol.Operation[protocol.ResultSet]) ([]json.RawMessage, error) {
	resp, err := transport.Send(ctx, d.client.http, op)
	if err != nil {
		return nil, err
	}
	return resp.Payload.Result, nil
}
