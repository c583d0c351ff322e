// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package arcadedb

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"

	"arcadedb/cli/internal/errors"
	"arcadedb/cli/internal/protocol"
	"arcadedb/cli/internal/transport"
)

// TxState is the lifecycle state of a Transaction.
type TxState int

const (
	TxActive TxState = iota
	TxCommitted
	TxRolledBack
)

func (s TxState) String() string {
	switch s {
	case TxActive:
		return "active"
	case TxCommitted:
		return "committed"
	case TxRolledBack:
		return "rolled back"
	default:
		return fmt.Sprintf("TxState(%d)", int(s))
	}
}

// Transaction is an open server-side session on one database. Statements
// built from it carry the session token, so their effects stay invisible to
// other callers until Commit.
//
// Calls on one Transaction are serialized: at most one statement is in flight
// per session. After Commit or Rollback succeeds every method returns
// ErrTransactionClosed. A failed Commit or Rollback leaves the transaction
// active so the caller can retry or roll back.
type Transaction struct {
	db        *Database
	sessionID string

	mu    sync.Mutex
	state TxState
}

// Begin opens a transaction. The server must answer with a session token.
func (d *Database) Begin(ctx context.Context) (*Transaction, error) {
	resp, err := transport.Send(ctx, d.client.http, protocol.Begin(d.name))
	if err != nil {
		return nil, err
	}
	sid := resp.Header.Get(protocol.SessionHeader)
	if sid == "" {
		return nil, errors.New(errors.KindProtocol,
			fmt.Sprintf("begin %s: response has no %s header", d.name, protocol.SessionHeader))
	}
	return &Transaction{db: d, sessionID: sid}, nil
}

// Name returns the database the transaction is open on.
func (t *Transaction) Name() string { return t.db.name }

// Database returns the handle the transaction was started from.
func (t *Transaction) Database() *Database { return t.db }

// SessionID returns the server session token.
func (t *Transaction) SessionID() string { return t.sessionID }

// State returns the lifecycle state. It waits for an in-flight call.
func (t *Transaction) State() TxState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Query starts an idempotent statement inside the transaction.
func (t *Transaction) Query(text string) *Statement {
	return newStatement(t, protocol.KindQuery, text)
}

// Command starts a statement inside the transaction that may modify data.
func (t *Transaction) Command(text string) *Statement {
	return newStatement(t, protocol.KindCommand, text)
}

func (t *Transaction) dispatch(ctx context.Context, op protocol.Operation[protocol.ResultSet]) ([]json.RawMessage, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TxActive {
		return nil, ErrTransactionClosed
	}

	op.Header = map[string]string{protocol.SessionHeader: t.sessionID}
	resp, err := transport.Send(ctx, t.db.client.http, op)
	if err != nil {
		return nil, err
	}
	return resp.Payload.Result, nil
}

// Commit makes the transaction's changes durable and visible.
func (t *Transaction) Commit(ctx context.Context) error {
	return t.finish(ctx, protocol.Commit(t.db.name, t.sessionID), TxCommitted)
}

// Rollback discards the transaction's changes.
func (t *Transaction) Rollback(ctx context.Context) error {
	return t.finish(ctx, protocol.Rollback(t.db.name, t.sessionID), TxRolledBack)
}

func (t *Transaction) finish(ctx context.Context, op protocol.Operation[protocol.Empty], next TxState) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TxActive {
		return ErrTransactionClosed
	}
	if _, err := transport.Send(ctx, t.db.client.http, op); err != nil {
		return err
	}
	t.state = next
	return nil
}

// WithTransaction runs fn inside a new transaction on db. The transaction is
// committed when fn returns nil and rolled back otherwise. A failed commit is
// also followed by a rollback, so the session never outlives the call; a
// rollback failure is joined to the original error.
func WithTransaction(ctx context.Context, db *Database, fn func(tx *Transaction) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return abort(ctx, tx, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return abort(ctx, tx, err)
	}
	return nil
}

func abort(ctx context.Context, tx *Transaction, cause error) error {
	if rbErr := tx.Rollback(ctx); rbErr != nil && !stderrors.Is(rbErr, ErrTransactionClosed) {
		return stderrors.Join(cause, fmt.Errorf("rollback: %w", rbErr))
	}
	return cause
}
