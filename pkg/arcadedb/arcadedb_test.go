// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package arcadedb

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"arcadedb/cli/pkg/rid"
)

type person struct {
	RID  rid.RecordID `json:"@rid"`
	Name string       `json:"name"`
}

func TestNewValidatesURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "default", url: "", want: DefaultURL},
		{name: "trailing slash", url: "http://db.local:2480/", want: "http://db.local:2480"},
		{name: "https", url: "https://db.example.com", want: "https://db.example.com"},
		{name: "missing scheme", url: "localhost:2480", wantErr: true},
		{name: "wrong scheme", url: "ftp://db.local", wantErr: true},
		{name: "unparseable", url: "http://[::1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.url)
			if tt.wantErr {
				if KindOf(err) != KindFormat {
					t.Fatalf("err = %v, want format error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if c.URL() != tt.want {
				t.Errorf("URL() = %q, want %q", c.URL(), tt.want)
			}
		})
	}
}

func TestCreateListDrop(t *testing.T) {
	ctx := context.Background()
	f := newFakeServer(t)
	c := f.client(t, WithBasicAuth("root", "playwithdata"))
	db := c.DB("scratch")

	res, err := db.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.Result != "ok" {
		t.Errorf("Create result = %q, want ok", res.Result)
	}
	if ok, err := db.Exists(ctx); err != nil || !ok {
		t.Fatalf("Exists after create = %v, %v", ok, err)
	}

	if _, err := db.Drop(ctx); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	dbs, err := c.Databases(ctx)
	if err != nil {
		t.Fatalf("Databases: %v", err)
	}
	if dbs.Contains("scratch") {
		t.Errorf("dropped database still listed: %v", dbs.Result)
	}

	reqs := f.Requests()
	if reqs[0].Path != "/api/v1/server" || reqs[0].Body["command"] != "create database scratch" {
		t.Errorf("create sent as %s %v", reqs[0].Path, reqs[0].Body)
	}
}

func TestCreateTwiceConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFakeServer(t)
	db := f.client(t).DB("movies")

	if _, err := db.Create(ctx); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := db.Create(ctx)
	se, ok := AsServerError(err)
	if !ok {
		t.Fatalf("second Create err = %v, want *ServerError", err)
	}
	if se.Detail != "Database 'movies' already exists" {
		t.Errorf("detail = %q", se.Detail)
	}
	if se.Status != http.StatusBadRequest {
		t.Errorf("status = %d", se.Status)
	}
	if KindOf(err) != "" {
		t.Errorf("server error has client kind %q", KindOf(err))
	}
}

func TestCreateDropRejectUnsafeNames(t *testing.T) {
	ctx := context.Background()
	f := newFakeServer(t, "movies")
	for _, rev := range []Revision{RevisionServerCommand, RevisionLegacy} {
		c := f.client(t, WithRevision(rev))
		for _, name := range []string{"x foo", "x\ndrop database movies", ""} {
			if _, err := c.DB(name).Create(ctx); KindOf(err) != KindFormat {
				t.Errorf("%v Create(%q) err = %v, want format error", rev, name, err)
			}
			if _, err := c.DB(name).Drop(ctx); KindOf(err) != KindFormat {
				t.Errorf("%v Drop(%q) err = %v, want format error", rev, name, err)
			}
		}
	}
	if reqs := f.Requests(); len(reqs) != 0 {
		t.Errorf("unsafe names reached the server: %+v", reqs)
	}
}

func TestLegacyRevision(t *testing.T) {
	ctx := context.Background()
	f := newFakeServer(t)
	db := f.client(t, WithRevision(RevisionLegacy)).DB("old")

	if _, err := db.Create(ctx); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := db.Drop(ctx); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	var paths []string
	for _, r := range f.Requests() {
		paths = append(paths, r.Path)
	}
	want := []string{"/api/v1/create/old", "/api/v1/drop/old"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestServerVersion(t *testing.T) {
	f := newFakeServer(t)
	v, err := f.client(t).ServerVersion(context.Background())
	if err != nil {
		t.Fatalf("ServerVersion: %v", err)
	}
	if v != "25.1.1-test" {
		t.Errorf("version = %q", v)
	}
}

func TestQueryAndCommandRouting(t *testing.T) {
	ctx := context.Background()
	f := newFakeServer(t, "movies")
	db := f.client(t).DB("movies")

	if _, err := db.Command("create vertex type Person").Exec(ctx); err != nil {
		t.Fatalf("command: %v", err)
	}
	if _, err := db.Query("select from Person").Exec(ctx); err != nil {
		t.Fatalf("query: %v", err)
	}
	reqs := f.Requests()
	if reqs[0].Path != "/api/v1/command/movies" || reqs[1].Path != "/api/v1/query/movies" {
		t.Errorf("paths = %q, %q", reqs[0].Path, reqs[1].Path)
	}
	for _, r := range reqs {
		if r.Body["language"] != "sql" {
			t.Errorf("language = %v, want sql", r.Body["language"])
		}
		if r.Session != "" {
			t.Errorf("sessionless statement carried session %q", r.Session)
		}
	}
}

func TestNonIdempotentQueryIsServerError(t *testing.T) {
	f := newFakeServer(t, "movies")
	db := f.client(t).DB("movies")

	_, err := Send[struct{}](context.Background(), db.Query("create vertex type Person"))
	se, ok := AsServerError(err)
	if !ok {
		t.Fatalf("err = %v, want *ServerError", err)
	}
	if se.Detail != "Query 'create vertex type Person' is not idempotent" {
		t.Errorf("detail = %q", se.Detail)
	}
}

func TestParamOverwrite(t *testing.T) {
	f := newFakeServer(t, "movies")
	db := f.client(t).DB("movies")

	rows, err := db.Query("select :name as name").
		Param("name", "first").
		Param("name", "second").
		Exec(context.Background())
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if diff := cmp.Diff([]map[string]any{{"name": "second"}}, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	sent := f.Requests()[0].Body["params"]
	if diff := cmp.Diff(map[string]any{"name": "second"}, sent); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestParamsMergeAndLanguage(t *testing.T) {
	f := newFakeServer(t, "movies")
	db := f.client(t).DB("movies")

	stmt := db.Query("select :title as title").
		Param("title", "old").
		Params(map[string]any{"title": "The Matrix", "released": 1999}).
		Language(Cypher)
	if _, err := stmt.Exec(context.Background()); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	body := f.Requests()[0].Body
	if body["language"] != "cypher" {
		t.Errorf("language = %v", body["language"])
	}
	want := map[string]any{"title": "The Matrix", "released": float64(1999)}
	if diff := cmp.Diff(want, body["params"]); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
	if stmt.IsCommand() || stmt.Text() != "select :title as title" {
		t.Errorf("statement = %v %q", stmt.IsCommand(), stmt.Text())
	}
}

func TestTypedRowsKeepServerOrder(t *testing.T) {
	ctx := context.Background()
	f := newFakeServer(t, "people")
	db := f.client(t).DB("people")

	if _, err := db.Command("create vertex type Person").Exec(ctx); err != nil {
		t.Fatalf("create type: %v", err)
	}
	for _, name := range []string{"Neo", "Trinity", "Morpheus"} {
		if _, err := db.Command("insert into Person set name = :name").Param("name", name).Exec(ctx); err != nil {
			t.Fatalf("insert %s: %v", name, err)
		}
	}

	got, err := Send[person](ctx, db.Query("select * from Person"))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	want := []person{
		{RID: rid.New(1, 0), Name: "Neo"},
		{RID: rid.New(1, 1), Name: "Trinity"},
		{RID: rid.New(1, 2), Name: "Morpheus"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	got, err = Send[person](ctx, db.Query("select from Person where name = :name").Param("name", "Trinity"))
	if err != nil {
		t.Fatalf("Send filtered: %v", err)
	}
	if len(got) != 1 || got[0].RID.String() != "#1:1" {
		t.Errorf("filtered rows = %+v", got)
	}
}

func TestRowDecodeFailure(t *testing.T) {
	f := newFakeServer(t, "movies")
	db := f.client(t).DB("movies")

	_, err := Send[int](context.Background(), db.Query("select :x as x").Param("x", 1))
	if KindOf(err) != KindDecode {
		t.Fatalf("err = %v, want decode error", err)
	}
}

func TestRowsKeepIntegerPrecision(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"result":[{"n":9007199254740993,"ratio":0.25}]}`)
	}))
	defer srv.Close()
	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	rows, err := c.DB("big").Query("select n, ratio from Counter").Exec(ctx)
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	want := []map[string]any{{"n": json.Number("9007199254740993"), "ratio": json.Number("0.25")}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	type counter struct {
		N     int64   `json:"n"`
		Ratio float64 `json:"ratio"`
	}
	typed, err := Send[counter](ctx, c.DB("big").Query("select n, ratio from Counter"))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(typed) != 1 || typed[0].N != 9007199254740993 || typed[0].Ratio != 0.25 {
		t.Errorf("typed rows = %+v", typed)
	}
}

func TestIsolatedTransaction(t *testing.T) {
	ctx := context.Background()
	f := newFakeServer(t, "tx")
	db := f.client(t).DB("tx")
	if _, err := db.Command("create vertex type Person").Exec(ctx); err != nil {
		t.Fatalf("create type: %v", err)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := tx.Command("insert into Person set name = 'John'").Exec(ctx); err != nil {
		t.Fatalf("insert: %v", err)
	}

	inside, err := tx.Query("select * from Person").Exec(ctx)
	if err != nil {
		t.Fatalf("select inside: %v", err)
	}
	if len(inside) != 1 {
		t.Errorf("rows inside transaction = %d, want 1", len(inside))
	}
	outside, err := db.Command("select * from Person").Exec(ctx)
	if err != nil {
		t.Fatalf("select outside: %v", err)
	}
	if len(outside) != 0 {
		t.Errorf("uncommitted rows visible outside = %d, want 0", len(outside))
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	after, err := db.Query("select * from Person").Exec(ctx)
	if err != nil {
		t.Fatalf("select after commit: %v", err)
	}
	if len(after) != 1 {
		t.Errorf("rows after commit = %d, want 1", len(after))
	}
	if tx.State() != TxCommitted {
		t.Errorf("state = %v, want committed", tx.State())
	}
}

func TestRollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	f := newFakeServer(t, "tx")
	db := f.client(t).DB("tx")
	if _, err := db.Command("create vertex type Person").Exec(ctx); err != nil {
		t.Fatalf("create type: %v", err)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := tx.Command("insert into Person set name = 'John'").Exec(ctx); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	rows, err := db.Command("select * from Person").Exec(ctx)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows after rollback = %d, want 0", len(rows))
	}
	if tx.State() != TxRolledBack {
		t.Errorf("state = %v, want rolled back", tx.State())
	}
}

func TestSessionAffinity(t *testing.T) {
	ctx := context.Background()
	f := newFakeServer(t, "tx")
	db := f.client(t).DB("tx")
	if _, err := db.Command("create vertex type Person").Exec(ctx); err != nil {
		t.Fatalf("create type: %v", err)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if tx.SessionID() == "" {
		t.Fatal("empty session id")
	}
	if _, err := tx.Command("insert into Person set name = 'A'").Exec(ctx); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := tx.Query("select from Person").Exec(ctx); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// create type and begin precede the session.
	for _, r := range f.Requests()[2:] {
		if r.Session != tx.SessionID() {
			t.Errorf("%s carried session %q, want %q", r.Path, r.Session, tx.SessionID())
		}
	}
}

func TestFinishedTransactionRejectsCalls(t *testing.T) {
	finishers := map[string]func(*Transaction, context.Context) error{
		"commit":   (*Transaction).Commit,
		"rollback": (*Transaction).Rollback,
	}
	for name, finish := range finishers {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := newFakeServer(t, "tx")
			tx, err := f.client(t).DB("tx").Begin(ctx)
			if err != nil {
				t.Fatalf("Begin: %v", err)
			}
			if err := finish(tx, ctx); err != nil {
				t.Fatalf("%s: %v", name, err)
			}
			sent := len(f.Requests())

			calls := map[string]error{
				"query":    func() error { _, err := tx.Query("select from Person").Exec(ctx); return err }(),
				"command":  func() error { _, err := tx.Command("select from Person").Exec(ctx); return err }(),
				"commit":   tx.Commit(ctx),
				"rollback": tx.Rollback(ctx),
			}
			for call, err := range calls {
				if !stderrors.Is(err, ErrTransactionClosed) {
					t.Errorf("%s after %s = %v, want ErrTransactionClosed", call, name, err)
				}
				if KindOf(err) != KindClosed {
					t.Errorf("%s kind = %q", call, KindOf(err))
				}
			}
			if got := len(f.Requests()); got != sent {
				t.Errorf("finished transaction sent %d more requests", got-sent)
			}
		})
	}
}

func TestBeginWithoutSessionHeader(t *testing.T) {
	f := newFakeServer(t, "tx")
	f.omitSession = true

	tx, err := f.client(t).DB("tx").Begin(context.Background())
	if tx != nil {
		t.Fatal("Begin returned a transaction without a session")
	}
	if KindOf(err) != KindProtocol {
		t.Fatalf("err = %v, want protocol error", err)
	}
}

func TestFailedCommitStaysActive(t *testing.T) {
	ctx := context.Background()
	f := newFakeServer(t, "tx")
	tx, err := f.client(t).DB("tx").Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	f.mu.Lock()
	f.failCommit = true
	f.mu.Unlock()

	if _, ok := AsServerError(tx.Commit(ctx)); !ok {
		t.Fatal("first commit did not surface the server error")
	}
	if tx.State() != TxActive {
		t.Fatalf("state after failed commit = %v, want active", tx.State())
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("retry Commit: %v", err)
	}
}

func TestWithTransaction(t *testing.T) {
	ctx := context.Background()
	f := newFakeServer(t, "tx")
	db := f.client(t).DB("tx")
	if _, err := db.Command("create vertex type Person").Exec(ctx); err != nil {
		t.Fatalf("create type: %v", err)
	}

	err := WithTransaction(ctx, db, func(tx *Transaction) error {
		_, err := tx.Command("insert into Person set name = 'kept'").Exec(ctx)
		return err
	})
	if err != nil {
		t.Fatalf("WithTransaction: %v", err)
	}

	boom := stderrors.New("boom")
	err = WithTransaction(ctx, db, func(tx *Transaction) error {
		if _, err := tx.Command("insert into Person set name = 'discarded'").Exec(ctx); err != nil {
			return err
		}
		return boom
	})
	if !stderrors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	got, err := Send[person](ctx, db.Query("select from Person"))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 1 || got[0].Name != "kept" {
		t.Errorf("rows = %+v, want only kept", got)
	}
}

func TestWithTransactionRollsBackFailedCommit(t *testing.T) {
	ctx := context.Background()
	f := newFakeServer(t, "tx")
	db := f.client(t).DB("tx")
	if _, err := db.Command("create vertex type Person").Exec(ctx); err != nil {
		t.Fatalf("create type: %v", err)
	}

	f.mu.Lock()
	f.failCommit = true
	f.mu.Unlock()

	var seen *Transaction
	err := WithTransaction(ctx, db, func(tx *Transaction) error {
		seen = tx
		_, err := tx.Command("insert into Person set name = 'lost'").Exec(ctx)
		return err
	})
	if _, ok := AsServerError(err); !ok {
		t.Fatalf("err = %v, want the commit's *ServerError", err)
	}
	if seen.State() != TxRolledBack {
		t.Errorf("state = %v, want rolled back", seen.State())
	}

	var paths []string
	for _, r := range f.Requests() {
		paths = append(paths, r.Path)
	}
	want := []string{"/api/v1/command/tx", "/api/v1/begin/tx", "/api/v1/command/tx", "/api/v1/commit/tx", "/api/v1/rollback/tx"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("request sequence mismatch (-want +got):\n%s", diff)
	}

	rows, err := db.Query("select from Person").Exec(ctx)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows after failed commit = %v, want none", rows)
	}
}

func TestOneStatementInFlightPerSession(t *testing.T) {
	var inflight, peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/begin/tx":
			w.Header().Set("arcadedb-session-id", "AS-1")
			w.WriteHeader(http.StatusNoContent)
		default:
			n := inflight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inflight.Add(-1)
			io.WriteString(w, `{"result":[]}`)
		}
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	tx, err := c.DB("tx").Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tx.Query("select 1").Exec(ctx); err != nil {
				t.Errorf("Exec: %v", err)
			}
		}()
	}
	wg.Wait()
	if peak.Load() != 1 {
		t.Errorf("peak in-flight statements = %d, want 1", peak.Load())
	}
}
