// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package arcadedb

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"slices"
	"strings"
	"sync"
	"testing"
)

// fakeServer is an in-process stand-in for the ArcadeDB HTTP API. It knows
// just enough SQL to create vertex types, insert named records and select
// them back, and it buffers writes per session until commit.
type fakeServer struct {
	srv *httptest.Server

	mu       sync.Mutex
	dbs      map[string]*fakeDB
	sessions map[string]*fakeSession
	nextSID  int
	requests []recorded
	// omitSession makes begin answer without a session header.
	omitSession bool
	// failCommit makes the next commit answer with a server error.
	failCommit bool
}

type fakeDB struct {
	types   map[string]int32
	records map[string][]map[string]any
}

type fakeSession struct {
	db      string
	pending map[string][]map[string]any
}

type recorded struct {
	Method  string
	Path    string
	Session string
	Body    map[string]any
}

var (
	reCreateType = regexp.MustCompile(`(?i)^create vertex type (\w+)$`)
	reInsert     = regexp.MustCompile(`(?i)^insert into (\w+) set name = (?::(\w+)|'([^']*)')$`)
	reSelect     = regexp.MustCompile(`(?i)^select (?:\* )?from (\w+)(?: where name = :(\w+))?$`)
	reEcho       = regexp.MustCompile(`(?i)^select :(\w+) as (\w+)$`)
	reServerCmd  = regexp.MustCompile(`^(create|drop) database (\S+)$`)
)

func newFakeServer(t *testing.T, databases ...string) *fakeServer {
	t.Helper()
	f := &fakeServer{dbs: map[string]*fakeDB{}, sessions: map[string]*fakeSession{}}
	for _, name := range databases {
		f.dbs[name] = newFakeDB()
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func newFakeDB() *fakeDB {
	return &fakeDB{types: map[string]int32{}, records: map[string][]map[string]any{}}
}

func (f *fakeServer) URL() string { return f.srv.URL }

func (f *fakeServer) client(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := New(f.srv.URL, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// Requests returns the requests seen so far.
func (f *fakeServer) Requests() []recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.requests)
}

func (f *fakeServer) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec := recorded{Method: r.Method, Path: r.URL.Path, Session: r.Header.Get("arcadedb-session-id")}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&rec.Body)
	}
	f.requests = append(f.requests, rec)

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/v1/"), "/")
	action, db := parts[0], ""
	if len(parts) > 1 {
		db = parts[1]
	}

	switch {
	case action == "databases" && r.Method == http.MethodGet:
		names := make([]string, 0, len(f.dbs))
		for name := range f.dbs {
			names = append(names, name)
		}
		slices.Sort(names)
		writeJSON(w, http.StatusOK, map[string]any{"result": names, "user": "root", "version": "25.1.1-test"})
	case action == "server":
		cmd, _ := rec.Body["command"].(string)
		m := reServerCmd.FindStringSubmatch(cmd)
		if m == nil {
			writeError(w, http.StatusBadRequest, "Cannot execute command", "Unknown command "+cmd)
			return
		}
		f.admin(w, m[1], m[2])
	case action == "create" || action == "drop":
		f.admin(w, action, db)
	case action == "begin":
		if _, ok := f.dbs[db]; !ok {
			writeError(w, http.StatusBadRequest, "Database not found", fmt.Sprintf("Database '%s' is not available", db))
			return
		}
		if !f.omitSession {
			f.nextSID++
			sid := fmt.Sprintf("AS-%04d", f.nextSID)
			f.sessions[sid] = &fakeSession{db: db, pending: map[string][]map[string]any{}}
			w.Header().Set("arcadedb-session-id", sid)
		}
		w.WriteHeader(http.StatusNoContent)
	case action == "commit" || action == "rollback":
		s, ok := f.sessions[rec.Session]
		if !ok || s.db != db {
			writeError(w, http.StatusBadRequest, "Transaction not found", "Transaction not begun")
			return
		}
		if action == "commit" && f.failCommit {
			f.failCommit = false
			writeError(w, http.StatusServiceUnavailable, "Cannot commit transaction", "Concurrent modification")
			return
		}
		if action == "commit" {
			target := f.dbs[db]
			for typ, rows := range s.pending {
				target.records[typ] = append(target.records[typ], rows...)
			}
		}
		delete(f.sessions, rec.Session)
		w.WriteHeader(http.StatusNoContent)
	case action == "query" || action == "command":
		f.statement(w, action, db, rec)
	default:
		writeError(w, http.StatusNotFound, "Not found", r.URL.Path)
	}
}

func (f *fakeServer) admin(w http.ResponseWriter, action, db string) {
	_, exists := f.dbs[db]
	switch {
	case action == "create" && exists:
		writeError(w, http.StatusBadRequest, "Internal error", fmt.Sprintf("Database '%s' already exists", db))
	case action == "create":
		f.dbs[db] = newFakeDB()
		writeJSON(w, http.StatusOK, map[string]any{"result": "ok"})
	case !exists:
		writeError(w, http.StatusBadRequest, "Internal error", fmt.Sprintf("Database '%s' does not exist", db))
	default:
		delete(f.dbs, db)
		writeJSON(w, http.StatusOK, map[string]any{"result": "ok"})
	}
}

func (f *fakeServer) statement(w http.ResponseWriter, kind, dbName string, rec recorded) {
	db, ok := f.dbs[dbName]
	if !ok {
		writeError(w, http.StatusBadRequest, "Database not found", fmt.Sprintf("Database '%s' is not available", dbName))
		return
	}
	var session *fakeSession
	if rec.Session != "" {
		if session, ok = f.sessions[rec.Session]; !ok {
			writeError(w, http.StatusBadRequest, "Transaction not found", "Transaction not begun")
			return
		}
	}
	text, _ := rec.Body["command"].(string)
	params, _ := rec.Body["params"].(map[string]any)
	text = strings.TrimSpace(text)

	mutating := reCreateType.MatchString(text) || reInsert.MatchString(text)
	if mutating && kind == "query" {
		msg := fmt.Sprintf("Query '%s' is not idempotent", text)
		writeError(w, http.StatusBadRequest, "Cannot execute command", msg)
		return
	}

	switch {
	case reCreateType.MatchString(text):
		typ := reCreateType.FindStringSubmatch(text)[1]
		if _, ok := db.types[typ]; !ok {
			db.types[typ] = int32(len(db.types) + 1)
		}
		writeResult(w, map[string]any{"operation": "create vertex type", "typeName": typ})
	case reInsert.MatchString(text):
		m := reInsert.FindStringSubmatch(text)
		typ := m[1]
		bucket, ok := db.types[typ]
		if !ok {
			writeError(w, http.StatusBadRequest, "Error on command execution", fmt.Sprintf("Type with name '%s' was not found", typ))
			return
		}
		var name any = m[3]
		if m[2] != "" {
			name = params[m[2]]
		}
		position := len(db.records[typ])
		if session != nil {
			position += len(session.pending[typ])
		}
		row := map[string]any{"@rid": fmt.Sprintf("#%d:%d", bucket, position), "@type": typ, "name": name}
		if session != nil {
			session.pending[typ] = append(session.pending[typ], row)
		} else {
			db.records[typ] = append(db.records[typ], row)
		}
		writeResult(w, row)
	case reSelect.MatchString(text):
		m := reSelect.FindStringSubmatch(text)
		rows := slices.Clone(db.records[m[1]])
		if session != nil {
			rows = append(rows, session.pending[m[1]]...)
		}
		if m[2] != "" {
			rows = slices.DeleteFunc(rows, func(row map[string]any) bool { return row["name"] != params[m[2]] })
		}
		writeResult(w, rows...)
	case reEcho.MatchString(text):
		m := reEcho.FindStringSubmatch(text)
		writeResult(w, map[string]any{m[2]: params[m[1]]})
	default:
		writeError(w, http.StatusBadRequest, "Error on command execution", "Syntax error: "+text)
	}
}

func writeResult(w http.ResponseWriter, rows ...map[string]any) {
	if rows == nil {
		rows = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": rows})
}

func writeError(w http.ResponseWriter, status int, msg, detail string) {
	writeJSON(w, status, map[string]any{
		"error":     msg,
		"detail":    detail,
		"exception": "com.arcadedb.exception.CommandExecutionException",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
