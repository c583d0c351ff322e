// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package arcadedb is a typed client for the ArcadeDB HTTP API.
//
// A Client addresses one server. Client.DB returns a Database handle through
// which statements are built and sent:
//
//	c, err := arcadedb.New("http://localhost:2480", arcadedb.WithBasicAuth("root", "secret"))
//	movies, err := arcadedb.Send[Movie](ctx, c.DB("movies").
//		Query("select from Movie where title = :title").
//		Param("title", "The Matrix"))
//
// Statements sent through a Database are auto-committed by the server.
// Database.Begin opens a server-side session; statements built from the
// returned Transaction carry its session token until Commit or Rollback.
//
// Failures come in two shapes. Errors the server reports in its error payload
// are *ServerError. Everything else (network faults, malformed responses,
// misuse of a finished transaction) is *Error with a Kind.
package arcadedb
