// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package endpoint normalizes the server address a user types into the base
// URL the client talks to. It accepts bare "host" and "host:port" forms, fills
// in the ArcadeDB default port, and pulls credentials out of the userinfo part
// so they never reach the transport or the logs as part of a URL.
package endpoint

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// DefaultPort is the ArcadeDB HTTP port, used when the address has no scheme
// and no port.
const DefaultPort = "2480"

// Endpoint is a parsed server address.
type Endpoint struct {
	Scheme   string
	Host     string
	Port     string
	Path     string
	User     string
	Password string
	Original string
}

// URL returns the base URL without credentials or a trailing slash.
func (e *Endpoint) URL() string {
	host := e.Host
	switch {
	case e.Port != "":
		host = net.JoinHostPort(e.Host, e.Port)
	case strings.Contains(host, ":"):
		host = "[" + host + "]"
	}
	return e.Scheme + "://" + host + e.Path
}

func (e *Endpoint) String() string { return e.URL() }

// ParseError describes an address that cannot be used.
type ParseError struct {
	Input  string
	Reason string
	Hint   string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid server address: %s\nHint: %s", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid server address: %s", e.Reason)
}

func newParseError(input, reason, hint string) *ParseError {
	return &ParseError{Input: input, Reason: reason, Hint: hint}
}

const formatHint = "use http://host:2480 or host:port"

// Parse parses raw into an Endpoint.
//
// Credentials are split off at the last '@' before the URL parser sees them,
// so passwords with unescaped '#', '/', '?' or '@' survive. Percent-encoded
// credentials are decoded.
func Parse(raw string) (*Endpoint, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return nil, newParseError(raw, "empty address", formatHint)
	}

	scheme, rest, hasScheme := strings.Cut(input, "://")
	if !hasScheme {
		scheme, rest = "http", input
	}
	scheme = strings.ToLower(scheme)
	if scheme != "http" && scheme != "https" {
		return nil, newParseError(raw, fmt.Sprintf("unsupported scheme %q", scheme), "ArcadeDB is reached over http or https")
	}

	ep := &Endpoint{Scheme: scheme, Original: raw}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		userinfo := rest[:at]
		rest = rest[at+1:]
		user, password, _ := strings.Cut(userinfo, ":")
		ep.User, ep.Password = unescape(user), unescape(password)
		if strings.TrimSpace(ep.User) == "" {
			return nil, newParseError(raw, "credentials without a user", "write user:password@host")
		}
	}

	u, err := url.Parse(scheme + "://" + rest)
	if err != nil {
		return nil, newParseError(raw, err.Error(), formatHint)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return nil, newParseError(raw, "query strings and fragments are not allowed", formatHint)
	}
	ep.Host = u.Hostname()
	if ep.Host == "" {
		return nil, newParseError(raw, "missing host", formatHint)
	}
	ep.Port = u.Port()
	if ep.Port != "" {
		if n, err := strconv.Atoi(ep.Port); err != nil || n < 1 || n > 65535 {
			return nil, newParseError(raw, fmt.Sprintf("invalid port %q", ep.Port), "ports are 1-65535")
		}
	} else if !hasScheme {
		ep.Port = DefaultPort
	}
	ep.Path = strings.TrimRight(u.EscapedPath(), "/")
	return ep, nil
}

// unescape decodes percent-encoding and keeps s as typed when it is not
// valid encoding.
func unescape(s string) string {
	if out, err := url.PathUnescape(s); err == nil {
		return out
	}
	return s
}
