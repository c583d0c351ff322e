// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package transport turns a protocol.Operation into exactly one HTTP round
// trip and classifies the outcome. A 2xx response decodes into the
// operation's success type, a non-2xx response decodes into a
// *protocol.ServerError, and anything that prevents a well-formed exchange is
// an *errors.E. The transport never retries and never caches.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"arcadedb/cli/internal/errors"
	"arcadedb/cli/internal/logging"
	"arcadedb/cli/internal/protocol"
)

// DefaultTimeout bounds a single round trip when no client is supplied.
const DefaultTimeout = 30 * time.Second

// maxErrorBody is how much of an unparseable error body is kept.
const maxErrorBody = 512

// HTTP sends operations to one ArcadeDB server.
// It is safe for concurrent use and is never mutated after New returns.
type HTTP struct {
	// baseURL is the server root, e.g. "http://localhost:2480"
	baseURL string
	// client is the underlying HTTP client
	client *http.Client
	// user and password are sent as HTTP Basic credentials when basic is set
	user     string
	password string
	basic    bool
	// userAgent is sent on every request
	userAgent string
	// log receives one debug line per round trip; nil disables logging
	log *pterm.Logger
}

// Option configures an HTTP transport.
type Option func(*HTTP)

// WithBasicAuth authenticates every request with HTTP Basic credentials.
func WithBasicAuth(user, password string) Option {
	return func(h *HTTP) {
		h.user, h.password, h.basic = user, password, true
	}
}

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTP) {
		if c != nil {
			h.client = c
		}
	}
}

// WithTimeout sets the per-request timeout. The supplied client, if any, is
// copied rather than modified.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTP) {
		c := *h.client
		c.Timeout = d
		h.client = &c
	}
}

// WithLogger sends one debug line per round trip to l, with credentials masked.
func WithLogger(l *pterm.Logger) Option { return func(h *HTTP) { h.log = l } }

// WithUserAgent replaces the default "arcadedb-go" User-Agent.
func WithUserAgent(ua string) Option { return func(h *HTTP) { h.userAgent = ua } }

// New creates a transport for baseURL. Options apply in order.
func New(baseURL string, opts ...Option) *HTTP {
	h := &HTTP{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: "arcadedb-go",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// BaseURL returns the server root without a trailing slash.
func (h *HTTP) BaseURL() string { return h.baseURL }

// User returns the Basic auth user, or "" when requests are unauthenticated.
func (h *HTTP) User() string {
	if !h.basic {
		return ""
	}
	return h.user
}

// Response is a successful exchange: the decoded payload and the response
// headers. Header lookups are case-insensitive through Header.Get.
type Response[R any] struct {
	Status  int
	Payload R
	Header  http.Header
}

// Send performs op against h and decodes the outcome.
func Send[R any](ctx context.Context, h *HTTP, op protocol.Operation[R]) (*Response[R], error) {
	target := h.baseURL + op.Path
	what := fmt.Sprintf("%s %s", op.Method, op.Path)

	var body io.Reader
	if op.Payload != nil {
		b, err := json.Marshal(op.Payload)
		if err != nil {
			return nil, errors.Wrap(errors.KindEncode, what, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, string(op.Method), target, body)
	if err != nil {
		return nil, errors.Wrap(errors.KindTransport, what, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	for k, v := range op.Header {
		req.Header.Set(k, v)
	}
	if h.basic {
		req.SetBasicAuth(h.user, h.password)
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		h.debug(op.Method, op.Path, 0, start, err)
		return nil, errors.Wrap(errors.KindTransport, what, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		h.debug(op.Method, op.Path, resp.StatusCode, start, err)
		return nil, errors.Wrap(errors.KindTransport, what+": read body", err)
	}
	h.debug(op.Method, op.Path, resp.StatusCode, start, nil)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, serverError(what, resp.StatusCode, raw)
	}

	out := &Response[R]{Status: resp.StatusCode, Header: resp.Header}
	if op.NoContent {
		return out, nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New(errors.KindDecode, what+": empty response body")
	}
	if err := json.Unmarshal(raw, &out.Payload); err != nil {
		return nil, errors.Wrap(errors.KindDecode, what, err)
	}
	return out, nil
}

// serverError decodes a non-2xx body. A body that is not an error payload is
// a protocol violation rather than a server-reported failure.
func serverError(what string, status int, raw []byte) error {
	var se protocol.ServerError
	if err := json.Unmarshal(raw, &se); err != nil || se.Message == "" {
		return errors.New(errors.KindProtocol,
			fmt.Sprintf("%s: unexpected status %d: %s", what, status, truncate(raw)))
	}
	se.Status = status
	return &se
}

func truncate(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	if s == "" {
		return "<empty body>"
	}
	return s
}

func (h *HTTP) debug(method protocol.Method, path string, status int, start time.Time, err error) {
	if h.log == nil {
		return
	}
	args := []any{
		"method", string(method),
		"url", logging.Mask(h.baseURL + path),
		"status", status,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	}
	if err != nil {
		args = append(args, "error", logging.Mask(err.Error()))
	}
	h.log.Debug("arcadedb round trip", h.log.Args(args...))
}
