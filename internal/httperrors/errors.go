// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors provides user-friendly presentation of ArcadeDB client
// failures: server-reported errors, network faults and protocol violations.
package httperrors

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	"arcadedb/cli/internal/logging"
	"arcadedb/cli/pkg/arcadedb"
)

// Category is the user-facing class of a failure.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryServer
	CategoryAuth
	CategoryTimeout
	CategoryDNS
	CategoryRefused
	CategoryTLS
	CategoryUnavailable
	CategoryProtocol
	CategoryClosed
)

// Classify maps err to a Category.
func Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}
	if se, ok := arcadedb.AsServerError(err); ok {
		switch {
		case se.Status == 401 || se.Status == 403:
			return CategoryAuth
		case se.Status >= 502 && se.Status <= 504:
			return CategoryUnavailable
		default:
			return CategoryServer
		}
	}
	switch arcadedb.KindOf(err) {
	case arcadedb.KindClosed:
		return CategoryClosed
	case arcadedb.KindProtocol, arcadedb.KindDecode:
		if isServerError(err.Error()) {
			return CategoryUnavailable
		}
		if strings.Contains(err.Error(), "status 401") || strings.Contains(err.Error(), "status 403") {
			return CategoryAuth
		}
		return CategoryProtocol
	}
	switch {
	case isTimeoutError(err):
		return CategoryTimeout
	case isDNSError(err):
		return CategoryDNS
	case isConnectionRefusedError(err):
		return CategoryRefused
	case isSSLError(err):
		return CategoryTLS
	}
	return CategoryUnknown
}

// Present writes a formatted explanation of err to w and returns err wrapped
// with context. serverURL names the server in hints.
func Present(w io.Writer, err error, context, serverURL string) error {
	if err == nil {
		return nil
	}
	host := ExtractHostFromURL(serverURL)
	var b strings.Builder

	switch Classify(err) {
	case CategoryServer:
		se, _ := arcadedb.AsServerError(err)
		b.WriteString(pterm.Error.Sprintf("Server rejected the request while %s", context))
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "  %s\n", se.Message)
		if se.Detail != "" && se.Detail != se.Message {
			fmt.Fprintf(&b, "  %s\n", se.Detail)
		}
		if se.Exception != "" {
			b.WriteString(pterm.FgGray.Sprintf("  (%s, HTTP %d)", se.Exception, se.Status))
			b.WriteString("\n")
		}
	case CategoryAuth:
		fmt.Fprintf(&b, "🔑 Authentication failed while %s\n\n", context)
		b.WriteString("The server did not accept the credentials. Please check:\n")
		b.WriteString("  • The user name (--user or ARCADEDB_USER)\n")
		b.WriteString("  • The password (run 'arcadedb login' to store it again)\n")
	case CategoryTimeout:
		fmt.Fprintf(&b, "⏱️  Connection timeout while %s\n\n", context)
		fmt.Fprintf(&b, "%s took too long to respond. This could mean:\n", host)
		b.WriteString("  • The statement is expensive (raise --timeout)\n")
		b.WriteString("  • Server is under heavy load\n")
		b.WriteString("  • Network firewall is blocking the connection\n")
	case CategoryDNS:
		fmt.Fprintf(&b, "🌐 Cannot resolve server address while %s\n\n", context)
		fmt.Fprintf(&b, "Unable to look up %s. Please check the --url value and your DNS settings.\n", host)
	case CategoryRefused:
		fmt.Fprintf(&b, "🚫 Connection refused while %s\n\n", context)
		fmt.Fprintf(&b, "Nothing is accepting connections on %s. This could mean:\n", host)
		b.WriteString("  • The ArcadeDB server is not running\n")
		b.WriteString("  • Wrong host or port (the HTTP API listens on 2480 by default)\n")
		b.WriteString("  • Firewall is blocking the connection\n")
	case CategoryTLS:
		fmt.Fprintf(&b, "🔒 Secure connection failed while %s\n\n", context)
		b.WriteString("Cannot establish a TLS connection. Check the certificate of the server\n")
		b.WriteString("and your system clock, or use http:// for a plain-text server.\n")
	case CategoryUnavailable:
		fmt.Fprintf(&b, "⚠️  Server error while %s\n\n", context)
		fmt.Fprintf(&b, "%s answered with a gateway or availability error.\n", host)
		b.WriteString("Please try again in a few moments.\n")
	case CategoryProtocol:
		fmt.Fprintf(&b, "❓ Unexpected response while %s\n\n", context)
		fmt.Fprintf(&b, "%s did not answer like an ArcadeDB server. Is --url pointing at the HTTP API?\n", host)
	case CategoryClosed:
		fmt.Fprintf(&b, "❌ Transaction already finished while %s\n", context)
	default:
		fmt.Fprintf(&b, "❌ Cannot talk to ArcadeDB while %s\n", context)
	}

	if Classify(err) != CategoryServer {
		details := logging.Mask(err.Error())
		if len(details) > 200 {
			details = details[:200] + "..."
		}
		b.WriteString("\n")
		b.WriteString(pterm.FgGray.Sprint("Technical details: " + details))
		b.WriteString("\n")
	}

	fmt.Fprintln(w, b.String())
	return fmt.Errorf("%s: %w", context, err)
}

// isTimeoutError checks if the error is a timeout error.
func isTimeoutError(err error) bool {
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isDNSError checks if the error is a DNS resolution error.
func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// isConnectionRefusedError checks if the error is a connection refused error.
func isConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

// isSSLError checks if the error is an SSL/TLS error.
func isSSLError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

// isServerError checks if the error text names a gateway or availability status.
func isServerError(errStr string) bool {
	lower := strings.ToLower(errStr)
	return strings.Contains(lower, "status 502") ||
		strings.Contains(lower, "status 503") ||
		strings.Contains(lower, "status 504")
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
