// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build darwin

package keychain

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// exitItemNotFound is errSecItemNotFound as reported by security(1).
const exitItemNotFound = 44

// securityBackend stores generic passwords through the macOS security
// command. Entries use ServiceName as the service and the server/user key as
// the account, so Keychain Access lists them under "arcadedb".
type securityBackend struct {
	path string
}

func newSecurityBackend() (*securityBackend, error) {
	path, err := exec.LookPath("security")
	if err != nil {
		return nil, fmt.Errorf("security command not found: %w", err)
	}
	return &securityBackend{path: path}, nil
}

// Set replaces any existing entry for key.
func (s *securityBackend) Set(key, value string) error {
	_, err := s.run("add-generic-password", "-U", "-s", ServiceName, "-a", key, "-l", "ArcadeDB "+key, "-w", value)
	if err != nil {
		return fmt.Errorf("store %s in keychain: %w", key, err)
	}
	return nil
}

func (s *securityBackend) Get(key string) (string, error) {
	out, err := s.run("find-generic-password", "-s", ServiceName, "-a", key, "-w")
	if err != nil {
		if isNotFound(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read %s from keychain: %w", key, err)
	}
	return strings.TrimRight(out, "\n"), nil
}

// Delete is a no-op when the entry does not exist.
func (s *securityBackend) Delete(key string) error {
	if _, err := s.run("delete-generic-password", "-s", ServiceName, "-a", key); err != nil && !isNotFound(err) {
		return fmt.Errorf("delete %s from keychain: %w", key, err)
	}
	return nil
}

type securityError struct {
	code   int
	stderr string
	err    error
}

func (e *securityError) Error() string {
	if e.stderr == "" {
		return e.err.Error()
	}
	return e.stderr
}

func (e *securityError) Unwrap() error { return e.err }

func (s *securityBackend) run(args ...string) (string, error) {
	cmd := exec.Command(s.path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		se := &securityError{code: -1, stderr: strings.TrimSpace(stderr.String()), err: err}
		var exit *exec.ExitError
		if errors.As(err, &exit) {
			se.code = exit.ExitCode()
		}
		return "", se
	}
	return stdout.String(), nil
}

func isNotFound(err error) bool {
	var se *securityError
	if !errors.As(err, &se) {
		return false
	}
	return se.code == exitItemNotFound || strings.Contains(se.stderr, "could not be found")
}
