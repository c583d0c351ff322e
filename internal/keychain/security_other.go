// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build !darwin

package keychain

import "errors"

var errNoSecurityCommand = errors.New("security command only exists on macOS")

// securityBackend is never constructed off macOS; NewManager falls through to
// the keyring library.
type securityBackend struct{}

func newSecurityBackend() (*securityBackend, error) {
	return nil, errNoSecurityCommand
}

func (s *securityBackend) Set(key, value string) error    { return errNoSecurityCommand }
func (s *securityBackend) Get(key string) (string, error) { return "", errNoSecurityCommand }
func (s *securityBackend) Delete(key string) error        { return errNoSecurityCommand }
