// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain stores ArcadeDB passwords in the OS keychain/credential store.
// Passwords are keyed by server URL and user so that several servers can be
// configured side by side. Nothing secret is ever written to the config file.
//
// On macOS the native security command is preferred. Elsewhere the keyring
// library picks the platform store (Windows Credential Manager, Secret Service,
// KWallet or pass).
package keychain

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// Global keychain manager instance
var (
	globalManager *Manager
	mu            sync.Mutex
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "arcadedb"

// ErrNotFound is returned when no password is stored for a server/user pair.
var ErrNotFound = errors.New("no password stored in keychain")

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu      sync.RWMutex
	ring    keyring.Keyring
	backend keychainBackend
}

// keychainBackend defines the interface for keychain operations.
type keychainBackend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// NewManager creates a new keychain manager with the OS keyring initialized.
func NewManager() (*Manager, error) {
	if runtime.GOOS == "darwin" {
		backend, err := newSecurityBackend()
		if err == nil {
			return &Manager{backend: backend}, nil
		}
	}

	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// NewManagerWithRing wraps an already opened keyring.
func NewManagerWithRing(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// GetManager returns the global keychain manager instance.
// If initialization fails, it will retry on subsequent calls.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}
	m, err := NewManager()
	if err != nil {
		return nil, err
	}
	globalManager = m
	return globalManager, nil
}

func openRing() (keyring.Keyring, error) {
	var allowed []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowed = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowed = []keyring.BackendType{keyring.WinCredBackend}
	default:
		allowed = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowed,
		PassPrefix:      ServiceName,
		WinCredPrefix:   ServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("open keychain: %w", err)
	}
	return ring, nil
}

// Key returns the keychain entry name for a server/user pair.
func Key(serverURL, user string) string {
	return "password:" + user + "@" + strings.TrimRight(serverURL, "/")
}

// SavePassword stores the password for user on serverURL.
// This method is thread-safe.
func (m *Manager) SavePassword(serverURL, user, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := Key(serverURL, user)
	if m.backend != nil {
		return m.backend.Set(key, password)
	}
	return m.ring.Set(keyring.Item{Key: key, Data: []byte(password), Label: "ArcadeDB " + user})
}

// LoadPassword retrieves the password for user on serverURL. A missing entry
// is ErrNotFound.
// This method is thread-safe.
func (m *Manager) LoadPassword(serverURL, user string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := Key(serverURL, user)
	if m.backend != nil {
		pw, err := m.backend.Get(key)
		if err != nil {
			return "", err
		}
		if pw == "" {
			return "", ErrNotFound
		}
		return pw, nil
	}

	it, err := m.ring.Get(key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if len(it.Data) == 0 {
		return "", ErrNotFound
	}
	return string(it.Data), nil
}

// ClearPassword removes the stored password, if any.
// This method is thread-safe.
func (m *Manager) ClearPassword(serverURL, user string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := Key(serverURL, user)
	if m.backend != nil {
		return m.backend.Delete(key)
	}
	if err := m.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}
