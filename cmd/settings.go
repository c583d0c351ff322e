// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"os"

	"github.com/pterm/pterm"

	"arcadedb/cli/internal/config"
	"arcadedb/cli/internal/endpoint"
	"arcadedb/cli/internal/httperrors"
	"arcadedb/cli/internal/keychain"
	"arcadedb/cli/internal/logging"
	"arcadedb/cli/internal/render"
	"arcadedb/cli/pkg/arcadedb"
)

// settings is the resolved connection and output configuration of one run:
// config file, then environment, then flags, then credentials embedded in
// the URL, then the keychain for a password nobody supplied.
type settings struct {
	cfg      config.Config
	password string
	// storedPassword is set when password was read from the keychain.
	storedPassword bool
	output         render.Format
	logger         *pterm.Logger
}

// openKeychain returns the keychain used by every command.
var openKeychain = keychain.GetManager

func loadSettings() (*settings, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	password, err := config.ApplyEnv(&cfg)
	if err != nil {
		return nil, err
	}
	applyFlags(&cfg, &password)

	ep, err := endpoint.Parse(cfg.URL)
	if err != nil {
		return nil, err
	}
	cfg.URL = ep.URL()
	if ep.User != "" {
		cfg.User, password = ep.User, ep.Password
	}

	stored := false
	if password == "" && cfg.User != "" {
		if km, err := openKeychain(); err == nil {
			pw, err := km.LoadPassword(cfg.URL, cfg.User)
			switch {
			case err == nil:
				password, stored = pw, true
			case !errors.Is(err, keychain.ErrNotFound):
				pterm.Warning.Println(logging.PresentError("reading password from keychain", err))
			}
		}
	}

	format, err := render.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}
	return &settings{
		cfg:            cfg,
		password:       password,
		storedPassword: stored,
		output:         render.Detect(format, os.Stdout),
		logger:         logging.NewLogger(cfg.LogLevel, flagVerbose, os.Stderr),
	}, nil
}

func applyFlags(cfg *config.Config, password *string) {
	if flagURL != "" {
		cfg.URL = flagURL
	}
	if flagUser != "" {
		cfg.User = flagUser
	}
	if flagPassword != "" {
		*password = flagPassword
	}
	if flagOutput != "" {
		cfg.Output = flagOutput
	}
	if flagTimeout > 0 {
		cfg.TimeoutSeconds = flagTimeout
	}
}

// client builds an ArcadeDB client from the settings. No request is made.
func (s *settings) client() (*arcadedb.Client, error) {
	rev, err := arcadedb.ParseRevision(s.cfg.Protocol)
	if err != nil {
		return nil, err
	}
	opts := []arcadedb.Option{
		arcadedb.WithRevision(rev),
		arcadedb.WithLogger(s.logger),
		arcadedb.WithUserAgent("arcadedb-cli/" + Version),
	}
	if s.cfg.TimeoutSeconds > 0 {
		opts = append(opts, arcadedb.WithTimeout(s.cfg.Timeout()))
	}
	if s.cfg.User != "" {
		opts = append(opts, arcadedb.WithBasicAuth(s.cfg.User, s.password))
	}
	return arcadedb.New(s.cfg.URL, opts...)
}

// fail presents err to the user and returns it marked as reported.
func (s *settings) fail(err error, context string) error {
	return reportedError{httperrors.Present(os.Stderr, err, context, s.cfg.URL)}
}
