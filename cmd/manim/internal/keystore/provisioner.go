// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package keystore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/manim-app/launcher/cmd/manim/internal/classify"
)

// Source identifies where an ensured key pair came from.
type Source int

const (
	// SourceEnvironment means both variables were set in the calling
	// environment; they take precedence for this run and nothing is written.
	SourceEnvironment Source = iota

	// SourceStore means a complete, valid persisted store was loaded.
	SourceStore

	// SourceGenerated means a fresh pair was generated and persisted.
	SourceGenerated
)

// String returns the source name for logs and JSON output.
func (s Source) String() string {
	switch s {
	case SourceEnvironment:
		return "environment"
	case SourceStore:
		return "store"
	default:
		return "generated"
	}
}

// EnsureResult is the outcome of key provisioning.
type EnsureResult struct {
	// Material is the sealed key pair. Never nil on success.
	Material *KeyMaterial

	// Source reports where the pair came from.
	Source Source
}

// Provisioner ensures a valid key pair exists, generating and persisting
// one when needed.
//
// # Idempotence
//
// A run that finds valid keys performs no writes. Only a run that finds
// neither environment variables nor a complete store generates, and it
// persists the new pair atomically before reporting success.
type Provisioner struct {
	// Store is the persisted key file. Required.
	Store *Store

	// DatabasePath, when non-empty, points at the application's encrypted
	// database. If that file exists while no key source does, provisioning
	// fails instead of regenerating: new keys cannot open existing data.
	DatabasePath string

	// ForceRegenerate skips environment and store reuse and persists a
	// fresh pair. Still refused while the database file exists: new keys
	// cannot open existing encrypted data.
	ForceRegenerate bool

	// Getenv resolves environment variables. Defaults to os.Getenv;
	// injectable for tests.
	Getenv func(string) string

	// Logger receives provisioning events. Secret values are never logged.
	Logger *slog.Logger
}

// NewProvisioner creates a Provisioner with production defaults.
func NewProvisioner(store *Store, databasePath string, logger *slog.Logger) *Provisioner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{
		Store:        store,
		DatabasePath: databasePath,
		Getenv:       os.Getenv,
		Logger:       logger,
	}
}

// EnsureKeys returns a valid key pair, from the environment, the store, or
// fresh generation, in that order of precedence.
//
// # Inputs
//
//   - ctx: honored between steps; file operations themselves are not
//     cancellable.
//
// # Outputs
//
//   - *EnsureResult: the sealed pair and its source
//   - error: category-tagged KeyParseFailed or KeyGenerationFailed
func (p *Provisioner) EnsureKeys(ctx context.Context) (*EnsureResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.ForceRegenerate {
		if p.databaseExists() {
			return nil, classify.Wrap(classify.CategoryKeyGenerationFailed,
				fmt.Errorf("%w: refusing to regenerate keys while database %s exists",
					ErrKeyGenerationFailed, p.DatabasePath))
		}
		p.Logger.Warn("forced key regeneration requested", "path", p.Store.Path)
		return p.generateLocked(ctx, true)
	}

	if m := p.fromEnvironment(); m != nil {
		p.Logger.Info("using keys from calling environment", "store_untouched", true)
		return &EnsureResult{Material: m, Source: SourceEnvironment}, nil
	}

	m, err := p.Store.Load()
	if err == nil {
		p.Logger.Info("loaded existing key store", "path", p.Store.Path)
		return &EnsureResult{Material: m, Source: SourceStore}, nil
	}
	if !errors.Is(err, ErrStoreNotFound) && !errors.Is(err, ErrStoreIncomplete) {
		return nil, err
	}
	if errors.Is(err, ErrStoreIncomplete) {
		p.Logger.Warn("key store incomplete, both secrets will be regenerated",
			"path", p.Store.Path)
	}

	// An encrypted database with no usable key source is unrecoverable by
	// regeneration; surface it instead of silently orphaning the data.
	if p.databaseExists() {
		return nil, classify.Wrap(classify.CategoryKeyParseFailed,
			fmt.Errorf("%w: restore %s or set %s and %s",
				ErrDatabaseWithoutKeys, p.Store.Path, DBKeyEnv, EncryptionKeyEnv))
	}

	return p.generateLocked(ctx, false)
}

// fromEnvironment returns sealed material when BOTH variables are set.
// A partial pair is invalid and ignored, per the key-material invariant.
func (p *Provisioner) fromEnvironment() *KeyMaterial {
	getenv := p.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	dbKey := getenv(DBKeyEnv)
	encKey := getenv(EncryptionKeyEnv)
	if dbKey == "" || encKey == "" {
		if dbKey != "" || encKey != "" {
			p.Logger.Warn("ignoring partial key pair in environment",
				"have_db_key", dbKey != "", "have_encryption_key", encKey != "")
		}
		return nil
	}
	m, err := NewKeyMaterial(dbKey, encKey)
	if err != nil {
		return nil
	}
	return m
}

// generateLocked generates and persists a fresh pair under the advisory
// provisioning lock. After acquiring the lock the store is re-checked: a
// concurrent launcher may have won the race, in which case its pair is
// reused rather than overwritten. A forced regeneration skips the re-check
// and overwrites deliberately.
func (p *Provisioner) generateLocked(ctx context.Context, force bool) (*EnsureResult, error) {
	lock := NewFileLock(p.Store.Path)
	if err := lock.Acquire(); err != nil {
		if errors.Is(err, ErrLockHeld) {
			return nil, classify.Wrap(classify.CategoryKeyGenerationFailed,
				fmt.Errorf("%w: %v", ErrKeyGenerationFailed, err))
		}
		return nil, classify.Wrap(classify.CategoryKeyGenerationFailed,
			fmt.Errorf("%w: acquiring provisioning lock: %v", ErrKeyGenerationFailed, err))
	}
	defer lock.Release()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !force {
		if m, err := p.Store.Load(); err == nil {
			p.Logger.Info("key store created by concurrent run, reusing it",
				"path", p.Store.Path)
			return &EnsureResult{Material: m, Source: SourceStore}, nil
		}
	}

	m, err := Generate()
	if err != nil {
		return nil, err
	}
	if err := p.Store.Write(m); err != nil {
		return nil, err
	}
	p.Logger.Info("generated and persisted new key pair", "path", p.Store.Path)
	return &EnsureResult{Material: m, Source: SourceGenerated}, nil
}

// databaseExists reports whether the configured database file is present.
func (p *Provisioner) databaseExists() bool {
	if p.DatabasePath == "" {
		return false
	}
	info, err := os.Stat(p.DatabasePath)
	return err == nil && !info.IsDir()
}
