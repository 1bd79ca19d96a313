// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package keystore

import (
	"fmt"

	"github.com/awnumar/memguard"

	"github.com/manim-app/launcher/cmd/manim/internal/classify"
)

// Environment variable names the application reads its secrets from. When
// both are set in the calling environment they take precedence over the
// persisted store for that run.
const (
	// DBKeyEnv carries the SQLCipher database key.
	DBKeyEnv = "MANIM_DB_KEY"

	// EncryptionKeyEnv carries the AES-256 field-encryption key.
	EncryptionKeyEnv = "MANIM_ENCRYPTION_KEY"
)

// KeyMaterial is the pair of secrets gating access to the encrypted data
// store. Values are sealed in memguard enclaves: encrypted in memory and
// decrypted only inside Reveal.
//
// # Invariant
//
// A KeyMaterial always holds both secrets; constructors reject partial
// pairs. There is no mutable state after construction.
//
// # Thread Safety
//
// KeyMaterial is immutable after creation and safe for concurrent use.
type KeyMaterial struct {
	dbKey         *memguard.Enclave
	encryptionKey *memguard.Enclave
}

// NewKeyMaterial seals a secret pair. Both values must be non-empty;
// a partial pair is invalid by the key-material invariant.
func NewKeyMaterial(dbKey, encryptionKey string) (*KeyMaterial, error) {
	if dbKey == "" || encryptionKey == "" {
		return nil, classify.Wrap(classify.CategoryKeyParseFailed,
			fmt.Errorf("%w: both secrets are required, got partial pair", ErrKeyParseFailed))
	}
	return &KeyMaterial{
		dbKey:         memguard.NewEnclave([]byte(dbKey)),
		encryptionKey: memguard.NewEnclave([]byte(encryptionKey)),
	}, nil
}

// Reveal opens both enclaves and hands the plaintext pair to fn. The locked
// buffers are destroyed when fn returns, so the plaintext's lifetime is the
// call; fn must not retain the strings beyond what it writes out (the store
// file, the child process environment).
func (m *KeyMaterial) Reveal(fn func(dbKey, encryptionKey string) error) error {
	db, err := m.dbKey.Open()
	if err != nil {
		return classify.Wrap(classify.CategoryKeyGenerationFailed,
			fmt.Errorf("%w: opening db key enclave: %v", ErrKeyGenerationFailed, err))
	}
	defer db.Destroy()

	enc, err := m.encryptionKey.Open()
	if err != nil {
		return classify.Wrap(classify.CategoryKeyGenerationFailed,
			fmt.Errorf("%w: opening encryption key enclave: %v", ErrKeyGenerationFailed, err))
	}
	defer enc.Destroy()

	return fn(db.String(), enc.String())
}

// Equal reports whether two materials hold the same pair. Used by tests and
// the idempotence checks; comparison happens inside enclave opens.
func (m *KeyMaterial) Equal(other *KeyMaterial) (bool, error) {
	var equal bool
	err := m.Reveal(func(db, enc string) error {
		return other.Reveal(func(odb, oenc string) error {
			equal = db == odb && enc == oenc
			return nil
		})
	})
	return equal, err
}
