// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package keystore

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/manim-app/launcher/cmd/manim/internal/classify"
)

// Key sizes. The database key is opaque passphrase material for SQLCipher's
// key derivation; the encryption key must decode to exactly 32 bytes because
// the application uses it directly for AES-256-GCM.
const (
	dbKeyBytes         = 48
	encryptionKeyBytes = 32
)

// Generate produces a fresh, cryptographically random key pair.
//
// # Encoding
//
//   - DbKey: 48 random bytes, base64url without padding
//   - EncryptionKey: 32 random bytes, base64url with padding (the
//     application decodes it and requires a 32-byte AES-256 key)
//
// Both render as single-line shell-safe tokens for the NAME='value' store
// format.
func Generate() (*KeyMaterial, error) {
	dbRaw := make([]byte, dbKeyBytes)
	if _, err := rand.Read(dbRaw); err != nil {
		return nil, classify.Wrap(classify.CategoryKeyGenerationFailed,
			fmt.Errorf("%w: reading random bytes: %v", ErrKeyGenerationFailed, err))
	}

	encRaw := make([]byte, encryptionKeyBytes)
	if _, err := rand.Read(encRaw); err != nil {
		return nil, classify.Wrap(classify.CategoryKeyGenerationFailed,
			fmt.Errorf("%w: reading random bytes: %v", ErrKeyGenerationFailed, err))
	}

	return NewKeyMaterial(
		base64.RawURLEncoding.EncodeToString(dbRaw),
		base64.URLEncoding.EncodeToString(encRaw),
	)
}
