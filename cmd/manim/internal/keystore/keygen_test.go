// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package keystore

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateProducesDecodableKeys(t *testing.T) {
	m, err := Generate()
	require.NoError(t, err)

	db, enc := revealPair(t, m)

	dbRaw, err := base64.RawURLEncoding.DecodeString(db)
	require.NoError(t, err, "db key must be unpadded base64url")
	assert.Len(t, dbRaw, dbKeyBytes)

	encRaw, err := base64.URLEncoding.DecodeString(enc)
	require.NoError(t, err, "encryption key must be padded base64url")
	assert.Len(t, encRaw, encryptionKeyBytes, "application requires a 32-byte AES-256 key")
}

func TestGenerateProducesDistinctSecrets(t *testing.T) {
	m, err := Generate()
	require.NoError(t, err)
	db, enc := revealPair(t, m)
	assert.NotEqual(t, db, enc)

	m2, err := Generate()
	require.NoError(t, err)
	db2, _ := revealPair(t, m2)
	assert.NotEqual(t, db, db2, "two generations must not repeat")
}

func TestGeneratedKeysAreSingleLineTokens(t *testing.T) {
	m, err := Generate()
	require.NoError(t, err)
	db, enc := revealPair(t, m)
	for _, v := range []string{db, enc} {
		assert.NotContains(t, v, "\n")
		assert.NotContains(t, v, "'", "value must survive NAME='value' quoting")
	}
}
