// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package keystore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMaterial(t *testing.T, dbKey, encKey string) *KeyMaterial {
	t.Helper()
	m, err := NewKeyMaterial(dbKey, encKey)
	require.NoError(t, err)
	return m
}

func revealPair(t *testing.T, m *KeyMaterial) (string, string) {
	t.Helper()
	var db, enc string
	require.NoError(t, m.Reveal(func(d, e string) error {
		// The revealed strings alias the sealed buffers, which Reveal wipes
		// when this closure returns; only copies may escape.
		db, enc = strings.Clone(d), strings.Clone(e)
		return nil
	}))
	return db, enc
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantName  string
		wantValue string
		wantOK    bool
	}{
		{"plain", "MANIM_DB_KEY='abc'", "MANIM_DB_KEY", "abc", true},
		{"export prefix", "export MANIM_DB_KEY='abc'", "MANIM_DB_KEY", "abc", true},
		{"powershell prefix", "$env:MANIM_DB_KEY='abc'", "MANIM_DB_KEY", "abc", true},
		{"double quotes", `MANIM_DB_KEY="abc"`, "MANIM_DB_KEY", "abc", true},
		{"unquoted", "MANIM_DB_KEY=abc", "MANIM_DB_KEY", "abc", true},
		{"surrounding whitespace", "  MANIM_DB_KEY = 'abc'  ", "MANIM_DB_KEY", "abc", true},
		{"comment", "# MANIM_DB_KEY='abc'", "", "", false},
		{"blank", "   ", "", "", false},
		{"no equals", "MANIM_DB_KEY", "", "", false},
		{"empty name", "='abc'", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, value, ok := ParseLine(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantName, name)
				assert.Equal(t, tt.wantValue, value)
			}
		})
	}
}

func TestRenderLineFormats(t *testing.T) {
	assert.Equal(t, "K='v'", RenderLine(FormatShell, "K", "v"))
	assert.Equal(t, "export K='v'", RenderLine(FormatShellExport, "K", "v"))
	assert.Equal(t, "$env:K='v'", RenderLine(FormatPowerShell, "K", "v"))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"":             FormatShell,
		"shell":        FormatShell,
		"shell-export": FormatShellExport,
		"powershell":   FormatPowerShell,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, "format %q", in)
	}
	_, err := ParseFormat("fish")
	assert.Error(t, err)
}

func TestExportParseRoundTrip(t *testing.T) {
	m := mustMaterial(t, "db-secret", "enc-secret")
	for _, f := range []Format{FormatShell, FormatShellExport, FormatPowerShell} {
		rendered, err := Render(m, f)
		require.NoError(t, err)

		values := map[string]string{}
		for _, line := range strings.Split(rendered, "\n") {
			if name, value, ok := ParseLine(line); ok {
				values[name] = value
			}
		}
		assert.Equal(t, "db-secret", values[DBKeyEnv], "format %v", f)
		assert.Equal(t, "enc-secret", values[EncryptionKeyEnv], "format %v", f)
	}
}

func TestStoreWriteLoadRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "runtime.env"))
	m := mustMaterial(t, "db-secret", "enc-secret")

	require.NoError(t, store.Write(m))

	loaded, err := store.Load()
	require.NoError(t, err)
	db, enc := revealPair(t, loaded)
	assert.Equal(t, "db-secret", db)
	assert.Equal(t, "enc-secret", enc)
}

func TestStoreWriteRestrictsPermissions(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "runtime.env"))
	require.NoError(t, store.Write(mustMaterial(t, "a", "b")))

	info, err := os.Stat(store.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStoreLoadMissing(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "runtime.env"))
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrStoreNotFound)
}

func TestStoreLoadIncomplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runtime.env")
	require.NoError(t, os.WriteFile(path, []byte("MANIM_DB_KEY='only-one'\n"), 0o600))

	_, err := NewStore(path).Load()
	assert.ErrorIs(t, err, ErrStoreIncomplete)
	assert.ErrorIs(t, err, ErrKeyParseFailed)
}

func TestStoreNeverPartiallyVisible(t *testing.T) {
	// A crash between temp-file write and rename leaves the previous store
	// untouched: the abandoned temp file must not be picked up by Load.
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "runtime.env"))
	require.NoError(t, store.Write(mustMaterial(t, "old-db", "old-enc")))

	// Simulate the crashed writer's leftovers.
	leftover := filepath.Join(dir, ".runtime.env.12345")
	require.NoError(t, os.WriteFile(leftover, []byte("MANIM_DB_KEY='half-written'\n"), 0o600))

	loaded, err := store.Load()
	require.NoError(t, err)
	db, enc := revealPair(t, loaded)
	assert.Equal(t, "old-db", db)
	assert.Equal(t, "old-enc", enc)
}

func TestStoreLoadAcceptsExportedFormats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runtime.env")
	content := "export MANIM_DB_KEY='db'\n$env:MANIM_ENCRYPTION_KEY='enc'\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	loaded, err := NewStore(path).Load()
	require.NoError(t, err)
	db, enc := revealPair(t, loaded)
	assert.Equal(t, "db", db)
	assert.Equal(t, "enc", enc)
}

func TestRevealedCopiesOutliveReveal(t *testing.T) {
	// Reveal destroys the locked buffers when the closure returns; the
	// copies revealPair takes must stay readable and stable afterwards.
	m := mustMaterial(t, "db-secret", "enc-secret")

	db1, enc1 := revealPair(t, m)
	db2, enc2 := revealPair(t, m)

	assert.Equal(t, "db-secret", db1)
	assert.Equal(t, "enc-secret", enc1)
	assert.Equal(t, db1, db2)
	assert.Equal(t, enc1, enc2)
}

func TestNewKeyMaterialRejectsPartialPair(t *testing.T) {
	for _, pair := range [][2]string{{"", ""}, {"db", ""}, {"", "enc"}} {
		_, err := NewKeyMaterial(pair[0], pair[1])
		assert.Error(t, err, "pair %q/%q", pair[0], pair[1])
		assert.True(t, errors.Is(err, ErrKeyParseFailed))
	}
}
