// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "security.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileCompleteConfig(t *testing.T) {
	path := writeConfig(t, `
db:
  path: /data/manim.db
  key_env: MANIM_DB_KEY
  allow_sqlite_fallback: true
encryption:
  key_env: MANIM_ENCRYPTION_KEY
logging:
  retention_days: 30
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/manim.db", cfg.Database.Path)
	assert.True(t, cfg.Database.AllowSQLiteFallback)
	assert.Equal(t, "MANIM_ENCRYPTION_KEY", cfg.Encryption.KeyEnv)
	assert.Equal(t, 30, cfg.Logging.RetentionDays)
}

func TestLoadFileAppliesDefaults(t *testing.T) {
	// A sparse file keeps defaults for everything it omits.
	path := writeConfig(t, `
db:
  allow_sqlite_fallback: true
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.Database.AllowSQLiteFallback)
	assert.Equal(t, "MANIM_DB_KEY", cfg.Database.KeyEnv)
	assert.Equal(t, "MANIM_ENCRYPTION_KEY", cfg.Encryption.KeyEnv)
	assert.Equal(t, DefaultRetentionDays, cfg.Logging.RetentionDays)
	assert.NotEmpty(t, cfg.Database.Path)
}

func TestLoadFileFallbackDefaultsClosed(t *testing.T) {
	path := writeConfig(t, `
logging:
  retention_days: 7
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.False(t, cfg.Database.AllowSQLiteFallback)
}

func TestLoadFileIgnoresUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
db:
  allow_sqlite_fallback: true
future_section:
  something: else
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.Database.AllowSQLiteFallback)
}

func TestLoadFileMissingIsError(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadFileMalformedYAML(t *testing.T) {
	path := writeConfig(t, "db: [unclosed")

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestLoadFileRejectsNegativeRetention(t *testing.T) {
	path := writeConfig(t, `
logging:
  retention_days: -5
`)

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadFileRejectsBlankKeyEnv(t *testing.T) {
	// Explicitly blanking a required field is a validation error, not a
	// silent fall-through to the default.
	path := writeConfig(t, `
db:
  key_env: ""
`)

	// yaml leaves the defaulted value in place for an empty scalar only
	// when the key is absent; an explicit empty string overwrites it.
	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestLoadHonorsPathOverride(t *testing.T) {
	path := writeConfig(t, `
db:
  allow_sqlite_fallback: true
`)
	t.Setenv(PathEnv, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Database.AllowSQLiteFallback)
}

func TestLoadReportsSearchedPaths(t *testing.T) {
	t.Setenv(PathEnv, filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "absent.yaml")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "MANIM_DB_KEY", cfg.Database.KeyEnv)
	assert.Equal(t, "MANIM_ENCRYPTION_KEY", cfg.Encryption.KeyEnv)
	assert.False(t, cfg.Database.AllowSQLiteFallback)
	assert.Equal(t, 1095, cfg.Logging.RetentionDays)
	assert.Contains(t, cfg.Database.Path, ".manim")
}
