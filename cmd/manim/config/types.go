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
)

// Config is the security configuration loaded once per run from
// security.yaml. It is immutable for the duration of the run; every
// consumer receives it by parameter.
type Config struct {
	// Database configures the application data store.
	Database DatabaseConfig `yaml:"db"`

	// Encryption configures the at-rest encryption key source.
	Encryption EncryptionConfig `yaml:"encryption"`

	// Logging configures log retention.
	Logging LoggingConfig `yaml:"logging"`
}

type DatabaseConfig struct {
	// Path is the database file location.
	Path string `yaml:"path" validate:"required"`

	// KeyEnv names the environment variable carrying the database key.
	KeyEnv string `yaml:"key_env" validate:"required"`

	// AllowSQLiteFallback permits plain SQLite when the encrypted backend
	// is unavailable. Defaults to false: fail closed.
	AllowSQLiteFallback bool `yaml:"allow_sqlite_fallback"`
}

type EncryptionConfig struct {
	// KeyEnv names the environment variable carrying the field-level
	// encryption key.
	KeyEnv string `yaml:"key_env" validate:"required"`
}

type LoggingConfig struct {
	// RetentionDays is how long application logs are kept. 1095 days
	// (three years) when unset.
	RetentionDays int `yaml:"retention_days" validate:"gte=0"`
}

// DefaultRetentionDays applies when the file omits logging.retention_days.
const DefaultRetentionDays = 1095

// DefaultConfig returns the values an absent option falls back to. The file
// itself is still mandatory; these defaults fill unset fields only.
func DefaultConfig() Config {
	var dbPath string
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".manim", "manim.db")
	} else {
		dbPath = filepath.Join(".manim", "manim.db")
	}
	return Config{
		Database: DatabaseConfig{
			Path:                dbPath,
			KeyEnv:              "MANIM_DB_KEY",
			AllowSQLiteFallback: false,
		},
		Encryption: EncryptionConfig{
			KeyEnv: "MANIM_ENCRYPTION_KEY",
		},
		Logging: LoggingConfig{
			RetentionDays: DefaultRetentionDays,
		},
	}
}
