// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package keystore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manim-app/launcher/cmd/manim/internal/classify"
)

// -----------------------------------------------------------------------------
// Export formats
// -----------------------------------------------------------------------------

// Format selects how key assignments are rendered for export.
type Format int

const (
	// FormatShell renders NAME='value', the persisted store format.
	FormatShell Format = iota

	// FormatShellExport renders export NAME='value' for sourcing into a
	// POSIX shell.
	FormatShellExport

	// FormatPowerShell renders $env:NAME='value'.
	FormatPowerShell
)

// ParseFormat maps a CLI flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "shell", "":
		return FormatShell, nil
	case "shell-export":
		return FormatShellExport, nil
	case "powershell":
		return FormatPowerShell, nil
	default:
		return FormatShell, fmt.Errorf("unknown key format %q (want shell, shell-export, or powershell)", s)
	}
}

// RenderLine renders one key assignment in the given format.
func RenderLine(f Format, name, value string) string {
	switch f {
	case FormatShellExport:
		return fmt.Sprintf("export %s='%s'", name, value)
	case FormatPowerShell:
		return fmt.Sprintf("$env:%s='%s'", name, value)
	default:
		return fmt.Sprintf("%s='%s'", name, value)
	}
}

// -----------------------------------------------------------------------------
// Line parsing
// -----------------------------------------------------------------------------

// ParseLine parses one key assignment line. Accepts the plain store format
// plus the shell-export and PowerShell prefixes, so a store written in any
// export format still loads. Blank lines and # comments yield ok=false.
func ParseLine(raw string) (name, value string, ok bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}

	if strings.HasPrefix(line, "$env:") {
		line = line[len("$env:"):]
	} else if strings.HasPrefix(line, "export ") {
		line = line[len("export "):]
	}

	eq := strings.Index(line, "=")
	if eq < 0 {
		return "", "", false
	}

	name = strings.TrimSpace(line[:eq])
	value = strings.TrimSpace(line[eq+1:])
	if name == "" {
		return "", "", false
	}

	if len(value) >= 2 {
		if (value[0] == '\'' && value[len(value)-1] == '\'') ||
			(value[0] == '"' && value[len(value)-1] == '"') {
			value = value[1 : len(value)-1]
		}
	}
	return name, value, true
}

// -----------------------------------------------------------------------------
// Store
// -----------------------------------------------------------------------------

// storeFileMode is owner read/write only. The store holds raw secrets.
const storeFileMode = 0o600

// Store is the persisted key file: one NAME='value' entry per line, owned
// exclusively by the provisioning process.
//
// # Lifecycle
//
// Absent → created on first successful key generation → read thereafter;
// regenerated only when invalid or incomplete.
type Store struct {
	// Path is the absolute location of the key file.
	Path string
}

// NewStore creates a Store handle for the given path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// DefaultStorePath resolves the per-user store location, ~/.manim/runtime.env.
func DefaultStorePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".manim", "runtime.env"), nil
}

// Load reads and validates the store.
//
// # Outputs
//
//   - *KeyMaterial: the sealed pair when the store is complete
//   - error: ErrStoreNotFound when the file is absent, ErrStoreIncomplete
//     when it holds fewer than both secrets, ErrKeyParseFailed when the
//     file cannot be read. All are category-tagged KeyParseFailed except
//     the not-found case, which is a normal first-run condition.
func (s *Store) Load() (*KeyMaterial, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return nil, ErrStoreNotFound
	}
	if err != nil {
		return nil, classify.Wrap(classify.CategoryKeyParseFailed,
			fmt.Errorf("%w: reading %s: %v", ErrKeyParseFailed, s.Path, err))
	}

	values := map[string]string{}
	for _, raw := range strings.Split(string(data), "\n") {
		if name, value, ok := ParseLine(raw); ok {
			values[name] = value
		}
	}

	dbKey := values[DBKeyEnv]
	encKey := values[EncryptionKeyEnv]
	if dbKey == "" || encKey == "" {
		return nil, classify.Wrap(classify.CategoryKeyParseFailed,
			fmt.Errorf("%w: %w: %s", ErrKeyParseFailed, ErrStoreIncomplete, s.Path))
	}
	return NewKeyMaterial(dbKey, encKey)
}

// Write persists the pair atomically with owner-only permission.
//
// # Atomicity
//
// The content is written to a temporary file in the store's directory and
// renamed into place. A crash between the two steps leaves either no store
// or the previous valid store, never a file with only one secret.
func (s *Store) Write(m *KeyMaterial) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return classify.Wrap(classify.CategoryKeyGenerationFailed,
			fmt.Errorf("%w: creating %s: %v", ErrKeyGenerationFailed, dir, err))
	}

	return m.Reveal(func(dbKey, encKey string) error {
		tmp, err := os.CreateTemp(dir, ".runtime.env.*")
		if err != nil {
			return classify.Wrap(classify.CategoryKeyGenerationFailed,
				fmt.Errorf("%w: creating temp store: %v", ErrKeyGenerationFailed, err))
		}
		tmpPath := tmp.Name()
		defer os.Remove(tmpPath) // no-op after a successful rename

		// Restrict before content hits the disk.
		if err := tmp.Chmod(storeFileMode); err != nil {
			tmp.Close()
			return classify.Wrap(classify.CategoryKeyGenerationFailed,
				fmt.Errorf("%w: restricting temp store: %v", ErrKeyGenerationFailed, err))
		}

		content := RenderLine(FormatShell, DBKeyEnv, dbKey) + "\n" +
			RenderLine(FormatShell, EncryptionKeyEnv, encKey) + "\n"
		if _, err := tmp.WriteString(content); err != nil {
			tmp.Close()
			return classify.Wrap(classify.CategoryKeyGenerationFailed,
				fmt.Errorf("%w: writing temp store: %v", ErrKeyGenerationFailed, err))
		}
		if err := tmp.Close(); err != nil {
			return classify.Wrap(classify.CategoryKeyGenerationFailed,
				fmt.Errorf("%w: closing temp store: %v", ErrKeyGenerationFailed, err))
		}

		if err := os.Rename(tmpPath, s.Path); err != nil {
			return classify.Wrap(classify.CategoryKeyGenerationFailed,
				fmt.Errorf("%w: installing store: %v", ErrKeyGenerationFailed, err))
		}
		return nil
	})
}

// Render produces the exportable assignment lines for the pair, one per
// secret, in the given format.
func Render(m *KeyMaterial, f Format) (string, error) {
	var out string
	err := m.Reveal(func(dbKey, encKey string) error {
		out = RenderLine(f, DBKeyEnv, dbKey) + "\n" +
			RenderLine(f, EncryptionKeyEnv, encKey) + "\n"
		return nil
	})
	return out, err
}
