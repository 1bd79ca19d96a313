// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/manim-app/launcher/cmd/manim/internal/classify"
	"github.com/manim-app/launcher/cmd/manim/internal/platform"
)

// ErrEncryptionBackendUnavailable reports that the encrypted engine cannot
// load and the configuration forbids running without it.
var ErrEncryptionBackendUnavailable = errors.New("encrypted storage backend unavailable and fallback is disallowed")

// Mode is the storage mode the application will run in.
type Mode int

const (
	// ModeEncrypted uses the SQLCipher-backed encrypted database.
	ModeEncrypted Mode = iota

	// ModeFallbackPlain uses unencrypted SQLite. Only reachable when the
	// configuration explicitly allows it.
	ModeFallbackPlain
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case ModeEncrypted:
		return "encrypted"
	case ModeFallbackPlain:
		return "fallback-plain"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// backendProbe imports the SQLCipher binding; a clean import is the only
// availability signal that matters, since a present-but-broken binding fails
// the same way as an absent one.
const backendProbe = "import pysqlcipher3"

// Resolve picks the storage mode from backend availability and the
// operator's fallback choice.
//
// # Description
//
// Encryption wins whenever the backend is available, regardless of
// configuration. When it is not, allowFallback decides between plain
// storage and a hard ErrEncryptionBackendUnavailable failure. The function
// is pure; probing availability is the caller's job (see ProbeBackend).
func Resolve(backendAvailable, allowFallback bool) (Mode, error) {
	if backendAvailable {
		return ModeEncrypted, nil
	}
	if allowFallback {
		return ModeFallbackPlain, nil
	}
	return 0, classify.Wrap(classify.CategoryEncryptionBackendUnavailable,
		ErrEncryptionBackendUnavailable)
}

// ProbeBackend reports whether the encrypted backend imports inside the
// environment's interpreter. Probe failure is a signal, not an error; the
// captured output is returned for diagnostics.
func ProbeBackend(ctx context.Context, process platform.ProcessManager, python string) (bool, string) {
	out, err := process.Run(ctx, nil, python, "-c", backendProbe)
	if err != nil {
		return false, string(out)
	}
	return true, ""
}
