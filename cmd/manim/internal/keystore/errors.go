// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package keystore

import "errors"

// ErrKeyGenerationFailed is returned when fresh key material cannot be
// generated or persisted.
var ErrKeyGenerationFailed = errors.New("key generation failed")

// ErrKeyParseFailed is returned when existing key material cannot be read
// or is structurally invalid.
var ErrKeyParseFailed = errors.New("key material parse failed")

// ErrStoreNotFound is returned by Store.Load when no key store file exists.
var ErrStoreNotFound = errors.New("key store not found")

// ErrStoreIncomplete is returned by Store.Load when the store exists but
// does not hold both secrets. Partial presence is treated as invalid.
var ErrStoreIncomplete = errors.New("key store incomplete")

// ErrDatabaseWithoutKeys is returned when an encrypted database file exists
// but no key source does. Regenerating keys here would orphan the data.
var ErrDatabaseWithoutKeys = errors.New("database file exists but key material is missing")

// ErrLockHeld is returned when another launcher process holds the
// provisioning lock.
var ErrLockHeld = errors.New("key provisioning lock held by another process")
