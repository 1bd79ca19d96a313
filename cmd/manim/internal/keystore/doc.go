// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package keystore generates, persists, and loads the two secrets the MANIM
application's encrypted database requires.

# Security Context

This is a CRITICAL-RISK component: it owns the only copies of the database
key and the field-encryption key. Improper handling could permanently lock
users out of their data or expose it.

# Security Features

  - Zero Value Logging: secret values are NEVER logged (even at debug level)
  - In-memory protection: keys live in memguard enclaves between uses
  - Atomic persistence: the store is written to a temp file and renamed, so
    a reader can never observe a file holding only one secret
  - Owner-only permission (0600) on the store file
  - Fail-secure: a database file with no key source is a hard error, never
    a trigger for silent regeneration

# Key Material Invariant

Both secrets present or both absent. A store or environment holding exactly
one is invalid and treated as absent (triggering regeneration, unless an
existing database forbids it).
*/
package keystore
