// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package storage decides whether the application may use the encrypted
// database engine or must degrade to plain storage.
//
// The decision is fail-closed: encryption is chosen whenever the backend is
// importable, and plain storage is permitted only when the operator opted in
// through configuration. An unavailable backend with fallback disallowed is
// a hard error, never a silent downgrade.
package storage
