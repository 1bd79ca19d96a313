// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pyenv

import "errors"

// ErrToolMissing is returned when no Python interpreter can be located.
var ErrToolMissing = errors.New("no usable Python interpreter found")

// ErrVersionUnsupported is returned when interpreters exist but none
// satisfies the minimum version.
var ErrVersionUnsupported = errors.New("Python version unsupported")

// ErrDependencyInstallFailed is returned when creating the environment or
// installing required packages fails.
var ErrDependencyInstallFailed = errors.New("dependency installation failed")

// ErrGuiDependencyMissing is returned by the launch-stage GUI check; the
// setup stage itself treats a missing GUI toolkit as a soft warning.
var ErrGuiDependencyMissing = errors.New("GUI toolkit missing from runtime environment")
