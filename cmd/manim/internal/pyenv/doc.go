// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package pyenv ensures an isolated, reproducible Python dependency
environment exists for the MANIM application.

# Problem Statement

The application needs a Python interpreter of a minimum version, a private
virtual environment independent of any system-wide installation, a small set
of required packages, and (optionally) the GUI toolkit. Previously users hit
cryptic import errors deep inside the application; this package does the
verification up front with clear, classified failures.

# Idempotence

Every step checks before it acts: an existing virtual environment is never
recreated, and a package that is already satisfied is never reinstalled.
Rerunning EnsureEnvironment after any failure repeats only the incomplete
work.

# Soft Failure

The GUI toolkit install is the one documented soft failure: it downgrades to
a warning here, and the hard GuiDependencyMissing error is raised by the
launch stage at the point the application actually needs the toolkit.
*/
package pyenv
