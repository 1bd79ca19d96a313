// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package classify maps captured sub-tool output to a typed failure category
and a localized remediation message.

# Problem Statement

The launcher drives opaque external tools (the Python interpreter, pip, the
application process). When one of them fails, the user sees a wall of
tracebacks. This package turns that wall into a single category plus a short,
actionable, localized remediation string.

# Design

Classification is substring-based against an ordered rule table. The first
match wins; matching is case-sensitive so overlapping diagnostics resolve
deterministically. Input that matches nothing classifies as Unclassified with
the raw text retained, so classification is total.

Substring matching is a last resort reserved for third-party tool output.
Components under the launcher's own control return typed errors carrying a
Category directly (see the Categorized interface) and never round-trip
through text.

# Localization

Remediation strings are rendered through golang.org/x/text message catalogs.
English and Korean are registered; the locale comes from LC_ALL/LANG.
*/
package classify
