// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package platform is the launcher's adapter to the operating system: spawning
processes with captured output, resolving executables on PATH, and launching
the application in the foreground.

All external tool invocations in the launcher go through the ProcessManager
interface. Direct exec.Command calls are not testable because they execute
real processes; the interface allows the provisioners and the orchestrator to
be exercised against MockProcessManager without a Python installation.

Every failed invocation is returned as a *CommandError carrying the captured
output, so the failure classifier always has the raw diagnostic text to work
with; output is never streamed past the launcher uninspected.
*/
package platform
