// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package platform

import (
	"errors"
	"fmt"
	"strings"
)

// CommandError wraps a sub-tool failure with its captured output.
//
// # Description
//
// Provides rich error context for command failures: the command that failed,
// its exit code, and everything it wrote to stdout and stderr. Implements
// the error interface and supports unwrapping.
//
// # Example
//
//	err := NewCommandError("pip install pysqlcipher3", 1, out, origErr)
//
//	var cmdErr *CommandError
//	if errors.As(err, &cmdErr) {
//	    record := classify.Classify(cmdErr.Output)
//	}
type CommandError struct {
	// Command is the command line that was executed.
	Command string

	// ExitCode is the process exit code (-1 if unknown).
	ExitCode int

	// Output is the combined captured stdout and stderr.
	Output string

	// Wrapped is the underlying error.
	Wrapped error
}

// Error returns a formatted error message. The full output is not embedded;
// callers that want it use ExtractOutput.
func (e *CommandError) Error() string {
	return fmt.Sprintf("%s (exit %d)", e.Command, e.ExitCode)
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error { return e.Wrapped }

// HasOutput returns true if captured output is available.
func (e *CommandError) HasOutput() bool { return e.Output != "" }

// NewCommandError creates a CommandError. Output is trimmed of surrounding
// whitespace.
func NewCommandError(cmd string, exitCode int, output string, wrapped error) *CommandError {
	return &CommandError{
		Command:  cmd,
		ExitCode: exitCode,
		Output:   strings.TrimSpace(output),
		Wrapped:  wrapped,
	}
}

// ExtractOutput walks the error chain looking for captured sub-tool output.
// Returns the first output found, or empty string if the chain holds none.
func ExtractOutput(err error) string {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.HasOutput() {
		return cmdErr.Output
	}
	return ""
}
