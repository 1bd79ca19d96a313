// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/manim-app/launcher/cmd/manim/internal/classify"
	"github.com/manim-app/launcher/cmd/manim/internal/platform"
	"github.com/manim-app/launcher/pkg/ux"
)

// Exit codes. Everything that is not success is 1; callers distinguish
// failures by the classified category in the output, not by exit code.
const (
	CLIExitSuccess = 0
	CLIExitFailure = 1
)

var (
	// errUsage marks a bare or malformed invocation; help was already shown.
	errUsage = errors.New("usage")

	// errReported marks a failure the handler has already printed, so main
	// only sets the exit code.
	errReported = errors.New("failure already reported")
)

// CommandResult is the envelope for --json output. Secret values never
// appear in it.
type CommandResult struct {
	// Status is "ok" or "error".
	Status string `json:"status"`

	// Command is the subcommand that ran.
	Command string `json:"command"`

	// RunID tags orchestrated runs; empty for commands without one.
	RunID string `json:"run_id,omitempty"`

	// Data carries command-specific results on success.
	Data any `json:"data,omitempty"`

	// Error carries the classified failure on error.
	Error *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail is the JSON form of a classified failure.
type ErrorDetail struct {
	Category    string `json:"category"`
	Network     bool   `json:"network,omitempty"`
	Detail      string `json:"detail"`
	Remediation string `json:"remediation,omitempty"`
	Excerpt     string `json:"excerpt,omitempty"`
}

// newErrorDetail classifies err, preferring its typed category and falling
// back to substring classification of any captured sub-tool output.
func newErrorDetail(err error) *ErrorDetail {
	record := classify.ClassifyError(err, platform.ExtractOutput(err))
	return &ErrorDetail{
		Category:    record.Category.String(),
		Network:     record.Network,
		Detail:      err.Error(),
		Remediation: record.Remediation,
		Excerpt:     record.RawExcerpt,
	}
}

func emitJSON(w io.Writer, res CommandResult) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(res)
}

// reportFailure prints a classified failure in the active output mode and
// returns errReported for main to translate into exit code 1.
func reportFailure(command, runID string, err error) error {
	detail := newErrorDetail(err)
	if jsonOutput {
		emitJSON(os.Stdout, CommandResult{
			Status:  "error",
			Command: command,
			RunID:   runID,
			Error:   detail,
		})
		return errReported
	}
	ux.Error(err.Error())
	if detail.Remediation != "" {
		ux.Info(detail.Remediation)
	}
	if detail.Excerpt != "" && detail.Excerpt != err.Error() {
		ux.Muted(detail.Excerpt)
	}
	return errReported
}

// reportSuccess emits the JSON envelope, or runs the human-output callback
// when styled output is active.
func reportSuccess(command, runID string, data any, human func()) error {
	if jsonOutput {
		emitJSON(os.Stdout, CommandResult{
			Status:  "ok",
			Command: command,
			RunID:   runID,
			Data:    data,
		})
		return nil
	}
	if human != nil {
		human()
	}
	return nil
}

// plural is a small helper for human-readable counts.
func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
