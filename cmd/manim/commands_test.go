// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manim-app/launcher/cmd/manim/internal/classify"
	"github.com/manim-app/launcher/cmd/manim/internal/platform"
	"github.com/manim-app/launcher/cmd/manim/internal/pyenv"
)

func TestBareInvocationFails(t *testing.T) {
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	assert.ErrorIs(t, err, errUsage)
}

func TestUnknownSubcommandFails(t *testing.T) {
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"bogus"})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.NotErrorIs(t, err, errReported)
}

func TestKeysStdoutAndJSONAreExclusive(t *testing.T) {
	origStdout, origJSON := keysStdout, jsonOutput
	t.Cleanup(func() { keysStdout, jsonOutput = origStdout, origJSON })
	keysStdout = true
	jsonOutput = true

	err := runKeys(keysCmd, nil)
	assert.ErrorIs(t, err, errReported)
}

func TestNewErrorDetailPrefersTypedCategory(t *testing.T) {
	err := classify.Wrap(classify.CategoryToolMissing, pyenv.ErrToolMissing)

	detail := newErrorDetail(err)
	assert.Equal(t, "ToolMissing", detail.Category)
	assert.NotEmpty(t, detail.Remediation)
	assert.Contains(t, detail.Detail, "no usable Python interpreter")
}

func TestNewErrorDetailClassifiesCapturedOutput(t *testing.T) {
	cmdErr := platform.NewCommandError("pip install PyYAML", 1,
		"ERROR: No matching distribution found for PyYAML", nil)

	detail := newErrorDetail(cmdErr)
	assert.Equal(t, "DependencyInstallFailed", detail.Category)
	assert.True(t, detail.Network)
}

func TestEmitJSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	emitJSON(&buf, CommandResult{
		Status:  "error",
		Command: "app",
		RunID:   "run-1",
		Error:   newErrorDetail(errors.New("boom")),
	})

	var decoded CommandResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "error", decoded.Status)
	assert.Equal(t, "app", decoded.Command)
	assert.Equal(t, "run-1", decoded.RunID)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, "Unclassified", decoded.Error.Category)
	assert.Equal(t, "boom", decoded.Error.Detail)
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "1 package", plural(1, "package"))
	assert.Equal(t, "3 packages", plural(3, "package"))
}
