// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package platform

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMockRecordsCalls(t *testing.T) {
	mock := &MockProcessManager{
		RunFunc: func(ctx context.Context, env []string, name string, args ...string) ([]byte, error) {
			return []byte("ok"), nil
		},
	}

	_, err := mock.Run(context.Background(), nil, "python3", "--version")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	calls := mock.GetCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if calls[0].Name != "python3" || calls[0].Args[0] != "--version" {
		t.Errorf("unexpected call recorded: %+v", calls[0])
	}

	mock.Reset()
	if len(mock.GetCalls()) != 0 {
		t.Error("Reset() did not clear calls")
	}
}

func TestMockLookPathDefaultsToNotFound(t *testing.T) {
	mock := &MockProcessManager{}
	if _, err := mock.LookPath("python3"); err == nil {
		t.Error("LookPath with nil LookPathFunc should report not found")
	}
}

func TestCommandErrorCarriesOutput(t *testing.T) {
	output := "ERROR: No matching distribution found for pysqlcipher3"
	err := NewCommandError("pip install pysqlcipher3", 1, output+"\n", errors.New("exit status 1"))

	if err.Output != output {
		t.Errorf("Output = %q, want trimmed %q", err.Output, output)
	}
	if err.Error() != "pip install pysqlcipher3 (exit 1)" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestExtractOutputWalksChain(t *testing.T) {
	inner := NewCommandError("pip install PySide6", 1, "boom", errors.New("exit status 1"))
	wrapped := fmt.Errorf("installing gui toolkit: %w", inner)

	if got := ExtractOutput(wrapped); got != "boom" {
		t.Errorf("ExtractOutput() = %q, want %q", got, "boom")
	}
	if got := ExtractOutput(errors.New("plain")); got != "" {
		t.Errorf("ExtractOutput() on plain error = %q, want empty", got)
	}
}

func TestCommandLine(t *testing.T) {
	if got := commandLine("python3", nil); got != "python3" {
		t.Errorf("commandLine() = %q", got)
	}
	if got := commandLine("pip", []string{"install", "PyYAML"}); got != "pip install PyYAML" {
		t.Errorf("commandLine() = %q", got)
	}
}
