// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package platform

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// -----------------------------------------------------------------------------
// Interface Definition
// -----------------------------------------------------------------------------

// ProcessManager handles external process operations.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use from multiple goroutines.
//
// # Context Handling
//
// All blocking methods accept a context.Context. No method applies its own
// timeout; a hung sub-tool blocks until the caller cancels.
type ProcessManager interface {
	// Run executes a command synchronously and captures its output.
	//
	// # Description
	//
	// Executes the command, waits for completion, and returns the combined
	// stdout+stderr. On a non-zero exit the same combined output travels
	// inside the returned *CommandError so failures can be classified.
	//
	// # Inputs
	//
	//   - ctx: Context for cancellation
	//   - env: Extra KEY=VALUE entries appended to the current environment;
	//     nil inherits the environment unchanged
	//   - name: The executable name or path
	//   - args: Command arguments
	//
	// # Outputs
	//
	//   - []byte: Combined stdout+stderr output
	//   - error: *CommandError on non-zero exit, or the spawn error
	Run(ctx context.Context, env []string, name string, args ...string) ([]byte, error)

	// RunForeground executes a command wired to the launcher's own stdio.
	//
	// # Description
	//
	// Used for sub-tools whose output belongs to the user directly (the
	// application's test suite). Output is not captured; the exit code is
	// still surfaced through *CommandError.
	RunForeground(ctx context.Context, env []string, name string, args ...string) error

	// LookPath resolves an executable on PATH.
	//
	// # Outputs
	//
	//   - string: Absolute path of the executable
	//   - error: exec.ErrNotFound-wrapping error when absent
	LookPath(name string) (string, error)
}

// -----------------------------------------------------------------------------
// Implementation
// -----------------------------------------------------------------------------

// DefaultProcessManager implements ProcessManager using os/exec.
//
// This is the production implementation that executes real processes on the
// system. Use MockProcessManager in tests instead.
type DefaultProcessManager struct{}

// NewDefaultProcessManager creates a ProcessManager backed by os/exec.
func NewDefaultProcessManager() *DefaultProcessManager {
	return &DefaultProcessManager{}
}

// Run executes a command synchronously and captures its combined output.
func (pm *DefaultProcessManager) Run(ctx context.Context, env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if env != nil {
		cmd.Env = append(os.Environ(), env...)
	}

	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	err := cmd.Run()
	if err != nil {
		return combined.Bytes(), NewCommandError(
			commandLine(name, args), exitCode(err), combined.String(), err)
	}
	return combined.Bytes(), nil
}

// RunForeground executes a command wired to the launcher's stdio.
func (pm *DefaultProcessManager) RunForeground(ctx context.Context, env []string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if env != nil {
		cmd.Env = append(os.Environ(), env...)
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return NewCommandError(commandLine(name, args), exitCode(err), "", err)
	}
	return nil
}

// LookPath resolves an executable on PATH.
func (pm *DefaultProcessManager) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// commandLine renders the command for error messages.
func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// exitCode extracts the process exit code, -1 if unknown.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// -----------------------------------------------------------------------------
// Mock Implementation for Testing
// -----------------------------------------------------------------------------

// MockProcessManager is a test double for ProcessManager.
//
// Configure the mock by setting function fields before use. If a function
// field is nil and the corresponding method is called, it panics.
//
// # Examples
//
//	mock := &MockProcessManager{
//	    RunFunc: func(ctx context.Context, env []string, name string, args ...string) ([]byte, error) {
//	        if name == "python3" && args[0] == "--version" {
//	            return []byte("Python 3.12.1"), nil
//	        }
//	        return nil, fmt.Errorf("unexpected command: %s", name)
//	    },
//	}
type MockProcessManager struct {
	// RunFunc is called when Run is invoked.
	RunFunc func(ctx context.Context, env []string, name string, args ...string) ([]byte, error)

	// RunForegroundFunc is called when RunForeground is invoked.
	RunForegroundFunc func(ctx context.Context, env []string, name string, args ...string) error

	// LookPathFunc is called when LookPath is invoked. When nil, LookPath
	// reports every executable as missing.
	LookPathFunc func(name string) (string, error)

	// Calls records all method invocations for verification.
	Calls []ProcessCall

	mu sync.Mutex
}

// ProcessCall records a single method invocation.
type ProcessCall struct {
	Method string
	Name   string
	Args   []string
	Env    []string
}

// Run delegates to RunFunc and records the call.
func (m *MockProcessManager) Run(ctx context.Context, env []string, name string, args ...string) ([]byte, error) {
	m.record(ProcessCall{Method: "Run", Name: name, Args: args, Env: env})
	if m.RunFunc == nil {
		panic("MockProcessManager.RunFunc not set")
	}
	return m.RunFunc(ctx, env, name, args...)
}

// RunForeground delegates to RunForegroundFunc and records the call.
func (m *MockProcessManager) RunForeground(ctx context.Context, env []string, name string, args ...string) error {
	m.record(ProcessCall{Method: "RunForeground", Name: name, Args: args, Env: env})
	if m.RunForegroundFunc == nil {
		panic("MockProcessManager.RunForegroundFunc not set")
	}
	return m.RunForegroundFunc(ctx, env, name, args...)
}

// LookPath delegates to LookPathFunc and records the call.
func (m *MockProcessManager) LookPath(name string) (string, error) {
	m.record(ProcessCall{Method: "LookPath", Name: name})
	if m.LookPathFunc == nil {
		return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
	}
	return m.LookPathFunc(name)
}

func (m *MockProcessManager) record(c ProcessCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, c)
}

// GetCalls returns a copy of all recorded calls.
func (m *MockProcessManager) GetCalls() []ProcessCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]ProcessCall, len(m.Calls))
	copy(result, m.Calls)
	return result
}

// Reset clears all recorded calls.
func (m *MockProcessManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
}

// Compile-time interface compliance check.
var (
	_ ProcessManager = (*DefaultProcessManager)(nil)
	_ ProcessManager = (*MockProcessManager)(nil)
)
