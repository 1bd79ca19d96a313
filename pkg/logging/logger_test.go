// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// Level Tests
// =============================================================================

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
		{Level(-1), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.level.String()
			if got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevel_toSlogLevel(t *testing.T) {
	tests := []struct {
		level Level
		want  slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{Level(99), slog.LevelInfo},
	}

	for _, tt := range tests {
		got := tt.level.toSlogLevel()
		if got != tt.want {
			t.Errorf("Level(%d).toSlogLevel() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

// =============================================================================
// File Logging Tests
// =============================================================================

func TestNew_FileLogging(t *testing.T) {
	logDir := t.TempDir()
	logger := New(Config{
		Level:   LevelInfo,
		LogDir:  logDir,
		Service: "manim",
		Quiet:   true,
	})

	logger.Info("keys provisioned", "source", "generated")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	filename := "manim_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(logDir, filename))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	// File logs are JSON
	var entry map[string]any
	line := strings.SplitN(strings.TrimSpace(string(data)), "\n", 2)[0]
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "keys provisioned" {
		t.Errorf("msg = %v, want %q", entry["msg"], "keys provisioned")
	}
	if entry["service"] != "manim" {
		t.Errorf("service = %v, want %q", entry["service"], "manim")
	}
	if entry["source"] != "generated" {
		t.Errorf("source = %v, want %q", entry["source"], "generated")
	}
}

func TestNew_LevelFilter(t *testing.T) {
	logDir := t.TempDir()
	logger := New(Config{
		Level:  LevelWarn,
		LogDir: logDir,
		Quiet:  true,
	})

	logger.Debug("dropped")
	logger.Info("dropped too")
	logger.Warn("kept")
	_ = logger.Close()

	filename := "manim_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(logDir, filename))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if strings.Contains(string(data), "dropped") {
		t.Error("below-level messages reached the log file")
	}
	if !strings.Contains(string(data), "kept") {
		t.Error("Warn message missing from log file")
	}
}

func TestWith_AddsAttributes(t *testing.T) {
	logDir := t.TempDir()
	logger := New(Config{
		Level:   LevelInfo,
		LogDir:  logDir,
		Service: "manim",
		Quiet:   true,
	})

	runLogger := logger.With("run_id", "abc-123")
	runLogger.Info("stage complete", "stage", "environment")
	_ = logger.Close()

	filename := "manim_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(logDir, filename))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "abc-123") {
		t.Error("With() attribute missing from child logger output")
	}
}

func TestClose_NoFile(t *testing.T) {
	logger := New(Config{Quiet: true})
	if err := logger.Close(); err != nil {
		t.Errorf("Close() without file failed: %v", err)
	}
	// Double close must stay safe
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}
}

func TestSlog_ReturnsUsableLogger(t *testing.T) {
	logger := New(Config{Quiet: true})
	if logger.Slog() == nil {
		t.Fatal("Slog() returned nil")
	}
	logger.Slog().Info("direct slog call")
}

// =============================================================================
// Retention Tests
// =============================================================================

func TestPruneOld_RemovesExpiredFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	old := filepath.Join(dir, "manim_2020-01-01.log")
	fresh := filepath.Join(dir, "manim_"+now.Format("2006-01-02")+".log")
	foreign := filepath.Join(dir, "other_2020-01-01.log")
	for _, path := range []string{old, fresh, foreign} {
		if err := os.WriteFile(path, []byte("x"), 0640); err != nil {
			t.Fatalf("failed to seed %s: %v", path, err)
		}
	}
	expired := now.AddDate(0, 0, -10)
	if err := os.Chtimes(old, expired, expired); err != nil {
		t.Fatalf("failed to age file: %v", err)
	}
	if err := os.Chtimes(foreign, expired, expired); err != nil {
		t.Fatalf("failed to age file: %v", err)
	}

	pruneOld(dir, "manim", 7, now)

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("expired log file was not removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("current log file was removed")
	}
	// Files from other services are not ours to delete
	if _, err := os.Stat(foreign); err != nil {
		t.Error("foreign log file was removed")
	}
}

func TestPruneOld_ZeroRetentionKeepsEverything(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "manim_2020-01-01.log")
	if err := os.WriteFile(old, []byte("x"), 0640); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}
	expired := time.Now().AddDate(-5, 0, 0)
	if err := os.Chtimes(old, expired, expired); err != nil {
		t.Fatalf("failed to age file: %v", err)
	}

	pruneOld(dir, "manim", 0, time.Now())

	if _, err := os.Stat(old); err != nil {
		t.Error("file removed despite zero retention")
	}
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~/.manim/logs", filepath.Join(home, ".manim", "logs")},
		{"/var/log/manim", "/var/log/manim"},
		{"relative/path", "relative/path"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := expandPath(tt.in); got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
