// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"os"
	"strings"
	"testing"
)

func TestSetPlainOverridesDetection(t *testing.T) {
	t.Cleanup(ResetPlain)

	SetPlain(true)
	if !IsPlain() {
		t.Error("SetPlain(true) was ignored")
	}

	SetPlain(false)
	if IsPlain() {
		t.Error("SetPlain(false) was ignored")
	}
}

func TestIsPlainHonorsNoColor(t *testing.T) {
	t.Cleanup(ResetPlain)
	ResetPlain()
	t.Setenv("NO_COLOR", "1")

	if !IsPlain() {
		t.Error("NO_COLOR did not force plain output")
	}
}

func TestIsPlainNonTerminal(t *testing.T) {
	t.Cleanup(ResetPlain)
	ResetPlain()
	t.Setenv("NO_COLOR", "")

	// Test binaries run with stdout redirected; auto-detection must fall
	// back to plain rather than emit escape codes into a pipe.
	if fi, err := os.Stdout.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		if !IsPlain() {
			t.Error("non-terminal stdout did not force plain output")
		}
	}
}

func TestIconRender(t *testing.T) {
	tests := []struct {
		icon Icon
		want string
	}{
		{IconSuccess, "✓"},
		{IconWarning, "⚠"},
		{IconError, "✗"},
		{IconPending, "○"},
		{IconArrow, "→"},
	}

	for _, tt := range tests {
		got := tt.icon.Render()
		if !strings.Contains(got, tt.want) {
			t.Errorf("Icon(%q).Render() = %q, want it to contain %q", tt.icon, got, tt.want)
		}
	}
}
