// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"errors"
	"testing"
	"time"
)

func TestSpinnerStartStop(t *testing.T) {
	t.Cleanup(ResetPlain)
	SetPlain(false)

	spin := NewSpinner("installing packages")
	spin.Start()
	time.Sleep(200 * time.Millisecond)
	spin.Stop()

	// Stop after Stop must not panic or block
	spin.Stop()
}

func TestSpinnerRestart(t *testing.T) {
	t.Cleanup(ResetPlain)
	SetPlain(false)

	// A stopped spinner is reusable for a second cycle.
	spin := NewSpinner("first stage")
	spin.Start()
	spin.Stop()

	spin.UpdateMessage("second stage")
	spin.Start()
	time.Sleep(150 * time.Millisecond)
	spin.Stop()
}

func TestSpinnerDoubleStart(t *testing.T) {
	t.Cleanup(ResetPlain)
	SetPlain(false)

	spin := NewSpinner("working")
	spin.Start()
	spin.Start() // second Start is a no-op
	spin.Stop()
}

func TestSpinnerPlainMode(t *testing.T) {
	t.Cleanup(ResetPlain)
	SetPlain(true)

	// In plain mode there is no goroutine; Start/Stop are print-and-return.
	spin := NewSpinner("creating environment")
	spin.Start()
	spin.Stop()
}

func TestSpinnerUpdateMessage(t *testing.T) {
	t.Cleanup(ResetPlain)
	SetPlain(false)

	spin := NewSpinner("step 1")
	spin.Start()
	spin.UpdateMessage("step 2")
	spin.Stop()
}

func TestWithSpinnerPropagatesError(t *testing.T) {
	t.Cleanup(ResetPlain)
	SetPlain(true)

	sentinel := errors.New("boom")
	err := WithSpinner("doomed task", func() error { return sentinel })
	if !errors.Is(err, sentinel) {
		t.Errorf("WithSpinner() = %v, want %v", err, sentinel)
	}

	if err := WithSpinner("fine task", func() error { return nil }); err != nil {
		t.Errorf("WithSpinner() = %v, want nil", err)
	}
}
