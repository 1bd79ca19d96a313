// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/manim-app/launcher/pkg/ux"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Handlers report their own failures; anything else (flag errors,
		// unknown subcommands) still needs one line.
		if !errors.Is(err, errReported) && !errors.Is(err, errUsage) {
			ux.Error(err.Error())
		}
		os.Exit(CLIExitFailure)
	}
	os.Exit(CLIExitSuccess)
}
