// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"

	"github.com/manim-app/launcher/cmd/manim/internal/platform"
	"github.com/manim-app/launcher/cmd/manim/internal/pyenv"
	"github.com/manim-app/launcher/pkg/ux"
)

// runSuite runs pytest inside the provisioned environment, passing any
// extra arguments through. The environment is converged first so `manim
// test` works on a fresh checkout.
func runSuite(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return reportFailure("test", "", err)
	}
	logger := newLogger(cfg)
	defer logger.Close()

	process := platform.NewDefaultProcessManager()
	prov := pyenv.NewProvisioner("", process, logger.Slog())
	state, err := prov.EnsureEnvironment(cmd.Context())
	if err != nil {
		return reportFailure("test", "", err)
	}

	pytestArgs := append([]string{"-m", "pytest"}, args...)
	if err := process.RunForeground(cmd.Context(), nil, state.Python, pytestArgs...); err != nil {
		return reportFailure("test", "", err)
	}

	return reportSuccess("test", "", map[string]any{"python": state.Python}, func() {
		ux.Success("test suite passed")
	})
}
