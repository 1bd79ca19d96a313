// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manim-app/launcher/cmd/manim/internal/platform"
	"github.com/manim-app/launcher/cmd/manim/internal/pyenv"
	"github.com/manim-app/launcher/pkg/ux"
)

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return reportFailure("setup", "", err)
	}
	logger := newLogger(cfg)
	defer logger.Close()

	prov := pyenv.NewProvisioner("", platform.NewDefaultProcessManager(), logger.Slog())

	var state *pyenv.EnvironmentState
	spin := ux.NewSpinner("provisioning Python environment")
	if !jsonOutput {
		spin.Start()
	}
	state, err = prov.EnsureEnvironment(cmd.Context())
	spin.Stop()
	if err != nil {
		return reportFailure("setup", "", err)
	}

	return reportSuccess("setup", "", state, func() {
		ux.Title("MANIM environment")
		if state.CreatedEnvironment {
			ux.StageStatus("virtual environment", ux.IconSuccess, "created at "+state.Root)
		} else {
			ux.StageStatus("virtual environment", ux.IconSuccess, "reused at "+state.Root)
		}
		ux.StageStatus("python", ux.IconSuccess, state.RuntimeVersion)
		if len(state.InstalledPackages) > 0 {
			ux.StageStatus("packages", ux.IconSuccess,
				"installed "+strings.Join(state.InstalledPackages, ", "))
		} else {
			ux.StageStatus("packages", ux.IconSuccess,
				fmt.Sprintf("%s already satisfied", plural(len(state.SatisfiedPackages), "package")))
		}
		if state.GuiAvailable {
			ux.StageStatus("gui toolkit", ux.IconSuccess, "")
		} else {
			ux.StageStatus("gui toolkit", ux.IconWarning, "unavailable")
		}
		for _, warning := range state.Warnings {
			ux.Warning(warning)
		}
		ux.Success("setup complete")
	})
}
