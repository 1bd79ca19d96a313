// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manim-app/launcher/cmd/manim/internal/keystore"
	"github.com/manim-app/launcher/cmd/manim/internal/platform"
	"github.com/manim-app/launcher/cmd/manim/internal/pyenv"
	"github.com/manim-app/launcher/pkg/ux"
)

func runApp(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return reportFailure("app", "", err)
	}
	logger := newLogger(cfg)
	defer logger.Close()

	storePath, err := keystore.DefaultStorePath()
	if err != nil {
		return reportFailure("app", "", err)
	}

	process := platform.NewDefaultProcessManager()
	orch := NewOrchestrator(
		cfg,
		pyenv.NewProvisioner("", process, logger.Slog()),
		keystore.NewProvisioner(keystore.NewStore(storePath), cfg.Database.Path, logger.Slog()),
		process,
		logger.Slog(),
	)

	report, err := orch.Run(cmd.Context())
	if err != nil {
		if !jsonOutput && report.Failure != nil {
			ux.StageStatus(report.Failure.Stage, ux.IconError, report.Failure.Category)
		}
		return reportFailure("app", report.RunID, err)
	}

	return reportSuccess("app", report.RunID, report, func() {
		ux.Success(fmt.Sprintf("application exited cleanly (storage: %s, keys: %s)",
			report.StorageMode, report.KeySource))
	})
}
