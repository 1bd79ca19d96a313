// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/manim-app/launcher/cmd/manim/internal/keystore"
	"github.com/manim-app/launcher/pkg/ux"
)

func runKeys(cmd *cobra.Command, args []string) error {
	// Secrets never travel in the JSON envelope; --stdout exists for shell
	// consumption and the two modes cannot be combined.
	if keysStdout && jsonOutput {
		return reportFailure("keys", "", errors.New("--stdout and --json are mutually exclusive"))
	}

	format, err := keystore.ParseFormat(keysFormat)
	if err != nil {
		return reportFailure("keys", "", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return reportFailure("keys", "", err)
	}
	logger := newLogger(cfg)
	defer logger.Close()

	storePath, err := keystore.DefaultStorePath()
	if err != nil {
		return reportFailure("keys", "", err)
	}
	prov := keystore.NewProvisioner(keystore.NewStore(storePath), cfg.Database.Path, logger.Slog())
	prov.ForceRegenerate = keysForce

	res, err := prov.EnsureKeys(cmd.Context())
	if err != nil {
		return reportFailure("keys", "", err)
	}

	if keysWriteEnv != "" {
		if err := writeEnvFile(keysWriteEnv, res.Material, format); err != nil {
			return reportFailure("keys", "", err)
		}
	}

	if keysStdout {
		rendered, err := keystore.Render(res.Material, format)
		if err != nil {
			return reportFailure("keys", "", err)
		}
		fmt.Print(rendered)
		return nil
	}

	data := map[string]any{
		"source":     res.Source.String(),
		"store_path": storePath,
	}
	return reportSuccess("keys", "", data, func() {
		ux.Success(fmt.Sprintf("keys ready (source: %s)", res.Source))
		ux.Muted("store: " + storePath)
		if keysWriteEnv != "" {
			ux.Muted("wrote: " + keysWriteEnv)
		}
	})
}

// writeEnvFile renders the assignments in the requested format to an
// owner-only file.
func writeEnvFile(path string, m *keystore.KeyMaterial, f keystore.Format) error {
	rendered, err := keystore.Render(m, f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o600); err != nil {
		return fmt.Errorf("writing env file %s: %w", path, err)
	}
	return nil
}
