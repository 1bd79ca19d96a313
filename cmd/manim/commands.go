// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"

	"github.com/manim-app/launcher/cmd/manim/config"
	"github.com/manim-app/launcher/pkg/logging"
	"github.com/manim-app/launcher/pkg/ux"
)

var (
	jsonOutput bool

	rootCmd = &cobra.Command{
		Use:   "manim",
		Short: "Bootstraps the MANIM desktop application runtime",
		Long: `manim provisions everything the MANIM desktop application needs to start:
an isolated Python environment, the key pair for its encrypted data store,
and the encrypted-vs-fallback storage decision. Sub-tool failures are
classified and reported with a remediation hint.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupCmd = &cobra.Command{
		Use:   "setup",
		Short: "Provision the isolated Python environment",
		Long:  `Locates a supported Python, creates the virtual environment if absent, and installs any missing required packages. Safe to run repeatedly.`,
		Args:  cobra.NoArgs,
		RunE:  runSetup,
	}

	keysFormat   string
	keysWriteEnv string
	keysForce    bool
	keysStdout   bool

	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Ensure the key pair exists and export it",
		Long: `Ensures the database and encryption keys exist, generating and persisting
a fresh pair when none do. With --stdout the assignments are printed for
shell consumption:

    eval "$(manim keys --stdout --format shell-export)"`,
		Args: cobra.NoArgs,
		RunE: runKeys,
	}

	suiteCmd = &cobra.Command{
		Use:   "test [pytest args]",
		Short: "Run the application test suite inside the environment",
		RunE:  runSuite,
	}

	appCmd = &cobra.Command{
		Use:   "app",
		Short: "Run the full startup sequence and launch the application",
		Args:  cobra.NoArgs,
		RunE:  runApp,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"emit machine-readable JSON output")

	keysCmd.Flags().StringVar(&keysFormat, "format", "shell",
		"assignment format: shell, shell-export, or powershell")
	keysCmd.Flags().StringVar(&keysWriteEnv, "write-env", "",
		"also write the rendered assignments to this file (owner-only)")
	keysCmd.Flags().BoolVar(&keysForce, "force", false,
		"regenerate the pair even when a valid store exists")
	keysCmd.Flags().BoolVar(&keysStdout, "stdout", false,
		"print the assignments to stdout for shell eval")

	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(suiteCmd)
	rootCmd.AddCommand(appCmd)

	// A bare invocation shows usage but is still a failed run.
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		_ = cmd.Help()
		return errUsage
	}
}

// loadConfig loads security.yaml once per invocation. A missing file is a
// hard error surfaced to the caller, never a silent default.
func loadConfig() (config.Config, error) {
	return config.Load()
}

// newLogger builds the run logger. JSON output mode keeps stderr quiet so
// the envelope on stdout is the only machine-visible stream; file logging
// under ~/.manim/logs is always on, bounded by the configured retention.
func newLogger(cfg config.Config) *logging.Logger {
	if jsonOutput {
		ux.SetPlain(true)
	}
	return logging.New(logging.Config{
		Level:         logging.LevelInfo,
		LogDir:        "~/.manim/logs",
		Service:       "manim",
		Quiet:         jsonOutput,
		RetentionDays: cfg.Logging.RetentionDays,
	})
}
