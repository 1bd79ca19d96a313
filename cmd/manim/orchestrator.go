// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/manim-app/launcher/cmd/manim/config"
	"github.com/manim-app/launcher/cmd/manim/internal/classify"
	"github.com/manim-app/launcher/cmd/manim/internal/keystore"
	"github.com/manim-app/launcher/cmd/manim/internal/platform"
	"github.com/manim-app/launcher/cmd/manim/internal/pyenv"
	"github.com/manim-app/launcher/cmd/manim/internal/storage"
)

// launchModule is the Python entry point of the desktop application.
const launchModule = "manim_app"

// storageModeEnv tells the launched application which storage mode the
// resolver chose.
const storageModeEnv = "MANIM_STORAGE_MODE"

// RunState tracks how far a startup run has progressed.
type RunState int

const (
	StateNotProvisioned RunState = iota
	StateEnvironmentReady
	StateKeysReady
	StateRunning
	StateFailed
)

// String returns the state name for logs and JSON output.
func (s RunState) String() string {
	switch s {
	case StateNotProvisioned:
		return "not-provisioned"
	case StateEnvironmentReady:
		return "environment-ready"
	case StateKeysReady:
		return "keys-ready"
	case StateRunning:
		return "running"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("RunState(%d)", int(s))
	}
}

// StageFailure is the classified outcome of the stage that stopped a run.
type StageFailure struct {
	// Stage names the failed stage: environment, keys, storage, or launch.
	Stage string `json:"stage"`

	Category    string `json:"category"`
	Network     bool   `json:"network,omitempty"`
	Remediation string `json:"remediation,omitempty"`
	Excerpt     string `json:"excerpt,omitempty"`
}

// RunReport summarizes one orchestrated startup run.
type RunReport struct {
	RunID       string                  `json:"run_id"`
	State       string                  `json:"state"`
	Environment *pyenv.EnvironmentState `json:"environment,omitempty"`
	KeySource   string                  `json:"key_source,omitempty"`
	StorageMode string                  `json:"storage_mode,omitempty"`
	Failure     *StageFailure           `json:"failure,omitempty"`
}

// keyProvisioner is the seam the orchestrator needs from the keystore.
type keyProvisioner interface {
	EnsureKeys(ctx context.Context) (*keystore.EnsureResult, error)
}

// Orchestrator sequences environment provisioning, key provisioning,
// storage mode resolution, and application launch into one deterministic,
// idempotent startup run. A failed run is always safe to rerun; nothing is
// retried within a single run.
type Orchestrator struct {
	Config  config.Config
	Env     pyenv.EnvironmentProvisioner
	Keys    keyProvisioner
	Process platform.ProcessManager
	Logger  *slog.Logger

	// RunID tags every log line and the final report.
	RunID string

	state RunState
}

// NewOrchestrator assembles an orchestrator with a fresh run ID.
func NewOrchestrator(cfg config.Config, env pyenv.EnvironmentProvisioner, keys keyProvisioner, process platform.ProcessManager, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.NewString()
	return &Orchestrator{
		Config:  cfg,
		Env:     env,
		Keys:    keys,
		Process: process,
		Logger:  logger.With("run_id", runID),
		RunID:   runID,
		state:   StateNotProvisioned,
	}
}

// State returns the current run state.
func (o *Orchestrator) State() RunState {
	return o.state
}

// Run executes the full startup sequence and launches the application in
// the foreground. The report is returned even on failure, carrying the
// classified record of the stage that stopped the run.
func (o *Orchestrator) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{RunID: o.RunID, State: o.state.String()}

	env, err := o.Env.EnsureEnvironment(ctx)
	if err != nil {
		return o.fail(report, "environment", err)
	}
	o.state = StateEnvironmentReady
	report.Environment = env
	o.Logger.Info("environment ready",
		"root", env.Root, "python", env.RuntimeVersion, "created", env.CreatedEnvironment)
	for _, warning := range env.Warnings {
		o.Logger.Warn("provisioning warning", "warning", warning)
	}

	keys, err := o.Keys.EnsureKeys(ctx)
	if err != nil {
		return o.fail(report, "keys", err)
	}
	o.state = StateKeysReady
	report.KeySource = keys.Source.String()
	o.Logger.Info("keys ready", "source", keys.Source)

	mode, err := o.resolveStorage(ctx, env.Python)
	if err != nil {
		return o.fail(report, "storage", err)
	}
	report.StorageMode = mode.String()
	o.Logger.Info("storage mode resolved", "mode", mode)

	// The window is the whole point of `app`; a missing GUI toolkit is a
	// hard failure here even though setup only warned about it.
	if err := o.Env.CheckGui(ctx); err != nil {
		return o.fail(report, "launch", err)
	}

	o.state = StateRunning
	report.State = o.state.String()
	o.Logger.Info("launching application", "module", launchModule)

	err = keys.Material.Reveal(func(dbKey, encryptionKey string) error {
		// Secrets travel in the child environment only; the launcher's own
		// environment is never mutated.
		childEnv := []string{
			o.Config.Database.KeyEnv + "=" + dbKey,
			o.Config.Encryption.KeyEnv + "=" + encryptionKey,
			storageModeEnv + "=" + mode.String(),
		}
		return o.Process.RunForeground(ctx, childEnv, env.Python, "-m", launchModule)
	})
	if err != nil {
		return o.fail(report, "launch", err)
	}

	return report, nil
}

// resolveStorage probes the encrypted backend inside the environment and
// applies the fail-closed policy from configuration.
func (o *Orchestrator) resolveStorage(ctx context.Context, python string) (storage.Mode, error) {
	available, probeOutput := storage.ProbeBackend(ctx, o.Process, python)
	if !available {
		o.Logger.Warn("encrypted backend unavailable",
			"fallback_allowed", o.Config.Database.AllowSQLiteFallback)
	}
	mode, err := storage.Resolve(available, o.Config.Database.AllowSQLiteFallback)
	if err != nil {
		if probeOutput != "" {
			return 0, fmt.Errorf("%w: %s", err, probeOutput)
		}
		return 0, err
	}
	return mode, nil
}

// fail classifies the stage error, marks the run failed, and returns the
// partially filled report together with the original error.
func (o *Orchestrator) fail(report *RunReport, stage string, err error) (*RunReport, error) {
	record := classify.ClassifyError(err, platform.ExtractOutput(err))
	o.state = StateFailed
	report.State = o.state.String()
	report.Failure = &StageFailure{
		Stage:       stage,
		Category:    record.Category.String(),
		Network:     record.Network,
		Remediation: record.Remediation,
		Excerpt:     record.RawExcerpt,
	}
	o.Logger.Error("startup stage failed",
		"stage", stage, "category", record.Category, "network", record.Network)
	return report, err
}
