// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pyenv

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/manim-app/launcher/cmd/manim/internal/classify"
	"github.com/manim-app/launcher/cmd/manim/internal/platform"
)

// MinPythonVersion is the oldest interpreter the application supports.
const MinPythonVersion = "3.11.0"

// requiredPackages must import cleanly before the application can start.
// pysqlcipher3 is listed here so an encrypted database is possible by
// default; whether its absence is fatal is decided later by the storage
// mode resolver, not by provisioning.
var requiredPackages = []string{"PyYAML", "cryptography", "pysqlcipher3"}

// guiPackage is installed best-effort. A headless box can still run key
// provisioning and the test suite without it, so install failure degrades
// to a warning instead of aborting setup.
const guiPackage = "PySide6"

// ---------------------------------------------------------------------------
// EnvironmentProvisioner interface
// ---------------------------------------------------------------------------

// EnvironmentProvisioner prepares an isolated interpreter environment and
// reports what it did.
type EnvironmentProvisioner interface {
	// EnsureEnvironment converges the environment toward ready: locates a
	// supported interpreter, creates the virtual environment if absent, and
	// installs any missing packages. It is idempotent; a second call against
	// a healthy environment performs probes only.
	EnsureEnvironment(ctx context.Context) (*EnvironmentState, error)

	// CheckGui verifies the GUI toolkit imports inside the environment.
	// It returns an ErrGuiDependencyMissing-wrapped error when it does not;
	// callers gate application launch on this, not setup.
	CheckGui(ctx context.Context) error
}

// EnvironmentState describes the outcome of a provisioning pass.
type EnvironmentState struct {
	// Root is the virtual environment directory.
	Root string `json:"root"`

	// Python is the interpreter inside the environment.
	Python string `json:"python"`

	// RuntimeVersion is the dotted version of the base interpreter.
	RuntimeVersion string `json:"runtime_version"`

	// CreatedEnvironment is true when this pass created the environment
	// rather than finding an existing one.
	CreatedEnvironment bool `json:"created_environment"`

	// InstalledPackages lists packages this pass installed.
	InstalledPackages []string `json:"installed_packages,omitempty"`

	// SatisfiedPackages lists required packages that were already present.
	SatisfiedPackages []string `json:"satisfied_packages,omitempty"`

	// GuiAvailable reports whether the GUI toolkit is importable.
	GuiAvailable bool `json:"gui_available"`

	// Warnings carries non-fatal degradations, e.g. a failed GUI install.
	Warnings []string `json:"warnings,omitempty"`
}

// ---------------------------------------------------------------------------
// Default implementation
// ---------------------------------------------------------------------------

// Provisioner is the production EnvironmentProvisioner backed by a real or
// mocked process manager.
type Provisioner struct {
	// Root is the virtual environment directory. Empty means DefaultRoot().
	Root string

	// MinVersion overrides MinPythonVersion; tests use this.
	MinVersion string

	// Process executes external commands.
	Process platform.ProcessManager

	// Getenv reads the environment. Nil means os.Getenv.
	Getenv func(string) string

	// Logger receives structured progress events.
	Logger *slog.Logger
}

// Compile-time check that Provisioner satisfies EnvironmentProvisioner.
var _ EnvironmentProvisioner = (*Provisioner)(nil)

// NewProvisioner builds a Provisioner with defaults filled in.
func NewProvisioner(root string, process platform.ProcessManager, logger *slog.Logger) *Provisioner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{
		Root:    root,
		Process: process,
		Logger:  logger,
	}
}

// DefaultRoot returns the standard virtual environment location,
// ~/.manim/venv.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".manim", "venv"), nil
}

// EnsureEnvironment implements EnvironmentProvisioner.
func (p *Provisioner) EnsureEnvironment(ctx context.Context) (*EnvironmentState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rt, err := p.locateRuntime(ctx)
	if err != nil {
		return nil, err
	}
	p.Logger.Info("interpreter selected", "path", rt.Path, "version", rt.Version)

	state := &EnvironmentState{
		Root:           p.root(),
		RuntimeVersion: rt.Version,
	}
	state.Python = venvPython(state.Root)

	if !p.environmentExists(state.Root) {
		p.Logger.Info("creating virtual environment", "root", state.Root)
		if out, err := p.Process.Run(ctx, nil, rt.Path, "-m", "venv", state.Root); err != nil {
			return nil, classify.Wrap(classify.CategoryDependencyInstallFailed,
				fmt.Errorf("%w: creating virtual environment: %s: %w",
					ErrDependencyInstallFailed, firstLine(out), err))
		}
		state.CreatedEnvironment = true
	}

	var missing []string
	for _, pkg := range requiredPackages {
		if p.packagePresent(ctx, state.Python, pkg) {
			state.SatisfiedPackages = append(state.SatisfiedPackages, pkg)
		} else {
			missing = append(missing, pkg)
		}
	}

	if len(missing) > 0 {
		p.Logger.Info("installing packages", "packages", strings.Join(missing, ","))
		if err := p.pipInstall(ctx, state.Python, missing); err != nil {
			return nil, err
		}
		state.InstalledPackages = append(state.InstalledPackages, missing...)
	}

	// GUI toolkit install is soft: record a warning and let launch fail
	// later with a precise category if the user actually needs the window.
	if p.packagePresent(ctx, state.Python, guiPackage) {
		state.GuiAvailable = true
	} else if err := p.pipInstall(ctx, state.Python, []string{guiPackage}); err != nil {
		p.Logger.Warn("gui toolkit install failed", "package", guiPackage, "error", err)
		state.Warnings = append(state.Warnings,
			fmt.Sprintf("GUI toolkit %s could not be installed; the application window will be unavailable", guiPackage))
	} else {
		state.InstalledPackages = append(state.InstalledPackages, guiPackage)
		state.GuiAvailable = true
	}

	return state, nil
}

// CheckGui implements EnvironmentProvisioner.
func (p *Provisioner) CheckGui(ctx context.Context) error {
	python := venvPython(p.root())
	if out, err := p.Process.Run(ctx, nil, python, "-c", "import PySide6"); err != nil {
		return classify.Wrap(classify.CategoryGuiDependencyMissing,
			fmt.Errorf("%w: %s: %w", ErrGuiDependencyMissing, firstLine(out), err))
	}
	return nil
}

// environmentExists treats a present venv interpreter as the marker for an
// existing environment; a half-created directory without one is recreated.
func (p *Provisioner) environmentExists(root string) bool {
	_, err := os.Stat(venvPython(root))
	return err == nil
}

// packagePresent checks installation state with pip show, which exits
// non-zero for an absent package without touching the network.
func (p *Provisioner) packagePresent(ctx context.Context, python, pkg string) bool {
	_, err := p.Process.Run(ctx, nil, python, "-m", "pip", "show", "--quiet", pkg)
	return err == nil
}

// pipInstall installs the given packages in one invocation and wraps any
// failure with the install category so the classifier can refine it (e.g.
// into a network failure) from the captured output.
func (p *Provisioner) pipInstall(ctx context.Context, python string, packages []string) error {
	args := append([]string{"-m", "pip", "install"}, packages...)
	if out, err := p.Process.Run(ctx, nil, python, args...); err != nil {
		return classify.Wrap(classify.CategoryDependencyInstallFailed,
			fmt.Errorf("%w: installing %s: %s: %w",
				ErrDependencyInstallFailed, strings.Join(packages, ", "), firstLine(out), err))
	}
	return nil
}

func (p *Provisioner) root() string {
	if p.Root != "" {
		return p.Root
	}
	root, err := DefaultRoot()
	if err != nil {
		// Fall back to a relative path rather than panic; downstream
		// commands will surface the real filesystem error.
		return filepath.Join(".manim", "venv")
	}
	return root
}

func (p *Provisioner) getenv(key string) string {
	if p.Getenv != nil {
		return p.Getenv(key)
	}
	return os.Getenv(key)
}

func (p *Provisioner) minVersion() string {
	if p.MinVersion != "" {
		return p.MinVersion
	}
	return MinPythonVersion
}

// InterpreterPath returns the interpreter an existing environment at root
// would use, without provisioning anything.
func InterpreterPath(root string) string {
	return venvPython(root)
}

// venvPython returns the interpreter path inside a virtual environment.
func venvPython(root string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(root, "Scripts", "python.exe")
	}
	return filepath.Join(root, "bin", "python")
}

// firstLine truncates command output to its first non-empty line for error
// text; the full output still travels on the CommandError for classification.
func firstLine(out []byte) string {
	for _, line := range strings.Split(string(out), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return "(no output)"
}
