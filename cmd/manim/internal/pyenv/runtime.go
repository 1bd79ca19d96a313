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
	"strings"

	"golang.org/x/mod/semver"

	"github.com/manim-app/launcher/cmd/manim/internal/classify"
)

// PythonEnv overrides interpreter discovery when set in the calling
// environment.
const PythonEnv = "MANIM_PYTHON"

// candidateNames are probed in order when PythonEnv is unset. Newer
// interpreters first so a satisfying one is preferred over a bare `python`
// that may be Python 2.
var candidateNames = []string{"python3.13", "python3.12", "python3.11", "python3", "python"}

// versionProbe prints MAJOR.MINOR.PATCH without the "Python " prefix, which
// keeps parsing trivial and identical across implementations.
const versionProbe = `import sys; print(".".join(map(str, sys.version_info[:3])))`

// runtimeInfo is one discovered interpreter.
type runtimeInfo struct {
	// Path is the resolved executable path.
	Path string

	// Version is the dotted version, e.g. "3.12.1".
	Version string
}

// locateRuntime finds the first interpreter satisfying minVersion.
//
// # Outputs
//
//   - *runtimeInfo: the usable interpreter
//   - error: ErrToolMissing when nothing was found at all;
//     ErrVersionUnsupported when interpreters exist but are all too old.
//     The error text enumerates every discovered version as a diagnostic
//     aid (enumeration is best-effort and never fatal itself).
func (p *Provisioner) locateRuntime(ctx context.Context) (*runtimeInfo, error) {
	var discovered []runtimeInfo

	for _, name := range p.candidates() {
		path, err := p.Process.LookPath(name)
		if err != nil {
			continue
		}
		version, err := p.probeVersion(ctx, path)
		if err != nil {
			// A broken interpreter on PATH is a diagnostic curiosity, not
			// a reason to stop probing the remaining candidates.
			p.Logger.Debug("interpreter probe failed", "path", path, "error", err)
			continue
		}
		info := runtimeInfo{Path: path, Version: version}
		if semver.Compare("v"+version, "v"+p.minVersion()) >= 0 {
			return &info, nil
		}
		discovered = append(discovered, info)
	}

	if len(discovered) == 0 {
		return nil, classify.Wrap(classify.CategoryToolMissing,
			fmt.Errorf("%w: tried %s", ErrToolMissing, strings.Join(p.candidates(), ", ")))
	}

	var versions []string
	for _, d := range discovered {
		versions = append(versions, fmt.Sprintf("%s (%s)", d.Path, d.Version))
	}
	return nil, classify.Wrap(classify.CategoryVersionUnsupported,
		fmt.Errorf("%w: need >= %s, found %s",
			ErrVersionUnsupported, p.minVersion(), strings.Join(versions, ", ")))
}

// candidates returns the interpreter names to probe, honoring PythonEnv.
func (p *Provisioner) candidates() []string {
	if override := p.getenv(PythonEnv); override != "" {
		return []string{override}
	}
	return candidateNames
}

// probeVersion asks an interpreter for its dotted version.
func (p *Provisioner) probeVersion(ctx context.Context, path string) (string, error) {
	out, err := p.Process.Run(ctx, nil, path, "-c", versionProbe)
	if err != nil {
		return "", err
	}
	version := strings.TrimSpace(string(out))
	if !semver.IsValid("v" + version) {
		return "", fmt.Errorf("unparseable interpreter version %q", version)
	}
	return version, nil
}
