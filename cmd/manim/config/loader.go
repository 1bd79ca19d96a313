// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// PathEnv overrides configuration file discovery when set.
const PathEnv = "MANIM_CONFIG_PATH"

// ErrNotFound reports that no security.yaml exists at any searched
// location. A missing configuration is a caller-visible error, never a
// silent default.
var ErrNotFound = errors.New("security configuration file not found")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads, defaults, and validates the security configuration.
//
// # Description
//
// Search order: $MANIM_CONFIG_PATH, ./config/security.yaml, then
// ~/.manim/security.yaml. Unknown keys in the file are ignored; recognized
// keys left unset take values from DefaultConfig.
//
// # Outputs
//
//   - Config: the validated configuration
//   - error: ErrNotFound when no file exists; a parse or validation error
//     otherwise
func Load() (Config, error) {
	path, err := discover()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(path)
}

// LoadFile reads the configuration from an explicit path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// discover returns the first configuration path that exists.
func discover() (string, error) {
	var searched []string
	for _, path := range searchPaths() {
		if path == "" {
			continue
		}
		searched = append(searched, path)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: searched %v", ErrNotFound, searched)
}

func searchPaths() []string {
	paths := []string{
		os.Getenv(PathEnv),
		filepath.Join("config", "security.yaml"),
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".manim", "security.yaml"))
	}
	return paths
}
