package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// ProjectFile is the optional per-directory override file.
const ProjectFile = ".wtf.yaml"

// Loader reads configuration layers and merges them over the defaults.
type Loader struct {
	paths       Paths
	projectFile string
}

// NewLoader creates a loader for the user config in paths and the
// project override in the current directory.
func NewLoader(paths Paths) *Loader {
	return &Loader{paths: paths, projectFile: ProjectFile}
}

// NewLoaderWithOptions creates a loader with an explicit project file.
// An empty projectFile disables the project layer.
func NewLoaderWithOptions(paths Paths, projectFile string) *Loader {
	return &Loader{paths: paths, projectFile: projectFile}
}

// Load merges, lowest to highest priority:
//  1. built-in defaults
//  2. <config dir>/config.yaml
//  3. ./.wtf.yaml
//
// Missing files are skipped. A file that exists but cannot be parsed is
// an error, so a typo never silently reverts settings to defaults.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	sources := []string{l.paths.Config()}
	if l.projectFile != "" {
		sources = append(sources, l.projectFile)
	}

	for _, src := range sources {
		if err := mergeFile(cfg, src); err != nil {
			return nil, err
		}
	}
	normalize(cfg)
	return cfg, nil
}

// mergeFile decodes src over cfg. Keys absent from the file keep their
// current values.
func mergeFile(cfg *Config, src string) error {
	data, err := os.ReadFile(src)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", src, err)
	}
	return nil
}

// normalize restores defaults for values that would disable core limits.
func normalize(cfg *Config) {
	if cfg.Behavior.MaxIterations <= 0 {
		cfg.Behavior.MaxIterations = DefaultMaxIterations
	}
	if cfg.Behavior.CommandTimeout <= 0 {
		cfg.Behavior.CommandTimeout = DefaultCommandTimeout
	}
	if cfg.Behavior.DefaultPermission == "" {
		cfg.Behavior.DefaultPermission = "ask"
	}
}

// Exists reports whether the user config file is present.
func (l *Loader) Exists() bool {
	_, err := os.Stat(l.paths.Config())
	return err == nil
}
