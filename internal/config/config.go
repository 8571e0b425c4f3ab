// Package config manages the wtf configuration file.
//
// Configuration lives in config.yaml under the wtf config directory
// ($XDG_CONFIG_HOME/wtf, or ~/.config/wtf). A project may add a
// .wtf.yaml in the working directory whose values override the user file.
package config

import (
	"os"
	"path/filepath"
)

const (
	// CurrentVersion is written to new config files.
	CurrentVersion = "0.1.0"

	// DefaultMaxIterations bounds tool loop iterations and legacy requeries.
	DefaultMaxIterations = 10

	// DefaultCommandTimeout is the per-command timeout in seconds.
	DefaultCommandTimeout = 30
)

// Config is the complete wtf configuration.
type Config struct {
	Version  string   `yaml:"version"`
	API      API      `yaml:"api"`
	Behavior Behavior `yaml:"behavior"`
	Shell    Shell    `yaml:"shell"`
}

// API selects the model provider.
type API struct {
	// Provider is anthropic, openai or google.
	Provider string `yaml:"provider"`
	// KeySource is "env" (read the provider's env var), "config" (use Key)
	// or "vertex" (Anthropic through Vertex AI credentials).
	KeySource string `yaml:"key_source"`
	Key       string `yaml:"key,omitempty"`
	Model     string `yaml:"model"`
}

// Behavior holds the knobs consulted by the permission engine and loops.
type Behavior struct {
	AutoExecuteAllowlist bool `yaml:"auto_execute_allowlist"`
	AutoAllowReadonly    bool `yaml:"auto_allow_readonly"`
	ContextHistorySize   int  `yaml:"context_history_size"`
	Verbose              bool `yaml:"verbose"`
	// DefaultPermission is "ask" or "deny". With "deny", commands that
	// would need confirmation are declined without prompting.
	DefaultPermission string `yaml:"default_permission"`
	MaxIterations     int    `yaml:"max_iterations"`
	// CommandTimeout is in seconds.
	CommandTimeout int `yaml:"command_timeout"`
}

// Shell describes the user's shell.
type Shell struct {
	Type        string `yaml:"type"`
	HistoryFile string `yaml:"history_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		API: API{
			Provider:  "anthropic",
			KeySource: "env",
			Model:     "claude-sonnet-4-5",
		},
		Behavior: Behavior{
			AutoExecuteAllowlist: true,
			AutoAllowReadonly:    true,
			ContextHistorySize:   5,
			Verbose:              false,
			DefaultPermission:    "ask",
			MaxIterations:        DefaultMaxIterations,
			CommandTimeout:       DefaultCommandTimeout,
		},
		Shell: Shell{
			Type:        "zsh",
			HistoryFile: "~/.zsh_history",
		},
	}
}

// Paths locates the files wtf keeps under its config directory.
type Paths struct {
	Dir string
}

// DefaultPaths resolves the config directory from XDG_CONFIG_HOME, falling
// back to ~/.config/wtf.
func DefaultPaths() Paths {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return Paths{Dir: filepath.Join(xdg, "wtf")}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Paths{Dir: filepath.Join(home, ".config", "wtf")}
}

func (p Paths) Config() string       { return filepath.Join(p.Dir, "config.yaml") }
func (p Paths) Allowlist() string    { return filepath.Join(p.Dir, "allowlist.json") }
func (p Paths) History() string      { return filepath.Join(p.Dir, "history.jsonl") }
func (p Paths) Instructions() string { return filepath.Join(p.Dir, "wtf.md") }
func (p Paths) Env() string          { return filepath.Join(p.Dir, ".env") }

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || len(path) > 1 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
