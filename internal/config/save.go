package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxBackups is the number of config backups kept next to config.yaml.
const MaxBackups = 5

// now is replaced in tests.
var now = time.Now

// Save writes cfg to the user config file. An existing file is first copied
// to config.yaml.backup.<timestamp>; only the newest MaxBackups are kept.
func Save(paths Paths, cfg *Config) error {
	if err := os.MkdirAll(paths.Dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	target := paths.Config()
	if old, err := os.ReadFile(target); err == nil {
		backup := fmt.Sprintf("%s.backup.%s", target, now().Format("20060102_150405.000000"))
		if err := os.WriteFile(backup, old, 0600); err != nil {
			return fmt.Errorf("write backup: %w", err)
		}
		pruneBackups(target)
	}

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.Rename(tmp, target)
}

// Marshal encodes cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

// Backups returns existing backups for target, oldest first.
func Backups(target string) []string {
	matches, _ := filepath.Glob(target + ".backup.*")
	sort.Strings(matches)
	return matches
}

func pruneBackups(target string) {
	backups := Backups(target)
	for len(backups) > MaxBackups {
		_ = os.Remove(backups[0])
		backups = backups[1:]
	}
}

// EnsureDefault writes the default config when none exists and reports
// whether it did.
func EnsureDefault(paths Paths) (bool, error) {
	if _, err := os.Stat(paths.Config()); err == nil {
		return false, nil
	}
	if err := Save(paths, Default()); err != nil {
		return false, err
	}
	return true, nil
}

// trimDoc strips the trailing newline yaml adds to scalar documents.
func trimDoc(b []byte) string {
	return strings.TrimSuffix(string(b), "\n")
}
