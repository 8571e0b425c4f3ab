package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	paths := Paths{Dir: t.TempDir()}
	cfg, err := NewLoaderWithOptions(paths, "").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.Provider != "anthropic" {
		t.Errorf("Provider = %q, want anthropic", cfg.API.Provider)
	}
	if !cfg.Behavior.AutoAllowReadonly {
		t.Error("AutoAllowReadonly should default to true")
	}
	if cfg.Behavior.MaxIterations != DefaultMaxIterations {
		t.Errorf("MaxIterations = %d", cfg.Behavior.MaxIterations)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{Dir: filepath.Join(dir, "wtf")}
	writeFile(t, paths.Config(), "api:\n  provider: openai\nbehavior:\n  auto_allow_readonly: false\n")

	project := filepath.Join(dir, "project.yaml")
	writeFile(t, project, "api:\n  model: gpt-4o-mini\n")

	cfg, err := NewLoaderWithOptions(paths, project).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", cfg.API.Provider)
	}
	if cfg.API.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q, want project override", cfg.API.Model)
	}
	if cfg.API.KeySource != "env" {
		t.Errorf("KeySource = %q, want default env", cfg.API.KeySource)
	}
	if cfg.Behavior.AutoAllowReadonly {
		t.Error("AutoAllowReadonly should be overridden to false")
	}
	if cfg.Behavior.ContextHistorySize != 5 {
		t.Errorf("ContextHistorySize = %d, want default 5", cfg.Behavior.ContextHistorySize)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	paths := Paths{Dir: t.TempDir()}
	writeFile(t, paths.Config(), "api: [unclosed\n")
	if _, err := NewLoaderWithOptions(paths, "").Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveKeepsBackups(t *testing.T) {
	paths := Paths{Dir: t.TempDir()}
	base := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	i := 0
	now = func() time.Time {
		i++
		return base.Add(time.Duration(i) * time.Second)
	}
	defer func() { now = time.Now }()

	cfg := Default()
	for n := 0; n < MaxBackups+3; n++ {
		cfg.Behavior.ContextHistorySize = n
		if err := Save(paths, cfg); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	if got := len(Backups(paths.Config())); got != MaxBackups {
		t.Errorf("backups = %d, want %d", got, MaxBackups)
	}

	loaded, err := NewLoaderWithOptions(paths, "").Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Behavior.ContextHistorySize != MaxBackups+2 {
		t.Errorf("ContextHistorySize = %d, want last saved value", loaded.Behavior.ContextHistorySize)
	}
}

func TestEnsureDefault(t *testing.T) {
	paths := Paths{Dir: filepath.Join(t.TempDir(), "nested")}
	created, err := EnsureDefault(paths)
	if err != nil || !created {
		t.Fatalf("EnsureDefault() = %v, %v", created, err)
	}
	created, err = EnsureDefault(paths)
	if err != nil || created {
		t.Fatalf("second EnsureDefault() = %v, %v", created, err)
	}
}

func TestGet(t *testing.T) {
	cfg := Default()
	tests := []struct {
		key  string
		want string
	}{
		{"api.provider", "anthropic"},
		{"behavior.max_iterations", "10"},
		{"behavior.auto_allow_readonly", "true"},
	}
	for _, tt := range tests {
		v, err := Get(cfg, tt.key)
		if err != nil {
			t.Fatalf("Get(%q) error = %v", tt.key, err)
		}
		if got := FormatValue(v); got != tt.want {
			t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}

	if _, err := Get(cfg, "api.nope"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Get(unknown) err = %v", err)
	}
	if _, err := Get(cfg, "api.provider.deeper"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Get(through scalar) err = %v", err)
	}
}

func TestSet(t *testing.T) {
	cfg := Default()

	if err := Set(cfg, "behavior.max_iterations", "3"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if cfg.Behavior.MaxIterations != 3 {
		t.Errorf("MaxIterations = %d, want 3", cfg.Behavior.MaxIterations)
	}

	if err := Set(cfg, "behavior.verbose", "true"); err != nil || !cfg.Behavior.Verbose {
		t.Errorf("Set(verbose) = %v, Verbose = %v", err, cfg.Behavior.Verbose)
	}

	if err := Set(cfg, "api.model", "gpt-4o"); err != nil || cfg.API.Model != "gpt-4o" {
		t.Errorf("Set(model) = %v, Model = %q", err, cfg.API.Model)
	}

	if err := Set(cfg, "api.key", "sk-1"); err != nil || cfg.API.Key != "sk-1" {
		t.Errorf("Set(api.key) = %v, Key = %q", err, cfg.API.Key)
	}

	if err := Set(cfg, "behavior.max_iterations", "many"); err == nil {
		t.Error("expected type error")
	}
	if cfg.Behavior.MaxIterations != 3 {
		t.Errorf("failed Set must not modify config, MaxIterations = %d", cfg.Behavior.MaxIterations)
	}

	if err := Set(cfg, "behavior.unknown", "1"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Set(unknown) err = %v", err)
	}
	if err := Set(cfg, "api", "x"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Set(section) err = %v", err)
	}
}

func TestDefaultPathsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultPaths().Config(); got != "/tmp/xdg/wtf/config.yaml" {
		t.Errorf("Config() = %q", got)
	}
}
