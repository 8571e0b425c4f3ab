package main

import (
	"context"
	"errors"
	"testing"

	"github.com/yanmxa/wtf/internal/client"
	"github.com/yanmxa/wtf/internal/config"
	"github.com/yanmxa/wtf/internal/core"
	"github.com/yanmxa/wtf/internal/tool"
)

func TestResolveClient(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	tests := []struct {
		name        string
		api         config.API
		wantModel   string
		wantMissing bool
		wantErr     bool
	}{
		{
			name:      "key from config",
			api:       config.API{Provider: "openai", KeySource: "config", Key: "sk-test"},
			wantModel: "gpt-4o",
		},
		{
			name:      "explicit model",
			api:       config.API{Provider: "openai", KeySource: "config", Key: "sk-test", Model: "gpt-4.1"},
			wantModel: "gpt-4.1",
		},
		{
			name:        "empty config key",
			api:         config.API{Provider: "openai", KeySource: "config"},
			wantMissing: true,
		},
		{
			name:        "env var unset",
			api:         config.API{Provider: "openai", KeySource: "env"},
			wantMissing: true,
		},
		{
			name:    "unknown provider",
			api:     config.API{Provider: "moonshot", KeySource: "env"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := resolveClient(context.Background(), tt.api)

			var missing *client.ErrMissingAPIKey
			switch {
			case tt.wantMissing:
				if !errors.As(err, &missing) {
					t.Fatalf("err = %v, want ErrMissingAPIKey", err)
				}
				return
			case tt.wantErr:
				if err == nil {
					t.Fatal("expected error")
				}
				return
			case err != nil:
				t.Fatal(err)
			}
			if c.ModelID() != tt.wantModel {
				t.Errorf("model = %q, want %q", c.ModelID(), tt.wantModel)
			}
		})
	}
}

func TestResolveClientFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	c, err := resolveClient(context.Background(), config.API{Provider: "openai", KeySource: "env"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Name() != "openai" {
		t.Errorf("provider = %q", c.Name())
	}
}

func TestToolSubtitle(t *testing.T) {
	tests := []struct {
		args map[string]any
		want string
	}{
		{map[string]any{"file_path": "main.go", "offset": 3}, "main.go"},
		{map[string]any{"pattern": "TODO", "path": "internal"}, "TODO"},
		{map[string]any{"key": "behavior.verbose", "value": "true"}, "behavior.verbose"},
		{map[string]any{"n": 5}, ""},
	}
	for _, tt := range tests {
		if got := toolSubtitle(tt.args); got != tt.want {
			t.Errorf("toolSubtitle(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestResultCommandsSkipsInternalTools(t *testing.T) {
	res := &core.Result{ToolCalls: []core.ToolCall{
		{Name: "read_file", Result: &tool.FileResult{}},
		{Name: "run_command", Result: &tool.ProcessResult{Command: "git status"}},
	}}
	if got := res.Commands(); len(got) != 1 || got[0] != "git status" {
		t.Errorf("Commands() = %v", got)
	}
}
