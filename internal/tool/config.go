package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/yanmxa/wtf/internal/config"
	"github.com/yanmxa/wtf/internal/render"
)

const redacted = "********"

// GetConfigTool reads configuration values by dot path.
type GetConfigTool struct {
	Paths config.Paths
}

func (t *GetConfigTool) Name() string { return "get_config" }
func (t *GetConfigTool) Description() string {
	return "Get configuration value(s). Use dot notation for nested keys, e.g. 'behavior.auto_allow_readonly'. Internal tool."
}
func (t *GetConfigTool) Icon() string { return render.IconConfig }

func (t *GetConfigTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"key": prop("string", "Specific config key to get (optional, returns all if not provided)"),
	})
}

func (t *GetConfigTool) Execute(ctx context.Context, params map[string]any) Result {
	key := stringParam(params, "key")
	cfg, err := config.NewLoader(t.Paths).Load()
	if err != nil {
		return &ConfigResult{Base: Base{Error: err.Error()}, Key: key}
	}
	cfg.API.Key = redactKey(cfg.API.Key)

	value, err := config.Get(cfg, key)
	if err != nil {
		return &ConfigResult{Base: Base{Error: err.Error()}, Key: key}
	}
	return &ConfigResult{Key: key, Value: value}
}

func redactKey(key string) string {
	if key == "" {
		return ""
	}
	return redacted
}

// UpdateConfigTool changes one setting in the user config file and
// reports the change as a unified diff.
type UpdateConfigTool struct {
	Paths config.Paths
}

func (t *UpdateConfigTool) Name() string { return "update_config" }
func (t *UpdateConfigTool) Description() string {
	return "Update a configuration value. Use dot notation for nested keys, e.g. 'behavior.auto_allow_readonly'. Internal tool."
}
func (t *UpdateConfigTool) Icon() string { return render.IconConfig }

func (t *UpdateConfigTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"key":   prop("string", "Config key to update (use dot notation for nested keys)"),
		"value": prop("string", "New value"),
	}, "key", "value")
}

func (t *UpdateConfigTool) Execute(ctx context.Context, params map[string]any) Result {
	key := stringParam(params, "key")
	if key == "" {
		return Failure("key is required")
	}
	if key == "api.key" {
		return &ConfigResult{
			Base: Base{Error: "Changing the API key requires the user: ask them to run 'wtf config set api.key ...'", Blocked: true},
			Key:  key,
		}
	}
	value, ok := params["value"]
	if !ok {
		return Failure("value is required")
	}

	// only the user file is rewritten, never the project overrides
	cfg, err := config.NewLoaderWithOptions(t.Paths, "").Load()
	if err != nil {
		return &ConfigResult{Base: Base{Error: err.Error()}, Key: key}
	}
	before, err := config.Marshal(cfg)
	if err != nil {
		return &ConfigResult{Base: Base{Error: err.Error()}, Key: key}
	}

	if err := config.Set(cfg, key, fmt.Sprint(value)); err != nil {
		if errors.Is(err, config.ErrUnknownKey) {
			return &ConfigResult{Base: Base{Error: err.Error()}, Key: key}
		}
		return &ConfigResult{Base: Base{Error: "invalid value: " + err.Error()}, Key: key}
	}
	after, err := config.Marshal(cfg)
	if err != nil {
		return &ConfigResult{Base: Base{Error: err.Error()}, Key: key}
	}

	diff := unifiedDiff(t.Paths.Config(), string(before), string(after))
	if diff == "" {
		newValue, _ := config.Get(cfg, key)
		return &ConfigResult{Key: key, Value: newValue}
	}
	if err := config.Save(t.Paths, cfg); err != nil {
		return &ConfigResult{Base: Base{Error: err.Error()}, Key: key}
	}
	newValue, _ := config.Get(cfg, key)
	return &ConfigResult{Key: key, Value: newValue, Updated: true, Diff: diff}
}

// unifiedDiff returns "" when the contents are equal.
func unifiedDiff(path, before, after string) string {
	if before == after {
		return ""
	}
	edits := myers.ComputeEdits(span.URIFromPath(path), before, after)
	return fmt.Sprint(gotextdiff.ToUnified(path, path, before, edits))
}
