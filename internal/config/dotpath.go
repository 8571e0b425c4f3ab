package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownKey is returned for dot paths that do not name a setting.
var ErrUnknownKey = errors.New("unknown config key")

// toTree converts cfg into nested maps keyed by YAML field names.
func toTree(cfg *Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// Get returns the value at a dot path such as "behavior.max_iterations".
// An empty key returns the whole configuration tree.
func Get(cfg *Config, key string) (any, error) {
	tree, err := toTree(cfg)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return tree, nil
	}

	var cur any = tree
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		cur, ok = m[part]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
	}
	return cur, nil
}

// Set assigns value at a dot path. value is parsed as a YAML scalar, so
// "true" becomes a bool and "10" an int; the result must still decode into
// Config or the change is rejected and cfg is left untouched.
func Set(cfg *Config, key, value string) error {
	parts := strings.Split(key, ".")
	if key == "" || len(parts) < 2 {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	tree, err := toTree(cfg)
	if err != nil {
		return err
	}

	parent := tree
	for _, part := range parts[:len(parts)-1] {
		next, ok := parent[part].(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		parent = next
	}
	leaf := parts[len(parts)-1]
	if _, ok := parent[leaf]; !ok && !optionalKeys[key] {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	var parsed any
	if err := yaml.Unmarshal([]byte(value), &parsed); err != nil || parsed == nil {
		parsed = value
	}
	parent[leaf] = parsed

	data, err := yaml.Marshal(tree)
	if err != nil {
		return err
	}
	updated := Default()
	if err := yaml.Unmarshal(data, updated); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*cfg = *updated
	return nil
}

// optionalKeys may be absent from the tree because they are omitempty.
var optionalKeys = map[string]bool{"api.key": true}

// FormatValue renders a Get result for display.
func FormatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		data, err := yaml.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return trimDoc(data)
	default:
		return fmt.Sprint(val)
	}
}
