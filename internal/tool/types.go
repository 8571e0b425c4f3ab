// Package tool implements the functions the model may call in agent mode.
package tool

import (
	"context"
	"strconv"
	"strings"
)

// Tool is a named function the model can invoke.
type Tool interface {
	// Name returns the tool name sent to the model
	Name() string

	// Description tells the model when to use the tool
	Description() string

	// Icon returns the tool icon emoji
	Icon() string

	// Parameters returns the JSON schema of the arguments
	Parameters() map[string]any

	// Execute runs the tool. Failures are reported in the Result, never
	// as a Go error, so they can be fed back to the model.
	Execute(ctx context.Context, params map[string]any) Result
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

func stringParam(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}

// intParam accepts JSON numbers and numeric strings.
func intParam(params map[string]any, key string, def int) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}
