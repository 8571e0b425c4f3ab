package tool

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yanmxa/wtf/internal/log"
	"github.com/yanmxa/wtf/internal/provider"
)

// Registry manages tool registration and execution
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates a new tool registry
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry. Registering a name twice replaces
// the earlier tool.
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := tool.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

// Get retrieves a tool by name
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// List returns all registered tool names in registration order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Schemas returns the tool definitions sent to the model
func (r *Registry) Schemas() []provider.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schemas := make([]provider.Tool, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		schemas = append(schemas, provider.Tool{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return schemas
}

// Execute runs a tool by name with the given parameters
func (r *Registry) Execute(ctx context.Context, name string, params map[string]any) Result {
	tool, ok := r.Get(name)
	if !ok {
		return Failure("unknown tool: " + name)
	}
	if params == nil {
		params = map[string]any{}
	}

	start := time.Now()
	result := tool.Execute(ctx, params)
	log.Logger().Debug("tool executed",
		zap.String("tool", name),
		zap.Duration("duration", time.Since(start)),
		zap.Bool("blocked", result.IsBlocked()),
		zap.String("error", result.Err()))
	return result
}
