package tool

import (
	"net/http"
	"time"

	"github.com/yanmxa/wtf/internal/config"
	"github.com/yanmxa/wtf/internal/executor"
	"github.com/yanmxa/wtf/internal/history"
	"github.com/yanmxa/wtf/internal/permission"
	"github.com/yanmxa/wtf/internal/provider/search"
)

// Env holds what the built-in tools need from the running process.
type Env struct {
	Cwd            string
	Gate           permission.Approver
	Runner         executor.Runner
	CommandTimeout time.Duration
	History        *history.Log
	Paths          config.Paths
	Search         search.Provider
	HTTPClient     *http.Client
}

// Defaults returns a registry with every built-in tool. run_command is
// registered first.
func Defaults(env Env) *Registry {
	r := NewRegistry()
	r.Register(&RunCommandTool{Gate: env.Gate, Runner: env.Runner, Timeout: env.CommandTimeout})
	r.Register(&ReadFileTool{Cwd: env.Cwd})
	r.Register(&GrepTool{Cwd: env.Cwd})
	r.Register(&GlobFilesTool{Cwd: env.Cwd})
	r.Register(&LookupHistoryTool{Log: env.History})
	r.Register(&GetConfigTool{Paths: env.Paths})
	r.Register(&UpdateConfigTool{Paths: env.Paths})
	r.Register(&WebSearchTool{Provider: env.Search})
	r.Register(&WebFetchTool{Client: env.HTTPClient})
	return r
}
