package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/yanmxa/wtf/internal/client"
	"github.com/yanmxa/wtf/internal/config"
	"github.com/yanmxa/wtf/internal/conversation"
	"github.com/yanmxa/wtf/internal/core"
	"github.com/yanmxa/wtf/internal/executor"
	"github.com/yanmxa/wtf/internal/history"
	"github.com/yanmxa/wtf/internal/log"
	"github.com/yanmxa/wtf/internal/permission"
	"github.com/yanmxa/wtf/internal/provider"
	"github.com/yanmxa/wtf/internal/render"
	"github.com/yanmxa/wtf/internal/system"
	"github.com/yanmxa/wtf/internal/tool"
)

const renderWidth = 80

// app wires the collaborators of one wtf invocation.
type app struct {
	paths   config.Paths
	cfg     *config.Config
	cwd     string
	out     io.Writer
	gate    *permission.Gate
	runner  executor.Runner
	history *history.Log
}

func newApp(paths config.Paths, out io.Writer, in io.Reader) (*app, error) {
	cfg, err := config.NewLoader(paths).Load()
	if err != nil {
		return nil, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	prompter := permission.NewPrompter(in, out)
	prompter.Width = renderWidth

	return &app{
		paths:   paths,
		cfg:     cfg,
		cwd:     cwd,
		out:     out,
		gate:    permission.NewGate(permission.NewStore(paths.Allowlist()), cfg.Behavior, prompter),
		runner:  &executor.Shell{Dir: cwd},
		history: history.Open(paths.History()),
	}, nil
}

func (a *app) close() {
	if a.history != nil {
		_ = a.history.Close()
	}
}

func (a *app) commandTimeout() time.Duration {
	return time.Duration(a.cfg.Behavior.CommandTimeout) * time.Second
}

func (a *app) maxIterations() int {
	if maxIterationsFlag > 0 {
		return maxIterationsFlag
	}
	return a.cfg.Behavior.MaxIterations
}

// newClient resolves the configured provider, honoring --provider and
// --model.
func (a *app) newClient(ctx context.Context) (*client.Client, error) {
	api := a.cfg.API
	if providerFlag != "" && providerFlag != api.Provider {
		api.Provider = providerFlag
		api.Model = ""
		if api.KeySource == "vertex" {
			api.KeySource = "env"
		}
	}
	if modelFlag != "" {
		api.Model = modelFlag
	}
	return resolveClient(ctx, api)
}

func resolveClient(ctx context.Context, api config.API) (*client.Client, error) {
	name := provider.Provider(api.Provider)
	auth := provider.AuthAPIKey
	if api.KeySource == "vertex" {
		auth = provider.AuthVertex
	}
	meta, ok := provider.GetMeta(name, auth)
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", api.Provider)
	}

	var key string
	switch {
	case api.KeySource == "config":
		if api.Key == "" {
			return nil, &client.ErrMissingAPIKey{Meta: meta}
		}
		key = api.Key
	case !provider.IsReady(meta):
		return nil, &client.ErrMissingAPIKey{Meta: meta}
	case auth == provider.AuthAPIKey:
		key = os.Getenv(meta.EnvVars[0])
	}

	p, err := provider.GetProvider(ctx, name, auth, key)
	if err != nil {
		return nil, err
	}
	model := api.Model
	if model == "" {
		model = meta.DefaultModel
	}
	return &client.Client{Provider: p, Model: model}, nil
}

// fail reports a turn-level error and records it in the history.
func (a *app) fail(query string, commands []string, err error) error {
	fmt.Fprintln(a.out, render.ErrorLine(err.Error()))
	if hint := client.Hint(err); hint != "" {
		fmt.Fprintln(a.out, render.HintLine(hint))
	}
	a.record(query, "", commands, 1)
	return shownError{err}
}

func (a *app) record(query, response string, commands []string, exitCode int) {
	err := a.history.Append(history.Entry{
		Query:    query,
		Response: response,
		Commands: commands,
		ExitCode: exitCode,
	})
	if err != nil {
		log.LogError("append history", err)
	}
}

func (a *app) instructions() string {
	return system.LoadInstructions(a.paths.Instructions())
}

func (a *app) runAgent(ctx context.Context, query string) error {
	llm, err := a.newClient(ctx)
	if err != nil {
		return a.fail(query, nil, err)
	}

	snap := system.Gather(ctx, a.cwd, a.cfg.Shell, a.cfg.Behavior.ContextHistorySize)
	registry := tool.Defaults(tool.Env{
		Cwd:            a.cwd,
		Gate:           a.gate,
		Runner:         a.runner,
		CommandTimeout: a.commandTimeout(),
		History:        a.history,
		Paths:          a.paths,
	})
	loop := &core.Loop{
		Client:       llm,
		Tools:        registry,
		SystemPrompt: system.Prompt(system.ModeAgent, a.instructions()),
	}

	res, err := loop.Run(ctx, system.QueryPrompt(snap, query), core.RunOptions{
		MaxIterations: a.maxIterations(),
		OnToolDone:    func(call core.ToolCall) { a.showToolCall(registry, call) },
	})
	if err != nil {
		return a.fail(query, res.Commands(), err)
	}

	fmt.Fprintln(a.out, render.Markdown(res.Response, renderWidth))
	if a.cfg.Behavior.Verbose {
		tokens := llm.Tokens()
		fmt.Fprintln(a.out, render.MetaStyle.Render(fmt.Sprintf(
			"%s · %d iterations · %d tool calls · %d tokens",
			llm.ModelID(), res.Iterations, len(res.ToolCalls), tokens.TotalTokens)))
	}
	a.record(query, res.Response, res.Commands(), 0)
	return nil
}

// showToolCall prints command output in full and one activity line for
// every internal tool.
func (a *app) showToolCall(registry *tool.Registry, call core.ToolCall) {
	if pr, ok := call.Result.(*tool.ProcessResult); ok {
		switch {
		case pr.IsBlocked():
			fmt.Fprintln(a.out, render.Skipped(pr.Command, pr.Err()))
		default:
			fmt.Fprintln(a.out, render.CommandStyle.Render("$ "+pr.Command))
			fmt.Fprint(a.out, render.CommandOutput(pr.Output, pr.ExitCode))
		}
		return
	}

	icon := ""
	if t, ok := registry.Get(call.Name); ok {
		icon = t.Icon()
	}
	subtitle := toolSubtitle(call.Arguments)
	if msg := call.Result.Err(); msg != "" {
		subtitle += " " + render.WarnStyle.Render(msg)
	}
	fmt.Fprintln(a.out, render.ToolActivity(icon, call.Name, subtitle, call.Duration))
}

// toolSubtitle picks the argument that best describes a tool call.
func toolSubtitle(args map[string]any) string {
	for _, key := range []string{"file_path", "pattern", "query", "url", "key"} {
		if v, ok := args[key].(string); ok && v != "" {
			return render.Truncate(v, 60)
		}
	}
	return ""
}

func (a *app) runLegacy(ctx context.Context, query string) error {
	llm, err := a.newClient(ctx)
	if err != nil {
		return a.fail(query, nil, err)
	}

	snap := system.Gather(ctx, a.cwd, a.cfg.Shell, a.cfg.Behavior.ContextHistorySize)
	c := conversation.NewContext(query, snap, a.maxIterations())
	driver := &conversation.TerminalDriver{
		Client:       llm,
		Gate:         a.gate,
		Runner:       a.runner,
		Timeout:      a.commandTimeout(),
		SystemPrompt: system.Prompt(system.ModeLegacy, a.instructions()),
		Out:          a.out,
		Width:        renderWidth,
	}

	err = conversation.New(c, driver).Run(ctx)
	a.record(query, c.Response, c.CommandTexts(), c.ExitCode())
	if err != nil {
		// the driver reports turn errors itself
		return shownError{err}
	}
	return nil
}
