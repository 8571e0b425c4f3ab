package tool

import (
	"context"
	"time"

	"github.com/yanmxa/wtf/internal/command"
	"github.com/yanmxa/wtf/internal/executor"
	"github.com/yanmxa/wtf/internal/permission"
)

const IconRun = "$"

// RunCommandTool executes a shell command after it passes the permission
// gate. It is the only tool whose output is shown to the user.
type RunCommandTool struct {
	Gate    permission.Approver
	Runner  executor.Runner
	Timeout time.Duration
}

func (t *RunCommandTool) Name() string { return "run_command" }
func (t *RunCommandTool) Description() string {
	return "Execute a terminal command and see its output. Use this for commands the user wants to run (git, npm, etc.). The output will be shown to the user."
}
func (t *RunCommandTool) Icon() string { return IconRun }

func (t *RunCommandTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"command":     prop("string", "The shell command to execute"),
		"explanation": prop("string", "One short sentence telling the user what the command does"),
	}, "command")
}

func (t *RunCommandTool) Execute(ctx context.Context, params map[string]any) Result {
	text := stringParam(params, "command")
	if text == "" {
		return Failure("command is required")
	}
	cmd := command.New(text, stringParam(params, "explanation"))

	decision := t.Gate.Decide(ctx, cmd)
	if !decision.Approved {
		msg := "User declined to run this command"
		if decision.Verdict == permission.Deny {
			msg = "Command blocked: it matches the denylist"
		}
		return &ProcessResult{
			Base:    Base{Error: msg, Blocked: true},
			Command: cmd.Text,
		}
	}

	output, exitCode := t.Runner.Execute(ctx, cmd.Text, t.Timeout)
	if output == "" {
		output = "(no output)"
	}
	return &ProcessResult{
		Command:  cmd.Text,
		Output:   output,
		ExitCode: exitCode,
	}
}
