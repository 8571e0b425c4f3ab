package conversation

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/yanmxa/wtf/internal/client"
	"github.com/yanmxa/wtf/internal/command"
	"github.com/yanmxa/wtf/internal/executor"
	"github.com/yanmxa/wtf/internal/message"
	"github.com/yanmxa/wtf/internal/permission"
	"github.com/yanmxa/wtf/internal/render"
	"github.com/yanmxa/wtf/internal/system"
)

// TerminalDriver performs effects against a real model, the permission
// gate and a shell, writing everything the user sees to Out.
type TerminalDriver struct {
	Client       client.LLM
	Gate         permission.Approver
	Runner       executor.Runner
	Timeout      time.Duration
	SystemPrompt string
	Out          io.Writer
	Width        int
}

func (d *TerminalDriver) Query(ctx context.Context, c *Context) (string, error) {
	prompt := system.QueryPrompt(c.Snapshot, c.Query)
	if c.Iteration > 0 {
		fmt.Fprintln(d.Out, render.MetaStyle.Render("Analyzing command output..."))
		prompt = system.RequeryPrompt(c.Snapshot, c.Query, c.Outputs)
	}
	resp, err := d.Client.Send(ctx, []message.Message{message.UserMessage(prompt)}, nil, d.SystemPrompt)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (d *TerminalDriver) Decide(ctx context.Context, cmd command.Command) permission.Decision {
	dec := d.Gate.Decide(ctx, cmd)
	if dec.Verdict == permission.Auto {
		fmt.Fprintln(d.Out, render.MetaStyle.Render("Running: ")+render.CommandStyle.Render(cmd.Text))
	}
	if dec.Persisted {
		fmt.Fprintln(d.Out, render.MetaStyle.Render(fmt.Sprintf("  added %q to the allowlist", cmd.AllowlistPattern)))
	}
	return dec
}

func (d *TerminalDriver) Execute(ctx context.Context, cmd command.Command) (string, int) {
	return d.Runner.Execute(ctx, cmd.Text, d.Timeout)
}

func (d *TerminalDriver) Show(c *Context, eff Effect) {
	switch e := eff.(type) {
	case EffExtract:
		fmt.Fprintln(d.Out, render.Markdown(c.Response, d.Width))
	case EffRecordDisposition:
		cmd := c.Commands[e.Index].Text
		switch e.Disposition {
		case Executed:
			last := c.Outputs[len(c.Outputs)-1]
			fmt.Fprint(d.Out, render.CommandOutput(last.Output, last.ExitCode))
		case Denied:
			fmt.Fprintln(d.Out, render.Skipped(cmd, "matches the denylist"))
		case Declined:
			fmt.Fprintln(d.Out, render.Skipped(cmd, "declined"))
		case Skipped:
			fmt.Fprintln(d.Out, render.Skipped(cmd, "not run"))
		}
	case EffReportError:
		fmt.Fprintln(d.Out, render.ErrorLine(e.Err.Error()))
		if hint := client.Hint(e.Err); hint != "" {
			fmt.Fprintln(d.Out, render.HintLine(hint))
		}
	}
}

var _ Driver = (*TerminalDriver)(nil)
