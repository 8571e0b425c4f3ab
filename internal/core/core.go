// Package core runs the agent loop: the model is called with the tool
// schemas, requested tools are executed in order and their results are fed
// back until the model answers with text or the iteration cap is reached.
package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yanmxa/wtf/internal/client"
	"github.com/yanmxa/wtf/internal/log"
	"github.com/yanmxa/wtf/internal/message"
	"github.com/yanmxa/wtf/internal/tool"
)

// DefaultMaxIterations bounds model calls per Run.
const DefaultMaxIterations = 10

// Stop reasons reported in Result.StopReason.
const (
	StopEndTurn       = "end_turn"
	StopMaxIterations = "max_iterations"
	StopCancelled     = "cancelled"
)

// RunOptions controls a single Run.
type RunOptions struct {
	MaxIterations int
	OnToolStart   func(tc message.ToolCall)
	OnToolDone    func(call ToolCall)
}

// ToolCall is the audit record of one executed tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
	Result    tool.Result
	Iteration int
	Duration  time.Duration
}

// Result is returned by Loop.Run.
type Result struct {
	Response   string
	ToolCalls  []ToolCall
	Iterations int
	StopReason string
}

// Commands returns the run_command invocations in execution order.
func (r *Result) Commands() []string {
	var cmds []string
	for _, tc := range r.ToolCalls {
		if pr, ok := tc.Result.(*tool.ProcessResult); ok && pr.Command != "" {
			cmds = append(cmds, pr.Command)
		}
	}
	return cmds
}

// Loop holds the collaborators of the agent loop and the messages of the
// current run.
type Loop struct {
	Client       client.LLM
	Tools        *tool.Registry
	SystemPrompt string

	messages []message.Message
}

// Messages returns the conversation of the last Run.
func (l *Loop) Messages() []message.Message {
	return l.messages
}

// Run answers prompt. Model errors end the run and are returned as is;
// tool failures are reported to the model and never end the run.
func (l *Loop) Run(ctx context.Context, prompt string, opts RunOptions) (*Result, error) {
	maxIterations := opts.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	l.messages = []message.Message{message.UserMessage(prompt)}
	result := &Result{}
	schemas := l.Tools.Schemas()

	for iteration := 1; iteration <= maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			result.StopReason = StopCancelled
			return result, err
		}
		result.Iterations = iteration

		resp, err := l.Client.Send(ctx, l.messages, schemas, l.SystemPrompt)
		if err != nil {
			log.LogError("model call", err)
			return result, err
		}
		l.messages = append(l.messages, message.AssistantMessage(resp.Content, resp.ToolCalls))

		if len(resp.ToolCalls) == 0 {
			result.Response = resp.Content
			result.StopReason = StopEndTurn
			return result, nil
		}

		log.Logger().Debug("tool calls requested",
			zap.Int("iteration", iteration),
			log.ToolCallsField(resp.ToolCalls))

		for _, tc := range resp.ToolCalls {
			if err := ctx.Err(); err != nil {
				result.StopReason = StopCancelled
				return result, err
			}
			if opts.OnToolStart != nil {
				opts.OnToolStart(tc)
			}

			call := l.execTool(ctx, tc, iteration)
			result.ToolCalls = append(result.ToolCalls, call)
			if opts.OnToolDone != nil {
				opts.OnToolDone(call)
			}

			l.messages = append(l.messages, message.ToolResultMessage(message.ToolResult{
				ToolCallID: tc.ID,
				ToolName:   tc.Name,
				Content:    call.Result.ForModel(),
				IsError:    call.Result.Err() != "",
			}))
		}
	}

	result.Response = fmt.Sprintf("Max iterations reached (%d) without a final answer.", maxIterations)
	result.StopReason = StopMaxIterations
	return result, nil
}

func (l *Loop) execTool(ctx context.Context, tc message.ToolCall, iteration int) ToolCall {
	call := ToolCall{ID: tc.ID, Name: tc.Name, Iteration: iteration}
	start := time.Now()

	params, err := message.ParseToolInput(tc.Input)
	if err != nil {
		call.Result = tool.Failure(fmt.Sprintf("Error parsing tool input: %v", err))
	} else {
		call.Arguments = params
		call.Result = l.Tools.Execute(ctx, tc.Name, params)
	}

	call.Duration = time.Since(start)
	log.LogTool(tc.Name, tc.ID, call.Duration.Milliseconds(), call.Result.Err() == "")
	return call
}
