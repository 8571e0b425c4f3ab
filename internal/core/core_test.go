package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yanmxa/wtf/internal/client"
	"github.com/yanmxa/wtf/internal/message"
	"github.com/yanmxa/wtf/internal/tool"
)

// echoTool returns its "text" argument as the file content.
type echoTool struct {
	calls []map[string]any
}

func (e *echoTool) Name() string        { return "echo" }
func (e *echoTool) Description() string { return "echo text" }
func (e *echoTool) Icon() string        { return "" }
func (e *echoTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}
func (e *echoTool) Execute(ctx context.Context, params map[string]any) tool.Result {
	e.calls = append(e.calls, params)
	text, _ := params["text"].(string)
	return &tool.FileResult{Path: "echo", Content: text}
}

func newTestLoop(fake *client.FakeClient) (*Loop, *echoTool) {
	echo := &echoTool{}
	reg := tool.NewRegistry()
	reg.Register(echo)
	return &Loop{Client: fake, Tools: reg, SystemPrompt: "system"}, echo
}

func toolUse(calls ...message.ToolCall) message.CompletionResponse {
	return message.CompletionResponse{ToolCalls: calls, StopReason: "tool_use"}
}

func TestRunFinalAnswer(t *testing.T) {
	fake := &client.FakeClient{Responses: []message.CompletionResponse{
		{Content: "All good", StopReason: "end_turn"},
	}}
	loop, _ := newTestLoop(fake)

	res, err := loop.Run(context.Background(), "hi", RunOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Response != "All good" || res.StopReason != StopEndTurn || res.Iterations != 1 {
		t.Errorf("result = %+v", res)
	}
	if len(fake.Calls) != 1 || fake.Calls[0].SystemPrompt != "system" || len(fake.Calls[0].Tools) != 1 {
		t.Errorf("calls = %+v", fake.Calls)
	}
}

func TestRunExecutesToolsInOrder(t *testing.T) {
	fake := &client.FakeClient{Responses: []message.CompletionResponse{
		toolUse(
			message.ToolCall{ID: "t1", Name: "echo", Input: `{"text":"first"}`},
			message.ToolCall{ID: "t2", Name: "echo", Input: `{"text":"second"}`},
		),
		{Content: "done", StopReason: "end_turn"},
	}}
	loop, echo := newTestLoop(fake)

	var started []string
	var done []string
	res, err := loop.Run(context.Background(), "hi", RunOptions{
		OnToolStart: func(tc message.ToolCall) { started = append(started, tc.ID) },
		OnToolDone:  func(call ToolCall) { done = append(done, call.ID) },
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(echo.calls) != 2 || echo.calls[0]["text"] != "first" {
		t.Errorf("tool calls = %v", echo.calls)
	}
	if strings.Join(started, ",") != "t1,t2" || strings.Join(done, ",") != "t1,t2" {
		t.Errorf("started %v done %v", started, done)
	}
	if len(res.ToolCalls) != 2 || res.ToolCalls[1].Iteration != 1 || res.ToolCalls[1].Arguments["text"] != "second" {
		t.Errorf("audit = %+v", res.ToolCalls)
	}
	if res.Iterations != 2 || res.Response != "done" {
		t.Errorf("result = %+v", res)
	}

	// user, assistant(tool calls), result t1, result t2
	second := fake.Calls[1].Messages
	if len(second) != 4 {
		t.Fatalf("second request has %d messages", len(second))
	}
	if second[2].ToolResult == nil || second[2].ToolResult.ToolCallID != "t1" ||
		!strings.Contains(second[2].ToolResult.Content, "first") {
		t.Errorf("first result message = %+v", second[2])
	}
	if second[3].ToolResult.ToolCallID != "t2" {
		t.Errorf("second result message = %+v", second[3])
	}
}

func TestRunToolErrorsGoBackToModel(t *testing.T) {
	fake := &client.FakeClient{Responses: []message.CompletionResponse{
		toolUse(
			message.ToolCall{ID: "t1", Name: "missing", Input: `{}`},
			message.ToolCall{ID: "t2", Name: "echo", Input: `{not json`},
		),
		{Content: "sorry", StopReason: "end_turn"},
	}}
	loop, echo := newTestLoop(fake)

	res, err := loop.Run(context.Background(), "hi", RunOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(echo.calls) != 0 {
		t.Error("malformed input must not reach the tool")
	}
	if res.ToolCalls[0].Result.Err() != "unknown tool: missing" {
		t.Errorf("unknown tool = %q", res.ToolCalls[0].Result.Err())
	}
	if !strings.HasPrefix(res.ToolCalls[1].Result.Err(), "Error parsing tool input") {
		t.Errorf("bad input = %q", res.ToolCalls[1].Result.Err())
	}
	msgs := fake.Calls[1].Messages
	if !msgs[2].ToolResult.IsError || !msgs[3].ToolResult.IsError {
		t.Error("tool failures should be flagged as errors for the model")
	}
}

func TestRunMaxIterations(t *testing.T) {
	var responses []message.CompletionResponse
	for i := 0; i < 5; i++ {
		responses = append(responses, toolUse(message.ToolCall{ID: "t", Name: "echo", Input: `{"text":"x"}`}))
	}
	fake := &client.FakeClient{Responses: responses}
	loop, _ := newTestLoop(fake)

	res, err := loop.Run(context.Background(), "hi", RunOptions{MaxIterations: 3})
	if err != nil {
		t.Fatal(err)
	}
	if res.StopReason != StopMaxIterations {
		t.Errorf("StopReason = %q", res.StopReason)
	}
	if res.Response != "Max iterations reached (3) without a final answer." {
		t.Errorf("Response = %q", res.Response)
	}
	if len(fake.Calls) != 3 || len(res.ToolCalls) != 3 || res.Iterations != 3 {
		t.Errorf("calls %d, tool calls %d, iterations %d", len(fake.Calls), len(res.ToolCalls), res.Iterations)
	}
}

func TestRunModelError(t *testing.T) {
	fake := &client.FakeClient{
		Responses: []message.CompletionResponse{
			toolUse(message.ToolCall{ID: "t1", Name: "echo", Input: `{"text":"x"}`}),
		},
		ErrorAt:    2,
		ErrorValue: client.ErrRateLimit,
	}
	loop, _ := newTestLoop(fake)

	res, err := loop.Run(context.Background(), "hi", RunOptions{})
	if !errors.Is(err, client.ErrRateLimit) {
		t.Fatalf("err = %v", err)
	}
	if len(res.ToolCalls) != 1 {
		t.Errorf("audit lost on error: %+v", res.ToolCalls)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fake := &client.FakeClient{}
	loop, _ := newTestLoop(fake)

	res, err := loop.Run(ctx, "hi", RunOptions{})
	if !errors.Is(err, context.Canceled) || res.StopReason != StopCancelled {
		t.Errorf("err = %v, result = %+v", err, res)
	}
	if len(fake.Calls) != 0 {
		t.Error("model called after cancellation")
	}
}

func TestResultCommands(t *testing.T) {
	res := &Result{ToolCalls: []ToolCall{
		{Name: "run_command", Result: &tool.ProcessResult{Command: "ls"}},
		{Name: "read_file", Result: &tool.FileResult{Path: "a"}},
		{Name: "run_command", Result: &tool.ProcessResult{Command: "pwd"}},
	}}
	if got := strings.Join(res.Commands(), ","); got != "ls,pwd" {
		t.Errorf("Commands() = %q", got)
	}
}
