package openai

import (
	"testing"

	"github.com/yanmxa/wtf/internal/message"
	"github.com/yanmxa/wtf/internal/provider"
)

func TestConvertMessages(t *testing.T) {
	msgs := []message.Message{
		message.UserMessage("what's on port 8080?"),
		message.AssistantMessage("", []message.ToolCall{
			{ID: "call_1", Name: "run_command", Input: `{"command":"lsof -i :8080"}`},
		}),
		message.ToolResultMessage(message.ToolResult{ToolCallID: "call_1", Content: "node 123"}),
	}

	got := convertMessages("be brief", msgs)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if got[0].OfSystem == nil {
		t.Error("expected system message first")
	}
	if got[2].OfAssistant == nil || len(got[2].OfAssistant.ToolCalls) != 1 {
		t.Fatalf("expected assistant message with one tool call")
	}
	if fn := got[2].OfAssistant.ToolCalls[0].OfFunction; fn == nil || fn.ID != "call_1" {
		t.Errorf("unexpected tool call param: %+v", fn)
	}
	if got[3].OfTool == nil {
		t.Error("expected tool message last")
	}

	if got := convertMessages("", msgs[:1]); len(got) != 1 {
		t.Errorf("no system prompt: len = %d, want 1", len(got))
	}
}

func TestConvertTools(t *testing.T) {
	got := convertTools([]provider.Tool{{Name: "grep", Description: "Search", Parameters: map[string]any{"type": "object"}}})
	if len(got) != 1 || got[0].OfFunction == nil {
		t.Fatalf("unexpected tools: %+v", got)
	}
	if got[0].OfFunction.Function.Name != "grep" {
		t.Errorf("Name = %q", got[0].OfFunction.Function.Name)
	}
}

func TestStopReason(t *testing.T) {
	tests := map[string]string{
		"stop":           "end_turn",
		"tool_calls":     "tool_use",
		"length":         "max_tokens",
		"content_filter": "content_filter",
	}
	for in, want := range tests {
		if got := stopReason(in); got != want {
			t.Errorf("stopReason(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOrderedToolCalls(t *testing.T) {
	calls := map[int]*message.ToolCall{
		2: {ID: "c"},
		0: {ID: "a"},
		1: {ID: "b"},
	}
	got := orderedToolCalls(calls)
	if len(got) != 3 || got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "c" {
		t.Errorf("orderedToolCalls() = %+v", got)
	}
	if orderedToolCalls(nil) != nil {
		t.Error("expected nil for no calls")
	}
}
