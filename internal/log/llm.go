package log

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yanmxa/wtf/internal/message"
	"github.com/yanmxa/wtf/internal/provider"
)

// LogRequest logs an LLM request in human-readable format
func LogRequest(providerName, model string, opts provider.CompletionOptions) {
	turn := NextTurn()
	writeDump(fmt.Sprintf("turn-%03d-request.json", turn), map[string]any{
		"turn":          turn,
		"timestamp":     time.Now().UTC(),
		"provider":      providerName,
		"model":         model,
		"max_tokens":    opts.MaxTokens,
		"system_prompt": opts.SystemPrompt,
		"tools":         opts.Tools,
		"messages":      opts.Messages,
	})
	if !enabled {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "──────── Turn %d ────────\n", turn)
	fmt.Fprintf(&sb, ">>> [%s] %s | max_tokens=%d\n", providerName, model, opts.MaxTokens)
	if len(opts.Tools) > 0 {
		names := make([]string, len(opts.Tools))
		for i, t := range opts.Tools {
			names[i] = t.Name
		}
		fmt.Fprintf(&sb, "    Tools(%d): [%s]\n", len(opts.Tools), strings.Join(names, ", "))
	}
	fmt.Fprintf(&sb, "    Messages(%d):\n", len(opts.Messages))
	for i, msg := range opts.Messages {
		switch msg.Role {
		case message.RoleUser:
			if msg.ToolResult != nil {
				fmt.Fprintf(&sb, "      [%d] ToolResult[%s] error=%t: %s\n", i, msg.ToolResult.ToolCallID, msg.ToolResult.IsError, escapeForLog(msg.ToolResult.Content))
			} else {
				fmt.Fprintf(&sb, "      [%d] User: %s\n", i, escapeForLog(msg.Content))
			}
		case message.RoleAssistant:
			if msg.Content != "" {
				fmt.Fprintf(&sb, "      [%d] Assistant: %s\n", i, escapeForLog(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				fmt.Fprintf(&sb, "      [%d] ToolCall: %s(%s)\n", i, tc.Name, escapeForLog(tc.Input))
			}
		}
	}
	logger.Info(sb.String())
}

// LogResponse logs an LLM response in human-readable format
func LogResponse(providerName string, resp message.CompletionResponse) {
	turn := CurrentTurn()
	writeDump(fmt.Sprintf("turn-%03d-response.json", turn), map[string]any{
		"turn":        turn,
		"timestamp":   time.Now().UTC(),
		"provider":    providerName,
		"stop_reason": resp.StopReason,
		"content":     resp.Content,
		"tool_calls":  resp.ToolCalls,
		"usage":       resp.Usage,
	})
	if !enabled {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<<< [%03d] %s stop=%s | in=%d out=%d\n", turn, providerName, resp.StopReason, resp.Usage.InputTokens, resp.Usage.OutputTokens)
	if resp.Content != "" {
		sb.WriteString("    Content:\n")
		for _, line := range strings.Split(resp.Content, "\n") {
			fmt.Fprintf(&sb, "        %s\n", line)
		}
	}
	for _, tc := range resp.ToolCalls {
		fmt.Fprintf(&sb, "    [%s] %s(%s)\n", tc.ID, tc.Name, escapeForLog(tc.Input))
	}
	logger.Info(sb.String())
}

func writeDump(name string, v any) {
	if !dumpEnabled {
		return
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(dumpDir, name), data, 0644)
}
