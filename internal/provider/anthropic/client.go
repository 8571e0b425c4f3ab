// Package anthropic adapts the Anthropic Messages API to provider.LLMProvider.
package anthropic

import (
	"context"
	"encoding/json"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/yanmxa/wtf/internal/log"
	"github.com/yanmxa/wtf/internal/message"
	"github.com/yanmxa/wtf/internal/provider"
)

// Client implements the LLMProvider interface using the Anthropic SDK
type Client struct {
	client anthropic.Client
	name   string
}

// NewClient creates a new Anthropic client with the given SDK client
func NewClient(client anthropic.Client, name string) *Client {
	return &Client{client: client, name: name}
}

// Name returns the provider name
func (c *Client) Name() string {
	return c.name
}

// convertMessages maps conversation messages to Anthropic message params.
func convertMessages(msgs []message.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case message.RoleUser:
			if msg.ToolResult != nil {
				out = append(out, anthropic.NewUserMessage(
					anthropic.NewToolResultBlock(msg.ToolResult.ToolCallID, msg.ToolResult.Content, msg.ToolResult.IsError),
				))
				continue
			}
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case message.RoleAssistant:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.ToolCalls)+1)
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				var input any = map[string]any{}
				if tc.Input != "" {
					if err := json.Unmarshal([]byte(tc.Input), &input); err != nil {
						input = map[string]any{}
					}
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, input, tc.Name))
			}
			if len(blocks) == 0 {
				blocks = append(blocks, anthropic.NewTextBlock(""))
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		}
	}
	return out
}

// convertTools maps JSON-schema tool definitions to Anthropic tool params.
func convertTools(defs []provider.Tool) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, t := range defs {
		inputSchema := anthropic.ToolInputSchemaParam{}
		if schema, ok := t.Parameters.(map[string]any); ok {
			if properties, ok := schema["properties"]; ok {
				inputSchema.Properties = properties
			}
			inputSchema.Required = requiredFields(schema["required"])
		}
		tools = append(tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: inputSchema,
			},
		})
	}
	return tools
}

func requiredFields(v any) []string {
	switch req := v.(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Stream sends a completion request and returns a channel of streaming chunks
func (c *Client) Stream(ctx context.Context, opts provider.CompletionOptions) <-chan message.StreamChunk {
	ch := make(chan message.StreamChunk)

	go func() {
		defer close(ch)

		params := anthropic.MessageNewParams{
			Model:     anthropic.Model(opts.Model),
			MaxTokens: int64(opts.MaxTokens),
			Messages:  convertMessages(opts.Messages),
		}
		if opts.SystemPrompt != "" {
			params.System = []anthropic.TextBlockParam{{Text: opts.SystemPrompt}}
		}
		if len(opts.Tools) > 0 {
			params.Tools = convertTools(opts.Tools)
		}

		log.LogRequest(c.name, opts.Model, opts)

		stream := c.client.Messages.NewStreaming(ctx, params)

		var (
			currentToolID    string
			currentToolName  string
			currentToolInput string
			response         message.CompletionResponse
		)
		streamStart := time.Now()
		chunkCount := 0

		for stream.Next() {
			event := stream.Current()
			chunkCount++

			switch event.Type {
			case "content_block_start":
				block := event.AsContentBlockStart()
				if block.ContentBlock.Type == "tool_use" {
					currentToolID = block.ContentBlock.ID
					currentToolName = block.ContentBlock.Name
					currentToolInput = ""
					ch <- message.StreamChunk{
						Type:     message.ChunkTypeToolStart,
						ToolID:   currentToolID,
						ToolName: currentToolName,
					}
				}

			case "content_block_delta":
				delta := event.AsContentBlockDelta()
				switch delta.Delta.Type {
				case "text_delta":
					if delta.Delta.Text != "" {
						ch <- message.StreamChunk{Type: message.ChunkTypeText, Text: delta.Delta.Text}
						response.Content += delta.Delta.Text
					}
				case "input_json_delta":
					if delta.Delta.PartialJSON != "" {
						ch <- message.StreamChunk{Type: message.ChunkTypeToolInput, ToolID: currentToolID, Text: delta.Delta.PartialJSON}
						currentToolInput += delta.Delta.PartialJSON
					}
				}

			case "content_block_stop":
				if currentToolID != "" && currentToolName != "" {
					response.ToolCalls = append(response.ToolCalls, message.ToolCall{
						ID:    currentToolID,
						Name:  currentToolName,
						Input: currentToolInput,
					})
					currentToolID, currentToolName, currentToolInput = "", "", ""
				}

			case "message_delta":
				msgDelta := event.AsMessageDelta()
				response.StopReason = string(msgDelta.Delta.StopReason)
				response.Usage.OutputTokens = int(msgDelta.Usage.OutputTokens)

			case "message_start":
				msgStart := event.AsMessageStart()
				response.Usage.InputTokens = int(msgStart.Message.Usage.InputTokens)
			}
		}

		log.LogStreamDone(c.name, time.Since(streamStart), chunkCount)

		if err := stream.Err(); err != nil {
			log.LogError(c.name, err)
			ch <- message.StreamChunk{Type: message.ChunkTypeError, Error: err}
			return
		}

		log.LogResponse(c.name, response)
		ch <- message.StreamChunk{Type: message.ChunkTypeDone, Response: &response}
	}()

	return ch
}

// Ensure Client implements LLMProvider
var _ provider.LLMProvider = (*Client)(nil)
