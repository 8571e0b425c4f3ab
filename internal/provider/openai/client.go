// Package openai adapts the OpenAI Chat Completions API to provider.LLMProvider.
package openai

import (
	"context"
	"sort"
	"time"

	"github.com/openai/openai-go/v3"

	"github.com/yanmxa/wtf/internal/log"
	"github.com/yanmxa/wtf/internal/message"
	"github.com/yanmxa/wtf/internal/provider"
)

// Client implements the LLMProvider interface using the OpenAI SDK
type Client struct {
	client openai.Client
	name   string
}

// NewClient creates a new OpenAI client with the given SDK client
func NewClient(client openai.Client, name string) *Client {
	return &Client{client: client, name: name}
}

// Name returns the provider name
func (c *Client) Name() string {
	return c.name
}

// convertMessages maps conversation messages to chat completion params,
// prepending the system prompt when present.
func convertMessages(systemPrompt string, msgs []message.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs)+1)
	if systemPrompt != "" {
		out = append(out, openai.SystemMessage(systemPrompt))
	}

	for _, msg := range msgs {
		switch msg.Role {
		case message.RoleUser:
			if msg.ToolResult != nil {
				out = append(out, openai.ToolMessage(msg.ToolResult.Content, msg.ToolResult.ToolCallID))
			} else {
				out = append(out, openai.UserMessage(msg.Content))
			}
		case message.RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(msg.Content))
				continue
			}
			var asstMsg openai.ChatCompletionAssistantMessageParam
			if msg.Content != "" {
				asstMsg.Content.OfString = openai.Opt(msg.Content)
			}
			asstMsg.ToolCalls = make([]openai.ChatCompletionMessageToolCallUnionParam, len(msg.ToolCalls))
			for i, tc := range msg.ToolCalls {
				asstMsg.ToolCalls[i] = openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: tc.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      tc.Name,
							Arguments: tc.Input,
						},
					},
				}
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &asstMsg})
		}
	}
	return out
}

func convertTools(defs []provider.Tool) []openai.ChatCompletionToolUnionParam {
	tools := make([]openai.ChatCompletionToolUnionParam, 0, len(defs))
	for _, t := range defs {
		var funcParams openai.FunctionParameters
		if schema, ok := t.Parameters.(map[string]any); ok {
			funcParams = schema
		}
		tools = append(tools, openai.ChatCompletionToolUnionParam{
			OfFunction: &openai.ChatCompletionFunctionToolParam{
				Function: openai.FunctionDefinitionParam{
					Name:        t.Name,
					Description: openai.String(t.Description),
					Parameters:  funcParams,
				},
			},
		})
	}
	return tools
}

// stopReason maps an OpenAI finish reason onto the shared stop reasons.
func stopReason(finish string) string {
	switch finish {
	case "stop":
		return "end_turn"
	case "tool_calls":
		return "tool_use"
	case "length":
		return "max_tokens"
	default:
		return finish
	}
}

// Stream sends a completion request and returns a channel of streaming chunks
func (c *Client) Stream(ctx context.Context, opts provider.CompletionOptions) <-chan message.StreamChunk {
	ch := make(chan message.StreamChunk)

	go func() {
		defer close(ch)

		params := openai.ChatCompletionNewParams{
			Model:    opts.Model,
			Messages: convertMessages(opts.SystemPrompt, opts.Messages),
		}
		if opts.MaxTokens > 0 {
			params.MaxCompletionTokens = openai.Int(int64(opts.MaxTokens))
		}
		if opts.Temperature > 0 {
			params.Temperature = openai.Float(opts.Temperature)
		}
		if len(opts.Tools) > 0 {
			params.Tools = convertTools(opts.Tools)
		}

		log.LogRequest(c.name, opts.Model, opts)

		stream := c.client.Chat.Completions.NewStreaming(ctx, params)

		toolCalls := make(map[int]*message.ToolCall)
		var response message.CompletionResponse
		streamStart := time.Now()
		chunkCount := 0

		for stream.Next() {
			chunk := stream.Current()
			chunkCount++

			for _, choice := range chunk.Choices {
				if choice.Delta.Content != "" {
					ch <- message.StreamChunk{Type: message.ChunkTypeText, Text: choice.Delta.Content}
					response.Content += choice.Delta.Content
				}

				for _, tc := range choice.Delta.ToolCalls {
					idx := int(tc.Index)
					if _, exists := toolCalls[idx]; !exists {
						toolCalls[idx] = &message.ToolCall{ID: tc.ID, Name: tc.Function.Name}
						ch <- message.StreamChunk{
							Type:     message.ChunkTypeToolStart,
							ToolID:   tc.ID,
							ToolName: tc.Function.Name,
						}
					}
					if tc.Function.Arguments != "" {
						toolCalls[idx].Input += tc.Function.Arguments
						ch <- message.StreamChunk{
							Type:   message.ChunkTypeToolInput,
							ToolID: toolCalls[idx].ID,
							Text:   tc.Function.Arguments,
						}
					}
				}

				if choice.FinishReason != "" {
					response.StopReason = stopReason(choice.FinishReason)
				}
			}

			if chunk.Usage.PromptTokens > 0 {
				response.Usage.InputTokens = int(chunk.Usage.PromptTokens)
			}
			if chunk.Usage.CompletionTokens > 0 {
				response.Usage.OutputTokens = int(chunk.Usage.CompletionTokens)
			}
		}

		log.LogStreamDone(c.name, time.Since(streamStart), chunkCount)

		if err := stream.Err(); err != nil {
			log.LogError(c.name, err)
			ch <- message.StreamChunk{Type: message.ChunkTypeError, Error: err}
			return
		}

		response.ToolCalls = orderedToolCalls(toolCalls)
		log.LogResponse(c.name, response)
		ch <- message.StreamChunk{Type: message.ChunkTypeDone, Response: &response}
	}()

	return ch
}

// orderedToolCalls returns the accumulated calls in stream index order.
func orderedToolCalls(calls map[int]*message.ToolCall) []message.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	idx := make([]int, 0, len(calls))
	for i := range calls {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	out := make([]message.ToolCall, 0, len(idx))
	for _, i := range idx {
		out = append(out, *calls[i])
	}
	return out
}

// Ensure Client implements LLMProvider
var _ provider.LLMProvider = (*Client)(nil)
