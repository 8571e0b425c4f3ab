// Package google adapts the Gemini API to provider.LLMProvider.
package google

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/yanmxa/wtf/internal/log"
	"github.com/yanmxa/wtf/internal/message"
	"github.com/yanmxa/wtf/internal/provider"
)

// Client implements the LLMProvider interface using the Google GenAI SDK
type Client struct {
	client *genai.Client
	name   string
}

// NewClient creates a new Google client with the given SDK client
func NewClient(client *genai.Client, name string) *Client {
	return &Client{client: client, name: name}
}

// Name returns the provider name
func (c *Client) Name() string {
	return c.name
}

// convertMessages maps conversation messages to Gemini contents.
func convertMessages(msgs []message.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(msgs))
	for _, msg := range msgs {
		role := "user"
		if msg.Role == message.RoleAssistant {
			role = "model"
		}

		var parts []*genai.Part
		switch {
		case msg.ToolResult != nil:
			var result map[string]any
			if err := json.Unmarshal([]byte(msg.ToolResult.Content), &result); err != nil {
				result = map[string]any{"result": msg.ToolResult.Content}
			}
			parts = append(parts, &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					ID:       msg.ToolResult.ToolCallID,
					Name:     msg.ToolResult.ToolName,
					Response: result,
				},
			})
		case len(msg.ToolCalls) > 0:
			if msg.Content != "" {
				parts = append(parts, &genai.Part{Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				var args map[string]any
				if tc.Input != "" {
					if err := json.Unmarshal([]byte(tc.Input), &args); err != nil {
						args = nil
					}
				}
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{ID: tc.ID, Name: tc.Name, Args: args},
				})
			}
		default:
			parts = append(parts, &genai.Part{Text: msg.Content})
		}

		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}
	return contents
}

func buildConfig(opts provider.CompletionOptions) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if opts.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: opts.SystemPrompt}}}
	}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.Temperature > 0 {
		temp := float32(opts.Temperature)
		config.Temperature = &temp
	}
	if len(opts.Tools) > 0 {
		funcDecls := make([]*genai.FunctionDeclaration, 0, len(opts.Tools))
		for _, t := range opts.Tools {
			fd := &genai.FunctionDeclaration{Name: t.Name, Description: t.Description}
			if t.Parameters != nil {
				fd.ParametersJsonSchema = t.Parameters
			}
			funcDecls = append(funcDecls, fd)
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: funcDecls}}
	}
	return config
}

// Stream sends a completion request and returns a channel of streaming chunks
func (c *Client) Stream(ctx context.Context, opts provider.CompletionOptions) <-chan message.StreamChunk {
	ch := make(chan message.StreamChunk)

	go func() {
		defer close(ch)

		contents := convertMessages(opts.Messages)
		config := buildConfig(opts)

		log.LogRequest(c.name, opts.Model, opts)

		var response message.CompletionResponse
		for result, err := range c.client.Models.GenerateContentStream(ctx, opts.Model, contents, config) {
			if err != nil {
				log.LogError(c.name, err)
				ch <- message.StreamChunk{Type: message.ChunkTypeError, Error: err}
				return
			}

			for _, candidate := range result.Candidates {
				if candidate.Content == nil {
					continue
				}
				for _, part := range candidate.Content.Parts {
					if part.Text != "" {
						ch <- message.StreamChunk{Type: message.ChunkTypeText, Text: part.Text}
						response.Content += part.Text
					}
					if part.FunctionCall != nil {
						fc := part.FunctionCall
						id := fc.ID
						if id == "" {
							// Gemini API calls may arrive without IDs.
							id = fmt.Sprintf("call_%d", len(response.ToolCalls)+1)
						}
						argsJSON, _ := json.Marshal(fc.Args)
						ch <- message.StreamChunk{Type: message.ChunkTypeToolStart, ToolID: id, ToolName: fc.Name}
						ch <- message.StreamChunk{Type: message.ChunkTypeToolInput, ToolID: id, Text: string(argsJSON)}
						response.ToolCalls = append(response.ToolCalls, message.ToolCall{
							ID:    id,
							Name:  fc.Name,
							Input: string(argsJSON),
						})
					}
				}
				if candidate.FinishReason != "" {
					response.StopReason = stopReason(candidate.FinishReason)
				}
			}

			if result.UsageMetadata != nil {
				response.Usage.InputTokens = int(result.UsageMetadata.PromptTokenCount)
				response.Usage.OutputTokens = int(result.UsageMetadata.CandidatesTokenCount)
			}
		}

		if len(response.ToolCalls) > 0 && (response.StopReason == "" || response.StopReason == "end_turn") {
			response.StopReason = "tool_use"
		}

		log.LogResponse(c.name, response)
		ch <- message.StreamChunk{Type: message.ChunkTypeDone, Response: &response}
	}()

	return ch
}

func stopReason(reason genai.FinishReason) string {
	switch reason {
	case genai.FinishReasonStop:
		return "end_turn"
	case genai.FinishReasonMaxTokens:
		return "max_tokens"
	default:
		return string(reason)
	}
}

// Ensure Client implements LLMProvider
var _ provider.LLMProvider = (*Client)(nil)
