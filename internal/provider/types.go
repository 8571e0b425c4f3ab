// Package provider defines the LLM provider abstraction and a registry of
// provider implementations keyed by provider name and auth method.
package provider

import (
	"context"

	"github.com/yanmxa/wtf/internal/message"
)

// Provider represents a provider name
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGoogle    Provider = "google"
)

// AuthMethod represents an authentication method
type AuthMethod string

const (
	AuthAPIKey AuthMethod = "api_key"
	AuthVertex AuthMethod = "vertex"
)

// ProviderMeta contains static metadata about a provider
type ProviderMeta struct {
	Provider     Provider
	AuthMethod   AuthMethod
	EnvVars      []string // Required environment variables
	DisplayName  string
	DefaultModel string
	KeyURL       string // Where users obtain an API key
}

// Key returns a unique key for this provider configuration
func (m ProviderMeta) Key() string {
	return makeProviderKey(m.Provider, m.AuthMethod)
}

// CompletionOptions contains options for a completion request
type CompletionOptions struct {
	Model        string
	Messages     []message.Message
	MaxTokens    int
	Temperature  float64
	Tools        []Tool
	SystemPrompt string
}

// Tool represents a tool definition
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  any    `json:"parameters"` // JSON Schema
}

// LLMProvider is the interface that all providers must implement
type LLMProvider interface {
	// Stream sends a completion request and returns a channel of streaming chunks
	Stream(ctx context.Context, opts CompletionOptions) <-chan message.StreamChunk

	// Name returns the provider name
	Name() string
}

// ProviderFactory creates a new LLMProvider instance. An empty apiKey lets
// the SDK fall back to its own environment lookup.
type ProviderFactory func(ctx context.Context, apiKey string) (LLMProvider, error)

// Complete collects stream chunks into a complete response.
func Complete(ctx context.Context, provider LLMProvider, opts CompletionOptions) (message.CompletionResponse, error) {
	var response message.CompletionResponse

	for chunk := range provider.Stream(ctx, opts) {
		switch chunk.Type {
		case message.ChunkTypeText:
			response.Content += chunk.Text
		case message.ChunkTypeToolStart, message.ChunkTypeToolInput:
			// Tool calls are accumulated in the done chunk
		case message.ChunkTypeDone:
			if chunk.Response != nil {
				return *chunk.Response, nil
			}
			return response, nil
		case message.ChunkTypeError:
			return response, chunk.Error
		}
	}

	return response, nil
}
