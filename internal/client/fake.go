package client

import (
	"context"

	"github.com/yanmxa/wtf/internal/message"
	"github.com/yanmxa/wtf/internal/provider"
)

// FakeClient is a test double that returns predefined responses.
//
// Usage:
//
//	fake := &client.FakeClient{
//	    Responses: []message.CompletionResponse{
//	        {Content: "hello", StopReason: "end_turn"},
//	    },
//	}
type FakeClient struct {
	// Responses is the queue of responses to return, consumed in order.
	// If exhausted, a default "no more responses" reply is returned.
	Responses []message.CompletionResponse

	// Model name (defaults to "fake-model")
	Model string

	// ProviderName (defaults to "fake")
	ProviderName string

	// Calls records every set of CompletionOptions received, in order.
	Calls []provider.CompletionOptions

	// ErrorAt injects an error on the Nth call (1-based). 0 means disabled.
	ErrorAt int

	// ErrorValue is the error to inject when ErrorAt triggers.
	ErrorValue error

	callCount int
}

// Send returns the next response synchronously.
func (f *FakeClient) Send(_ context.Context, msgs []message.Message,
	tools []provider.Tool, sysPrompt string) (message.CompletionResponse, error) {
	// Copy so later appends by the caller do not alter the recorded call.
	recorded := append([]message.Message(nil), msgs...)
	f.Calls = append(f.Calls, provider.CompletionOptions{
		Model:        f.ModelID(),
		Messages:     recorded,
		Tools:        tools,
		SystemPrompt: sysPrompt,
	})

	f.callCount++
	if f.ErrorAt > 0 && f.callCount == f.ErrorAt {
		return message.CompletionResponse{}, f.ErrorValue
	}

	if len(f.Responses) == 0 {
		return message.CompletionResponse{Content: "no more responses", StopReason: "end_turn"}, nil
	}
	resp := f.Responses[0]
	f.Responses = f.Responses[1:]
	return resp, nil
}

// Name returns the provider name.
func (f *FakeClient) Name() string {
	if f.ProviderName != "" {
		return f.ProviderName
	}
	return "fake"
}

// ModelID returns the model identifier.
func (f *FakeClient) ModelID() string {
	if f.Model != "" {
		return f.Model
	}
	return "fake-model"
}

var _ LLM = (*FakeClient)(nil)
