// Package client wraps an LLM provider with model configuration, token
// accounting and retry with exponential backoff.
package client

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/yanmxa/wtf/internal/log"
	"github.com/yanmxa/wtf/internal/message"
	"github.com/yanmxa/wtf/internal/provider"
)

const (
	defaultMaxTokens  = 4096
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
)

// LLM is the model collaborator used by the agent loop and the legacy
// conversation driver.
type LLM interface {
	Send(ctx context.Context, msgs []message.Message, tools []provider.Tool, sysPrompt string) (message.CompletionResponse, error)
	Name() string
	ModelID() string
}

// TokenUsage tracks token consumption for a conversation.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Client wraps an LLM provider with model and token configuration.
type Client struct {
	Provider  provider.LLMProvider
	Model     string
	MaxTokens int

	// MaxRetries bounds retries of transient failures. Negative disables
	// retries; zero means DefaultMaxRetries.
	MaxRetries int
	// BaseDelay is the first backoff delay; each retry doubles it.
	BaseDelay time.Duration

	tokens TokenUsage
}

// AddUsage accumulates token usage from a completion response.
func (c *Client) AddUsage(usage message.Usage) {
	c.tokens.InputTokens += usage.InputTokens
	c.tokens.OutputTokens += usage.OutputTokens
	c.tokens.TotalTokens = c.tokens.InputTokens + c.tokens.OutputTokens
}

// Tokens returns the accumulated token usage.
func (c *Client) Tokens() TokenUsage {
	return c.tokens
}

// Send sends a completion request, retrying rate limits and transient
// failures with exponential backoff. Returned errors are *APIError values
// when the failure could be classified.
func (c *Client) Send(ctx context.Context, msgs []message.Message,
	tools []provider.Tool, sysPrompt string) (message.CompletionResponse, error) {
	opts := c.opts(msgs, tools, sysPrompt)
	maxRetries := c.maxRetries()

	for attempt := 0; ; attempt++ {
		resp, err := provider.Complete(ctx, c.Provider, opts)
		if err == nil {
			c.AddUsage(resp.Usage)
			log.Logger().Debug("completion done",
				zap.String("provider", c.Name()),
				zap.Int("attempt", attempt+1),
				log.UsageField(resp.Usage))
			return resp, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return resp, ctxErr
		}

		classified := ClassifyError(err, c.Name())
		if !Retryable(classified) || attempt >= maxRetries {
			return resp, classified
		}

		wait := c.backoff(attempt)
		var apiErr *APIError
		if errors.As(classified, &apiErr) && apiErr.RetryAfter > 0 {
			wait = apiErr.RetryAfter
		}
		log.Logger().Warn("retrying model call",
			zap.String("provider", c.Name()),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(classified))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return resp, ctx.Err()
		case <-timer.C:
		}
	}
}

// Name returns the provider name (e.g., "anthropic").
func (c *Client) Name() string {
	return c.Provider.Name()
}

// ModelID returns the model identifier.
func (c *Client) ModelID() string {
	return c.Model
}

func (c *Client) maxRetries() int {
	switch {
	case c.MaxRetries < 0:
		return 0
	case c.MaxRetries == 0:
		return DefaultMaxRetries
	default:
		return c.MaxRetries
	}
}

// backoff returns BaseDelay * 2^attempt.
func (c *Client) backoff(attempt int) time.Duration {
	base := c.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	return base << attempt
}

// opts builds CompletionOptions from the client's configuration.
func (c *Client) opts(msgs []message.Message, tools []provider.Tool, sysPrompt string) provider.CompletionOptions {
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return provider.CompletionOptions{
		Model:        c.Model,
		Messages:     msgs,
		MaxTokens:    maxTokens,
		Tools:        tools,
		SystemPrompt: sysPrompt,
	}
}

var _ LLM = (*Client)(nil)
