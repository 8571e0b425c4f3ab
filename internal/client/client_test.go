package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/yanmxa/wtf/internal/message"
	"github.com/yanmxa/wtf/internal/provider"
)

// --- mock provider for Client tests ---

type mockProvider struct {
	errs      []error // returned in order before responses
	responses []message.CompletionResponse
	calls     int
}

func (m *mockProvider) Stream(_ context.Context, opts provider.CompletionOptions) <-chan message.StreamChunk {
	ch := make(chan message.StreamChunk, 1)
	m.calls++
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		ch <- message.StreamChunk{Type: message.ChunkTypeError, Error: err}
		close(ch)
		return ch
	}
	resp := message.CompletionResponse{Content: "no more responses", StopReason: "end_turn"}
	if len(m.responses) > 0 {
		resp = m.responses[0]
		m.responses = m.responses[1:]
	}
	ch <- message.StreamChunk{Type: message.ChunkTypeDone, Response: &resp}
	close(ch)
	return ch
}

func (m *mockProvider) Name() string { return "mock" }

func TestClientSend(t *testing.T) {
	mp := &mockProvider{
		responses: []message.CompletionResponse{
			{Content: "hello", StopReason: "end_turn", Usage: message.Usage{InputTokens: 10, OutputTokens: 5}},
		},
	}
	c := &Client{Provider: mp, Model: "test-model", MaxTokens: 4096}

	resp, err := c.Send(context.Background(), []message.Message{message.UserMessage("hi")}, nil, "system prompt")
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if resp.Content != "hello" {
		t.Errorf("expected 'hello', got '%s'", resp.Content)
	}
	if tok := c.Tokens(); tok.TotalTokens != 15 {
		t.Errorf("TotalTokens = %d, want 15", tok.TotalTokens)
	}
}

func TestClientRetriesTransientErrors(t *testing.T) {
	mp := &mockProvider{
		errs: []error{
			errors.New("429 rate limit exceeded"),
			errors.New("dial tcp: connection refused"),
		},
		responses: []message.CompletionResponse{{Content: "ok", StopReason: "end_turn"}},
	}
	c := &Client{Provider: mp, Model: "m", BaseDelay: time.Millisecond}

	resp, err := c.Send(context.Background(), nil, nil, "")
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("Content = %q", resp.Content)
	}
	if mp.calls != 3 {
		t.Errorf("calls = %d, want 3", mp.calls)
	}
}

func TestClientGivesUpAfterMaxRetries(t *testing.T) {
	mp := &mockProvider{errs: []error{
		errors.New("rate limit"), errors.New("rate limit"), errors.New("rate limit"), errors.New("rate limit"), errors.New("rate limit"),
	}}
	c := &Client{Provider: mp, Model: "m", BaseDelay: time.Millisecond}

	_, err := c.Send(context.Background(), nil, nil, "")
	if !errors.Is(err, ErrRateLimit) {
		t.Fatalf("err = %v, want ErrRateLimit", err)
	}
	if mp.calls != DefaultMaxRetries+1 {
		t.Errorf("calls = %d, want %d", mp.calls, DefaultMaxRetries+1)
	}
}

func TestClientDoesNotRetryInvalidKey(t *testing.T) {
	mp := &mockProvider{errs: []error{errors.New("401 invalid x-api-key")}}
	c := &Client{Provider: mp, Model: "m", BaseDelay: time.Millisecond}

	_, err := c.Send(context.Background(), nil, nil, "")
	if !errors.Is(err, ErrInvalidAPIKey) {
		t.Fatalf("err = %v, want ErrInvalidAPIKey", err)
	}
	if mp.calls != 1 {
		t.Errorf("calls = %d, want 1", mp.calls)
	}
}

func TestClientStopsOnCancel(t *testing.T) {
	mp := &mockProvider{errs: []error{errors.New("timeout"), errors.New("timeout")}}
	c := &Client{Provider: mp, Model: "m", BaseDelay: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := c.Send(ctx, nil, nil, "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestBackoff(t *testing.T) {
	c := &Client{BaseDelay: time.Second}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	for i, w := range want {
		if got := c.backoff(i); got != w {
			t.Errorf("backoff(%d) = %v, want %v", i, got, w)
		}
	}
	if (&Client{MaxRetries: -1}).maxRetries() != 0 {
		t.Error("negative MaxRetries should disable retries")
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want error
	}{
		{errors.New("Error 429: Too Many Requests"), ErrRateLimit},
		{errors.New("authentication_error: invalid x-api-key"), ErrInvalidAPIKey},
		{errors.New("API key not valid. Please pass a valid API key."), ErrInvalidAPIKey},
		{errors.New("Post https://api: dial tcp: no such host"), ErrNetwork},
		{errors.New("overloaded_error"), ErrServer},
	}
	for _, tt := range tests {
		got := ClassifyError(tt.err, "anthropic")
		if !errors.Is(got, tt.want) {
			t.Errorf("ClassifyError(%q) = %v, want %v", tt.err, got, tt.want)
		}
		if !errors.Is(got, tt.err) {
			t.Errorf("ClassifyError(%q) lost the cause", tt.err)
		}
	}

	unknown := ClassifyError(errors.New("something odd"), "openai")
	if Retryable(unknown) {
		t.Error("unclassified errors should not be retryable")
	}
	if ClassifyError(nil, "x") != nil {
		t.Error("nil error should stay nil")
	}
}

func TestClassifySDKStatus(t *testing.T) {
	header := http.Header{}
	header.Set("Retry-After", "7")
	sdkErr := &anthropic.Error{
		StatusCode: http.StatusTooManyRequests,
		Request:    httptest.NewRequest(http.MethodPost, "https://api.anthropic.com/v1/messages", nil),
		Response:   &http.Response{StatusCode: http.StatusTooManyRequests, Header: header},
	}

	got := ClassifyError(fmt.Errorf("stream: %w", sdkErr), "anthropic")
	var apiErr *APIError
	if !errors.As(got, &apiErr) {
		t.Fatalf("expected *APIError, got %T", got)
	}
	if apiErr.Kind != ErrRateLimit {
		t.Errorf("Kind = %v, want ErrRateLimit", apiErr.Kind)
	}
	if apiErr.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %v, want 7s", apiErr.RetryAfter)
	}
}

func TestHint(t *testing.T) {
	missing := &ErrMissingAPIKey{Meta: provider.ProviderMeta{
		Provider: provider.ProviderOpenAI,
		EnvVars:  []string{"OPENAI_API_KEY"},
		KeyURL:   "https://platform.openai.com/api-keys",
	}}
	if !errors.Is(missing, ErrInvalidAPIKey) {
		t.Error("missing key should be an invalid-key error")
	}
	if h := Hint(missing); !strings.Contains(h, "platform.openai.com") || !strings.Contains(h, "OPENAI_API_KEY") {
		t.Errorf("Hint(missing) = %q", h)
	}
	if h := Hint(ClassifyError(errors.New("rate limit"), "x")); !strings.Contains(h, "Rate limited") {
		t.Errorf("Hint(rate limit) = %q", h)
	}
	if Hint(errors.New("other")) != "" {
		t.Error("expected no hint for unclassified errors")
	}
}

func TestFakeClient(t *testing.T) {
	boom := errors.New("boom")
	f := &FakeClient{
		Responses:  []message.CompletionResponse{{Content: "a"}},
		ErrorAt:    2,
		ErrorValue: boom,
	}
	if resp, _ := f.Send(context.Background(), nil, nil, "s"); resp.Content != "a" {
		t.Errorf("first = %q", resp.Content)
	}
	if _, err := f.Send(context.Background(), nil, nil, "s"); !errors.Is(err, boom) {
		t.Errorf("second err = %v", err)
	}
	if resp, _ := f.Send(context.Background(), nil, nil, "s"); resp.Content != "no more responses" {
		t.Errorf("third = %q", resp.Content)
	}
	if len(f.Calls) != 3 {
		t.Errorf("Calls = %d", len(f.Calls))
	}
}
