package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/yanmxa/wtf/internal/message"
)

type stubProvider struct {
	chunks []message.StreamChunk
}

func (s *stubProvider) Stream(ctx context.Context, opts CompletionOptions) <-chan message.StreamChunk {
	ch := make(chan message.StreamChunk, len(s.chunks))
	for _, c := range s.chunks {
		ch <- c
	}
	close(ch)
	return ch
}

func (s *stubProvider) Name() string { return "stub" }

func TestRegistryGetProvider(t *testing.T) {
	r := NewRegistry()
	meta := ProviderMeta{Provider: ProviderOpenAI, AuthMethod: AuthAPIKey, EnvVars: []string{"OPENAI_API_KEY"}}

	var gotKey string
	r.Register(meta, func(ctx context.Context, apiKey string) (LLMProvider, error) {
		gotKey = apiKey
		return &stubProvider{}, nil
	})

	p, err := r.GetProvider(context.Background(), ProviderOpenAI, AuthAPIKey, "sk-test")
	if err != nil {
		t.Fatalf("GetProvider() error = %v", err)
	}
	if p.Name() != "stub" {
		t.Errorf("Name() = %q, want stub", p.Name())
	}
	if gotKey != "sk-test" {
		t.Errorf("factory got key %q, want sk-test", gotKey)
	}

	if _, err := r.GetProvider(context.Background(), ProviderGoogle, AuthAPIKey, ""); err == nil {
		t.Error("expected error for unregistered provider")
	}

	got, ok := r.GetMeta(ProviderOpenAI, AuthAPIKey)
	if !ok || got.Key() != "openai:api_key" {
		t.Errorf("GetMeta() = %+v, %v", got, ok)
	}
}

func TestIsReady(t *testing.T) {
	meta := ProviderMeta{EnvVars: []string{"WTF_TEST_PROVIDER_KEY"}}
	t.Setenv("WTF_TEST_PROVIDER_KEY", "")
	if IsReady(meta) {
		t.Error("expected not ready with empty env var")
	}
	t.Setenv("WTF_TEST_PROVIDER_KEY", "x")
	if !IsReady(meta) {
		t.Error("expected ready with env var set")
	}
}

func TestComplete(t *testing.T) {
	done := &message.CompletionResponse{Content: "hello", StopReason: "end_turn"}
	p := &stubProvider{chunks: []message.StreamChunk{
		{Type: message.ChunkTypeText, Text: "hel"},
		{Type: message.ChunkTypeText, Text: "lo"},
		{Type: message.ChunkTypeDone, Response: done},
	}}
	resp, err := Complete(context.Background(), p, CompletionOptions{})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "hello" || resp.StopReason != "end_turn" {
		t.Errorf("unexpected response %+v", resp)
	}

	boom := errors.New("boom")
	p = &stubProvider{chunks: []message.StreamChunk{
		{Type: message.ChunkTypeText, Text: "partial"},
		{Type: message.ChunkTypeError, Error: boom},
	}}
	resp, err = Complete(context.Background(), p, CompletionOptions{})
	if !errors.Is(err, boom) {
		t.Fatalf("Complete() error = %v, want boom", err)
	}
	if resp.Content != "partial" {
		t.Errorf("partial content = %q", resp.Content)
	}
}
