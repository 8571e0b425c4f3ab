package anthropic

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/yanmxa/wtf/internal/provider"
)

// APIKeyMeta is the metadata for Anthropic via API Key
var APIKeyMeta = provider.ProviderMeta{
	Provider:     provider.ProviderAnthropic,
	AuthMethod:   provider.AuthAPIKey,
	EnvVars:      []string{"ANTHROPIC_API_KEY"},
	DisplayName:  "Anthropic",
	DefaultModel: "claude-sonnet-4-5",
	KeyURL:       "https://console.anthropic.com/settings/keys",
}

// NewAPIKeyClient creates a new Anthropic client using API Key authentication
func NewAPIKeyClient(ctx context.Context, apiKey string) (provider.LLMProvider, error) {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return NewClient(anthropic.NewClient(opts...), "anthropic"), nil
}

func init() {
	provider.Register(APIKeyMeta, NewAPIKeyClient)
}
