package openai

import (
	"context"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/yanmxa/wtf/internal/provider"
)

// APIKeyMeta is the metadata for OpenAI via API Key
var APIKeyMeta = provider.ProviderMeta{
	Provider:     provider.ProviderOpenAI,
	AuthMethod:   provider.AuthAPIKey,
	EnvVars:      []string{"OPENAI_API_KEY"},
	DisplayName:  "OpenAI",
	DefaultModel: "gpt-4o",
	KeyURL:       "https://platform.openai.com/api-keys",
}

// NewAPIKeyClient creates a new OpenAI client using API Key authentication
func NewAPIKeyClient(ctx context.Context, apiKey string) (provider.LLMProvider, error) {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return NewClient(openai.NewClient(opts...), "openai"), nil
}

func init() {
	provider.Register(APIKeyMeta, NewAPIKeyClient)
}
