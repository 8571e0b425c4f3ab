package google

import (
	"context"
	"os"

	"google.golang.org/genai"

	"github.com/yanmxa/wtf/internal/provider"
)

// APIKeyMeta is the metadata for Google via API Key
var APIKeyMeta = provider.ProviderMeta{
	Provider:     provider.ProviderGoogle,
	AuthMethod:   provider.AuthAPIKey,
	EnvVars:      []string{"GOOGLE_API_KEY"},
	DisplayName:  "Google Gemini",
	DefaultModel: "gemini-2.5-flash",
	KeyURL:       "https://makersuite.google.com/app/apikey",
}

// NewAPIKeyClient creates a new Google client using API Key authentication
func NewAPIKeyClient(ctx context.Context, apiKey string) (provider.LLMProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return NewClient(client, "google"), nil
}

func init() {
	provider.Register(APIKeyMeta, NewAPIKeyClient)
}
