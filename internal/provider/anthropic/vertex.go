package anthropic

import (
	"context"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/vertex"

	"github.com/yanmxa/wtf/internal/provider"
)

// VertexMeta is the metadata for Anthropic via Vertex AI
var VertexMeta = provider.ProviderMeta{
	Provider:     provider.ProviderAnthropic,
	AuthMethod:   provider.AuthVertex,
	EnvVars:      []string{"CLOUD_ML_REGION", "ANTHROPIC_VERTEX_PROJECT_ID"},
	DisplayName:  "Anthropic on Vertex AI",
	DefaultModel: "claude-sonnet-4-5@20250929",
}

// NewVertexClient creates a new Anthropic client using Vertex AI
// authentication. The apiKey is ignored; Google application default
// credentials are used instead.
func NewVertexClient(ctx context.Context, _ string) (provider.LLMProvider, error) {
	region := os.Getenv("CLOUD_ML_REGION")
	if region == "" {
		region = "us-east5"
	}
	projectID := os.Getenv("ANTHROPIC_VERTEX_PROJECT_ID")

	client := anthropic.NewClient(
		vertex.WithGoogleAuth(ctx, region, projectID),
	)
	return NewClient(client, "anthropic:vertex"), nil
}

func init() {
	provider.Register(VertexMeta, NewVertexClient)
}
