package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/yanmxa/wtf/internal/provider/search"
	"github.com/yanmxa/wtf/internal/render"
)

// WebSearchTool searches the web for current information.
type WebSearchTool struct {
	Provider search.Provider
}

func (t *WebSearchTool) Name() string { return "web_search" }
func (t *WebSearchTool) Description() string {
	return "Search the web for current information (weather, news, facts, current events). Use this when the user asks about real-time information you don't have."
}
func (t *WebSearchTool) Icon() string { return render.IconWeb }

func (t *WebSearchTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"query":       prop("string", "Search query (e.g., 'weather in San Francisco', 'Python 3.12 release date')"),
		"num_results": prop("integer", "Maximum number of results (default: 3)"),
	}, "query")
}

func (t *WebSearchTool) Execute(ctx context.Context, params map[string]any) Result {
	query := stringParam(params, "query")
	if query == "" {
		return Failure("query is required")
	}

	provider := t.Provider
	if provider == nil {
		provider = search.GetDefaultProvider()
	}
	opts := search.DefaultOptions()
	opts.NumResults = intParam(params, "num_results", opts.NumResults)

	results, err := provider.Search(ctx, query, opts)
	if err != nil {
		return &WebResult{
			Base:    Base{Error: err.Error()},
			Query:   query,
			Content: fmt.Sprintf("Web search failed: %v", err),
		}
	}
	return &WebResult{Query: query, Content: formatResults(results), Results: results}
}

func formatResults(results []search.SearchResult) string {
	if len(results) == 0 {
		return "No results found. Try being more specific."
	}
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		switch {
		case i == 0 && r.Title != "":
			fmt.Fprintf(&sb, "Answer: %s", r.Snippet)
		default:
			sb.WriteString(r.Snippet)
		}
		if r.URL != "" {
			fmt.Fprintf(&sb, " (%s)", r.URL)
		}
	}
	return sb.String()
}
