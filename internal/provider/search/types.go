// Package search provides web search backends for the web_search tool.
package search

import (
	"context"
	"net/http"
	"time"
)

// ProviderName identifies a search provider
type ProviderName string

const (
	ProviderDuckDuckGo ProviderName = "duckduckgo"
	ProviderBrave      ProviderName = "brave"
)

// SearchResult represents a single search result
type SearchResult struct {
	Title   string `json:"title,omitempty"`
	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet"`
}

// SearchOptions configures search behavior
type SearchOptions struct {
	NumResults     int
	AllowedDomains []string
	BlockedDomains []string
	Timeout        time.Duration
}

// DefaultOptions returns default search options
func DefaultOptions() SearchOptions {
	return SearchOptions{
		NumResults: 3,
		Timeout:    10 * time.Second,
	}
}

// truncateSnippet truncates a snippet to maxLength bytes
func truncateSnippet(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength] + "..."
}

// getTimeout returns the timeout or default if not set
func getTimeout(opts SearchOptions) time.Duration {
	if opts.Timeout <= 0 {
		return 10 * time.Second
	}
	return opts.Timeout
}

func httpClient(c *http.Client, opts SearchOptions) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: getTimeout(opts)}
}

// Provider is the interface for search providers
type Provider interface {
	// Name returns the provider name
	Name() ProviderName

	// IsAvailable checks if the provider is configured and ready
	IsAvailable() bool

	// Search performs a web search
	Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error)
}
