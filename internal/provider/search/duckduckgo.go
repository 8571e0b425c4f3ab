package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const duckDuckGoEndpoint = "https://api.duckduckgo.com/"

// DuckDuckGoProvider queries the DuckDuckGo instant answer API. It needs no
// API key, so it is always available.
type DuckDuckGoProvider struct {
	Endpoint string
	Client   *http.Client
}

// NewDuckDuckGoProvider creates a new DuckDuckGo provider
func NewDuckDuckGoProvider() *DuckDuckGoProvider {
	return &DuckDuckGoProvider{Endpoint: duckDuckGoEndpoint}
}

func (p *DuckDuckGoProvider) Name() ProviderName { return ProviderDuckDuckGo }
func (p *DuckDuckGoProvider) IsAvailable() bool  { return true }

type ddgTopic struct {
	Text     string     `json:"Text"`
	FirstURL string     `json:"FirstURL"`
	Topics   []ddgTopic `json:"Topics"`
}

type ddgResponse struct {
	Heading       string     `json:"Heading"`
	Abstract      string     `json:"Abstract"`
	AbstractText  string     `json:"AbstractText"`
	AbstractURL   string     `json:"AbstractURL"`
	Answer        string     `json:"Answer"`
	RelatedTopics []ddgTopic `json:"RelatedTopics"`
}

// Search returns the abstract (when present) followed by related topics.
func (p *DuckDuckGoProvider) Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error) {
	numResults := opts.NumResults
	if numResults <= 0 {
		numResults = 3
	}

	u, err := url.Parse(p.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("no_html", "1")
	q.Set("skip_disambig", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient(p.Client, opts).Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncateSnippet(string(body), 200))
	}

	var ddg ddgResponse
	if err := json.Unmarshal(body, &ddg); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	var results []SearchResult
	abstract := ddg.Abstract
	if abstract == "" {
		abstract = ddg.AbstractText
	}
	if abstract == "" {
		abstract = ddg.Answer
	}
	if abstract != "" {
		results = append(results, SearchResult{Title: ddg.Heading, URL: ddg.AbstractURL, Snippet: abstract})
	}

	for _, t := range flattenTopics(ddg.RelatedTopics) {
		if len(results) >= numResults+1 {
			break
		}
		if t.Text == "" || !matchesDomainFilter(t.FirstURL, opts.AllowedDomains, opts.BlockedDomains) {
			continue
		}
		results = append(results, SearchResult{URL: t.FirstURL, Snippet: truncateSnippet(t.Text, 300)})
	}
	return results, nil
}

// flattenTopics expands grouped topics into a single list.
func flattenTopics(topics []ddgTopic) []ddgTopic {
	var out []ddgTopic
	for _, t := range topics {
		if len(t.Topics) > 0 {
			out = append(out, flattenTopics(t.Topics)...)
			continue
		}
		out = append(out, t)
	}
	return out
}
