package tool

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"github.com/yanmxa/wtf/internal/render"
)

const (
	maxResponseSize = 5 * 1024 * 1024 // 5MB
	httpTimeout     = 30 * time.Second
)

// WebFetchTool fetches a URL and returns it as markdown.
type WebFetchTool struct {
	Client *http.Client
}

func (t *WebFetchTool) Name() string { return "web_fetch" }
func (t *WebFetchTool) Description() string {
	return "Fetch a web page and return its content as markdown. Use this to read documentation or a page found with web_search."
}
func (t *WebFetchTool) Icon() string { return render.IconWeb }

func (t *WebFetchTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"url": prop("string", "The URL to fetch"),
	}, "url")
}

func (t *WebFetchTool) Execute(ctx context.Context, params map[string]any) Result {
	urlStr := stringParam(params, "url")
	if urlStr == "" {
		return Failure("url is required")
	}
	if !strings.HasPrefix(urlStr, "http://") && !strings.HasPrefix(urlStr, "https://") {
		urlStr = "https://" + urlStr
	}

	client := t.Client
	if client == nil {
		client = &http.Client{Timeout: httpTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return &WebResult{Base: Base{Error: "invalid URL: " + err.Error()}, URL: urlStr}
	}
	req.Header.Set("User-Agent", "wtf/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return &WebResult{Base: Base{Error: "request failed: " + err.Error()}, URL: urlStr}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &WebResult{Base: Base{Error: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.Status)}, URL: urlStr}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &WebResult{Base: Base{Error: "failed to read response: " + err.Error()}, URL: urlStr}
	}

	content := string(body)
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		converter := md.NewConverter("", true, nil)
		if markdown, err := converter.ConvertString(content); err == nil {
			content = markdown
		}
	}

	lines := strings.Split(content, "\n")
	if len(lines) > maxReadLines {
		content = strings.Join(lines[:maxReadLines], "\n") + "\n... (content truncated)"
	}
	return &WebResult{URL: urlStr, Content: content}
}
