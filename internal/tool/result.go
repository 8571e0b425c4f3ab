package tool

import (
	"encoding/json"

	"github.com/yanmxa/wtf/internal/history"
	"github.com/yanmxa/wtf/internal/provider/search"
)

// Result is the outcome of one tool call. Only process results are shown
// to the user; everything else is returned to the model alone.
type Result interface {
	// ShouldPrint reports whether the result is user-facing
	ShouldPrint() bool
	// Err returns the failure message, or "" on success
	Err() string
	// IsBlocked reports whether the call was refused rather than failed
	IsBlocked() bool
	// ForModel encodes the result for the next model turn
	ForModel() string
}

// Base carries the fields shared by every result.
type Base struct {
	Error   string `json:"error,omitempty"`
	Blocked bool   `json:"blocked,omitempty"`
}

func (b Base) ShouldPrint() bool { return false }
func (b Base) Err() string       { return b.Error }
func (b Base) IsBlocked() bool   { return b.Blocked }

// ProcessResult is the output of a shell command.
type ProcessResult struct {
	Base
	Command  string `json:"command"`
	Output   string `json:"output"`
	ExitCode int    `json:"exit_code"`
}

func (r *ProcessResult) ShouldPrint() bool { return !r.Blocked }
func (r *ProcessResult) ForModel() string  { return encode(r) }

// FileResult is the content of a file.
type FileResult struct {
	Base
	Path      string `json:"path"`
	Content   string `json:"content,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
}

func (r *FileResult) ForModel() string { return encode(r) }

// SearchResult holds content matches.
type SearchResult struct {
	Base
	Pattern   string   `json:"pattern"`
	Matches   []string `json:"matches"`
	Count     int      `json:"count"`
	Truncated bool     `json:"truncated,omitempty"`
}

func (r *SearchResult) ForModel() string { return encode(r) }

// ListResult holds file paths.
type ListResult struct {
	Base
	Pattern   string   `json:"pattern"`
	Files     []string `json:"files"`
	Count     int      `json:"count"`
	Truncated bool     `json:"truncated,omitempty"`
}

func (r *ListResult) ForModel() string { return encode(r) }

// HistoryResult holds past turns, most recent first.
type HistoryResult struct {
	Base
	Conversations []history.Entry `json:"conversations"`
	Count         int             `json:"count"`
}

func (r *HistoryResult) ForModel() string { return encode(r) }

// ConfigResult is a configuration read or update.
type ConfigResult struct {
	Base
	Key     string `json:"key,omitempty"`
	Value   any    `json:"value,omitempty"`
	Updated bool   `json:"updated,omitempty"`
	Diff    string `json:"diff,omitempty"`
}

func (r *ConfigResult) ForModel() string { return encode(r) }

// WebResult is a web search or fetched page.
type WebResult struct {
	Base
	Query   string                `json:"query,omitempty"`
	URL     string                `json:"url,omitempty"`
	Content string                `json:"content,omitempty"`
	Results []search.SearchResult `json:"results,omitempty"`
}

func (r *WebResult) ForModel() string { return encode(r) }

// ErrorResult reports a call that could not be dispatched, such as an
// unknown tool or missing argument.
type ErrorResult struct {
	Base
}

func (r *ErrorResult) ForModel() string { return encode(r) }

// Failure builds an ErrorResult.
func Failure(msg string) *ErrorResult {
	return &ErrorResult{Base{Error: msg}}
}

func encode(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return `{"error":"failed to encode tool result"}`
	}
	return string(data)
}
