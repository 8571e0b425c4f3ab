package tool

import (
	"context"

	"github.com/yanmxa/wtf/internal/history"
	"github.com/yanmxa/wtf/internal/render"
)

// LookupHistoryTool returns recent turns so the model can refer to them.
type LookupHistoryTool struct {
	Log *history.Log
}

func (t *LookupHistoryTool) Name() string { return "lookup_history" }
func (t *LookupHistoryTool) Description() string {
	return "Look up recent conversation history. Internal tool - use this to remember past interactions."
}
func (t *LookupHistoryTool) Icon() string { return render.IconHistory }

func (t *LookupHistoryTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"limit": prop("integer", "Number of recent conversations to retrieve (default: 10)"),
	})
}

func (t *LookupHistoryTool) Execute(ctx context.Context, params map[string]any) Result {
	limit := intParam(params, "limit", 10)
	if limit <= 0 {
		limit = 10
	}
	if t.Log == nil {
		return &HistoryResult{Conversations: []history.Entry{}}
	}
	entries, err := t.Log.Recent(limit)
	if err != nil {
		return &HistoryResult{Base: Base{Error: err.Error()}, Conversations: []history.Entry{}}
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	return &HistoryResult{Conversations: entries, Count: len(entries)}
}
